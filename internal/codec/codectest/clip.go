package codectest

import (
	"video-thumbnailer/internal/codec"
)

// Clip describes a synthetic video.
type Clip struct {
	Frames int
	FPS    int
	Width  int
	Height int

	// PixelFormat is the decoder output format. Defaults to yuv420p.
	PixelFormat codec.PixelFormat

	// CodecName defaults to "testsrc".
	CodecName string

	// KeyframeInterval is the distance between keyframes in frames.
	// Zero means only the first frame is a keyframe.
	KeyframeInterval int

	// DecoderDelay is the number of frames the decoder holds back until it
	// is drained.
	DecoderDelay int

	// WithAudio interleaves an audio packet before every video packet.
	// The audio stream takes index 0 and video moves to index 1.
	WithAudio bool

	// ZeroDuration makes the container report no duration.
	ZeroDuration bool

	// ZeroSizeFrames decode with 0x0 dimensions.
	ZeroSizeFrames map[int]bool

	// CorruptFrames fail in SendPacket.
	CorruptFrames map[int]bool

	// BusyFrames make the first SendPacket of the frame's packet return
	// ErrAgain without taking it.
	BusyFrames map[int]bool

	Fail InputFailures
}

// InputFailures selects input and decoder calls that fail for a clip.
type InputFailures struct {
	Open          bool
	Probe         bool
	NoVideoStream bool
	NoDecoder     bool
	DecoderOpen   bool

	// Flush makes every decoder flush but the first fail.
	Flush bool
}

// PipelineFailures selects converter and encoder calls that fail. They are
// set on the Backend because converters and encoders are not bound to an
// input.
type PipelineFailures struct {
	ConverterBuild bool
	Convert        bool
	EncoderBuild   bool

	// EncoderNoOutput makes encoders hold each frame back until the next
	// one is sent, so a single SendFrame yields nothing.
	EncoderNoOutput bool
}

// TwoSecondClip is a 2 second, 30 fps, 320x240 clip with a single keyframe.
func TwoSecondClip() Clip {
	return Clip{
		Frames: 60,
		FPS:    30,
		Width:  320,
		Height: 240,
	}
}

func (c Clip) withDefaults() Clip {
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.PixelFormat == codec.PixelFormatNone {
		c.PixelFormat = codec.PixelFormatYUV420P
	}
	if c.CodecName == "" {
		c.CodecName = "testsrc"
	}
	return c
}

func (c Clip) timeBase() codec.Rational {
	return codec.Rational{Num: 1, Den: c.FPS}
}

func (c Clip) videoIndex() int {
	if c.WithAudio {
		return 1
	}
	return 0
}

func (c Clip) isKeyframe(i int) bool {
	if c.KeyframeInterval <= 0 {
		return i == 0
	}
	return i%c.KeyframeInterval == 0
}

// keyframeAtOrBefore returns the last keyframe index <= i.
func (c Clip) keyframeAtOrBefore(i int) int {
	if i >= c.Frames {
		i = c.Frames - 1
	}
	for ; i > 0; i-- {
		if c.isKeyframe(i) {
			return i
		}
	}
	return 0
}

// keyframeAtOrAfter returns the first keyframe index >= i, or Frames when
// none exists.
func (c Clip) keyframeAtOrAfter(i int) int {
	if i < 0 {
		i = 0
	}
	for ; i < c.Frames; i++ {
		if c.isKeyframe(i) {
			return i
		}
	}
	return c.Frames
}
