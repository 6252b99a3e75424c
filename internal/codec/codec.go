package codec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAgain is returned by receive calls when no output is ready yet.
	ErrAgain = errors.New("codec: output not available")

	// ErrStreamNotFound is returned when an input has no usable video stream.
	ErrStreamNotFound = errors.New("codec: video stream not found")

	// ErrDecoderNotFound is returned when a video stream exists but no
	// decoder is available for it.
	ErrDecoderNotFound = errors.New("codec: decoder not found")
)

// Verbosity controls how much the media subsystem logs.
type Verbosity int

const (
	// VerbosityQuiet only reports fatal conditions.
	VerbosityQuiet Verbosity = iota
	// VerbosityInfo reports informational messages.
	VerbosityInfo
	// VerbosityDebug reports everything.
	VerbosityDebug
)

// ParseVerbosity maps a configuration string to a Verbosity.
// Unknown values fall back to VerbosityQuiet with an error.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quiet", "fatal", "0":
		return VerbosityQuiet, nil
	case "info", "1":
		return VerbosityInfo, nil
	case "debug", "2":
		return VerbosityDebug, nil
	default:
		return VerbosityQuiet, fmt.Errorf("unknown verbosity %q", s)
	}
}

func (v Verbosity) String() string {
	switch v {
	case VerbosityQuiet:
		return "quiet"
	case VerbosityInfo:
		return "info"
	case VerbosityDebug:
		return "debug"
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// StreamInfo identifies the selected video stream of an input.
type StreamInfo struct {
	Index     int
	TimeBase  Rational
	CodecName string
}

// DecoderOptions configures how a decoder is opened.
type DecoderOptions struct {
	// ErrorTolerant asks the decoder to work around minor bit-stream
	// errors instead of aborting.
	ErrorTolerant bool
}

// ConverterConfig describes the source side of a pixel-format conversion
// and the format it must produce.
type ConverterConfig struct {
	Width             int
	Height            int
	SourceFormat      PixelFormat
	TimeBase          Rational
	SampleAspectRatio Rational
	TargetFormat      PixelFormat
}

// EncoderConfig describes the frames a still-image encoder will receive.
type EncoderConfig struct {
	Width       int
	Height      int
	PixelFormat PixelFormat
}

// Backend is the media subsystem.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Init performs process-wide setup at the given verbosity.
	// It must be safe to call more than once.
	Init(v Verbosity) error

	// OpenInput opens the container at path.
	OpenInput(path string) (Input, error)

	// StillImageFormats lists the pixel formats the still-image encoder accepts.
	StillImageFormats() []PixelFormat

	// BestPixelFormat picks the entry of candidates closest to src.
	BestPixelFormat(candidates []PixelFormat, src PixelFormat) (PixelFormat, error)

	NewConverter(cfg ConverterConfig) (Converter, error)
	NewEncoder(cfg EncoderConfig) (Encoder, error)
}

// Input is an open container.
type Input interface {
	// FindStreamInfo probes stream metadata.
	FindStreamInfo() error

	// Duration is the container duration in GlobalTimeBase units.
	Duration() int64

	// BestVideoStream selects the highest quality default video stream that
	// has a decoder. It returns ErrStreamNotFound or ErrDecoderNotFound.
	BestVideoStream() (StreamInfo, error)

	// OpenDecoder opens a decoder bound to the stream.
	OpenDecoder(stream StreamInfo, opts DecoderOptions) (Decoder, error)

	// Seek moves to the keyframe nearest ts, expressed in GlobalTimeBase.
	// With backward set the keyframe is at or before ts.
	Seek(ts int64, backward bool) error

	// ReadPacket returns the next packet of any stream, or io.EOF.
	ReadPacket() (Packet, error)

	Close() error
}

// Decoder turns packets of one stream into frames.
type Decoder interface {
	// SendPacket submits a packet. ErrAgain means frames must be received
	// before the same packet is sent again.
	SendPacket(p Packet) error

	// ReceiveFrame returns the next decoded frame, ErrAgain when more input
	// is needed, or io.EOF once a drained decoder has no frames left.
	ReceiveFrame() (Frame, error)

	// Drain signals end of input. Frames the decoder still holds are
	// returned by ReceiveFrame until it reports io.EOF.
	Drain() error

	// Flush discards all buffered decoder state, including a drain, so
	// decoding can restart after a seek.
	Flush() error

	Width() int
	Height() int
	PixelFormat() PixelFormat
	SampleAspectRatio() Rational
	CodecName() string

	Close() error
}

// Packet is one compressed unit read from an input.
type Packet interface {
	StreamIndex() int
	Data() []byte
	Release()
}

// Frame is one decoded or converted picture.
type Frame interface {
	Width() int
	Height() int
	PixelFormat() PixelFormat

	PTS() int64
	SetPTS(pts int64)

	// BestEffortTimestamp estimates the presentation timestamp in the
	// stream time base when PTS is missing or unreliable.
	BestEffortTimestamp() int64

	Release()
}

// Converter converts frames from one pixel format to another.
type Converter interface {
	// Push submits a frame. The converter keeps its own reference; the
	// caller still owns f.
	Push(f Frame) error

	// Pull returns the converted frame, owned by the caller.
	Pull() (Frame, error)

	Close() error
}

// Encoder encodes frames into still images.
type Encoder interface {
	// SendFrame submits a frame. The caller still owns f.
	SendFrame(f Frame) error

	// ReceivePacket returns an encoded image, or ErrAgain when the encoder
	// produced nothing.
	ReceivePacket() (Packet, error)

	Close() error
}
