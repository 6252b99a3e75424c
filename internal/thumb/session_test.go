package thumb

import (
	"errors"
	"math"
	"os"
	"testing"

	"video-thumbnailer/internal/bitmap"
	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/codec/codectest"
)

func TestCreate(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	s := mustCreate(t, b)

	if got := s.CodecName(); got != "testsrc" {
		t.Errorf("CodecName() = %q, want %q", got, "testsrc")
	}
	if got := s.Width(); got != 320 {
		t.Errorf("Width() = %d, want 320", got)
	}
	if got := s.Height(); got != 240 {
		t.Errorf("Height() = %d, want 240", got)
	}
	if got := s.Duration(); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("Duration() = %v, want 2.0", got)
	}
	if got := s.Path(); got != clipPath {
		t.Errorf("Path() = %q, want %q", got, clipPath)
	}
	if !b.Stats().ErrorTolerant {
		t.Error("decoder was not opened in error-tolerant mode")
	}
}

func TestCreateFailures(t *testing.T) {
	tests := []struct {
		name    string
		clip    codectest.Clip
		path    string
		want    error
		wantErr error
	}{
		{
			name:    "missing file",
			clip:    codectest.TwoSecondClip(),
			path:    "/media/missing.mp4",
			want:    ErrContainerOpen,
			wantErr: os.ErrNotExist,
		},
		{
			name: "unrecognized container",
			clip: codectest.Clip{Frames: 10, Width: 64, Height: 48, Fail: codectest.InputFailures{Open: true}},
			want: ErrContainerOpen,
		},
		{
			name: "probe failure",
			clip: codectest.Clip{Frames: 10, Width: 64, Height: 48, Fail: codectest.InputFailures{Probe: true}},
			want: ErrProbe,
		},
		{
			name: "zero duration",
			clip: codectest.Clip{Frames: 10, Width: 64, Height: 48, ZeroDuration: true},
			want: ErrProbe,
		},
		{
			name:    "audio only",
			clip:    codectest.Clip{Frames: 10, Width: 64, Height: 48, Fail: codectest.InputFailures{NoVideoStream: true}},
			want:    ErrNoVideoStream,
			wantErr: codec.ErrStreamNotFound,
		},
		{
			name:    "no decoder",
			clip:    codectest.Clip{Frames: 10, Width: 64, Height: 48, Fail: codectest.InputFailures{NoDecoder: true}},
			want:    ErrNoVideoStream,
			wantErr: codec.ErrDecoderNotFound,
		},
		{
			name: "decoder open failure",
			clip: codectest.Clip{Frames: 10, Width: 64, Height: 48, Fail: codectest.InputFailures{DecoderOpen: true}},
			want: ErrDecoderOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, tt.clip)
			path := tt.path
			if path == "" {
				path = clipPath
			}

			s, err := Create(b, path)
			if s != nil {
				t.Errorf("Create() returned a session on failure")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Create() error = %v, want %v", err, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want wrapped %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateNilBackend(t *testing.T) {
	if _, err := Create(nil, clipPath); !errors.Is(err, ErrContainerOpen) {
		t.Errorf("Create(nil) error = %v, want ErrContainerOpen", err)
	}
}

func TestLoadFrameMidpoint(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	s := mustCreate(t, b)

	data := mustLoad(t, s, 0.5)

	info, err := bitmap.Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("thumbnail size = %dx%d, want 320x240", info.Width, info.Height)
	}
	if info.BitsPerPixel != 24 {
		t.Errorf("BitsPerPixel = %d, want 24 (bgr24)", info.BitsPerPixel)
	}
	if got := frameNumber(t, data); got != 30 {
		t.Errorf("frame = %d, want 30", got)
	}

	seeks := b.Stats().Seeks
	want := []codectest.Seek{{TS: 1000000, Backward: false}, {TS: 1000000, Backward: true}}
	if len(seeks) != len(want) || seeks[0] != want[0] || seeks[1] != want[1] {
		t.Errorf("seeks = %+v, want %+v", seeks, want)
	}
	if b.Stats().Flushes != 1 {
		t.Errorf("Flushes = %d, want 1", b.Stats().Flushes)
	}
}

func TestLoadFrameAtStartSeeksOnce(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	s := mustCreate(t, b)

	data := mustLoad(t, s, 0)

	if got := frameNumber(t, data); got != 0 {
		t.Errorf("frame = %d, want 0", got)
	}
	seeks := b.Stats().Seeks
	if len(seeks) != 1 || seeks[0] != (codectest.Seek{TS: 0, Backward: false}) {
		t.Errorf("seeks = %+v, want a single forward seek to 0", seeks)
	}
}

func TestLoadFrameReusesPipeline(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	s := mustCreate(t, b)

	first := mustLoad(t, s, 0.25)
	second := mustLoad(t, s, 0.75)

	stats := b.Stats()
	if stats.ConverterBuilds != 1 {
		t.Errorf("ConverterBuilds = %d, want 1", stats.ConverterBuilds)
	}
	if stats.EncoderBuilds != 1 {
		t.Errorf("EncoderBuilds = %d, want 1", stats.EncoderBuilds)
	}
	if got := frameNumber(t, first); got != 15 {
		t.Errorf("first frame = %d, want 15", got)
	}
	if got := frameNumber(t, second); got != 45 {
		t.Errorf("second frame = %d, want 45", got)
	}
}

func TestLoadFrameAtEndIsBounded(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	s := mustCreate(t, b)

	n, buf, err := s.LoadFrame(1.0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadFrame(1.0) error = %v, want ErrNotFound", err)
	}
	if n != 0 || buf != nil {
		t.Errorf("LoadFrame(1.0) = %d, %v; want 0, nil", n, buf)
	}
	if got := b.Stats().EOFReads; got != MaxDecodeAttempts {
		t.Errorf("EOFReads = %d, want %d", got, MaxDecodeAttempts)
	}

	// The session stays usable after a miss.
	if got := frameNumber(t, mustLoad(t, s, 0.5)); got != 30 {
		t.Errorf("frame after miss = %d, want 30", got)
	}
}

func TestLoadFrameDrainsDecoderAtEnd(t *testing.T) {
	clip := codectest.TwoSecondClip()
	clip.DecoderDelay = 4
	b := newBackend(t, clip)
	s := mustCreate(t, b)

	// Frames 56-59 are still inside the decoder when the input ends.
	if got := frameNumber(t, mustLoad(t, s, 0.95)); got != 57 {
		t.Errorf("frame = %d, want 57", got)
	}
	if got := b.Stats().Drains; got != 1 {
		t.Errorf("Drains = %d, want 1", got)
	}

	if _, _, err := s.LoadFrame(1.0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadFrame(1.0) error = %v, want ErrNotFound", err)
	}
	if got := b.Stats().Drains; got != 2 {
		t.Errorf("Drains = %d, want 2 (one per LoadFrame)", got)
	}

	// A seek after a drain decodes normally again.
	if got := frameNumber(t, mustLoad(t, s, 0.5)); got != 30 {
		t.Errorf("frame after drain = %d, want 30", got)
	}
}

func TestLoadFrameDrainSkipsZeroSizeFrames(t *testing.T) {
	clip := codectest.TwoSecondClip()
	clip.DecoderDelay = 4
	clip.ZeroSizeFrames = map[int]bool{57: true}
	b := newBackend(t, clip)
	s := mustCreate(t, b)

	if got := frameNumber(t, mustLoad(t, s, 0.95)); got != 58 {
		t.Errorf("frame = %d, want 58", got)
	}
}

func TestLoadFrameResendsRefusedPacket(t *testing.T) {
	tests := []struct {
		name  string
		delay int
	}{
		{"no delay", 0},
		{"decoder delay", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := codectest.TwoSecondClip()
			clip.DecoderDelay = tt.delay
			clip.BusyFrames = map[int]bool{30: true}
			b := newBackend(t, clip)
			s := mustCreate(t, b)

			if got := frameNumber(t, mustLoad(t, s, 0.5)); got != 30 {
				t.Errorf("frame = %d, want 30", got)
			}
		})
	}
}

func TestLoadFrameFlushFailure(t *testing.T) {
	clip := codectest.TwoSecondClip()
	clip.Fail.Flush = true
	b := newBackend(t, clip)
	s := mustCreate(t, b)

	mustLoad(t, s, 0.5)

	n, buf, err := s.LoadFrame(0.5)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("LoadFrame() error = %v, want ErrDecode", err)
	}
	if n != 0 || buf != nil {
		t.Errorf("LoadFrame() = %d, %v; want 0, nil", n, buf)
	}
}

func TestLoadFrameSkipsZeroSizeFrames(t *testing.T) {
	clip := codectest.TwoSecondClip()
	clip.ZeroSizeFrames = map[int]bool{30: true, 31: true}
	b := newBackend(t, clip)
	s := mustCreate(t, b)

	if got := frameNumber(t, mustLoad(t, s, 0.5)); got != 32 {
		t.Errorf("frame = %d, want 32", got)
	}
}

func TestLoadFrameAllZeroSize(t *testing.T) {
	clip := codectest.TwoSecondClip()
	clip.ZeroSizeFrames = make(map[int]bool)
	for i := 0; i < clip.Frames; i++ {
		clip.ZeroSizeFrames[i] = true
	}
	b := newBackend(t, clip)
	s := mustCreate(t, b)

	if _, _, err := s.LoadFrame(0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadFrame(0) error = %v, want ErrNotFound", err)
	}
	// Each zero-size frame consumes one attempt; the rest end at EOF.
	if got, want := b.Stats().EOFReads, MaxDecodeAttempts-clip.Frames; got != want {
		t.Errorf("EOFReads = %d, want %d", got, want)
	}
}

func TestLoadFrameDecodeError(t *testing.T) {
	clip := codectest.TwoSecondClip()
	clip.CorruptFrames = map[int]bool{20: true}
	b := newBackend(t, clip)
	s := mustCreate(t, b)

	n, buf, err := s.LoadFrame(0.5)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("LoadFrame() error = %v, want ErrDecode", err)
	}
	if n != 0 || buf != nil {
		t.Errorf("LoadFrame() = %d, %v; want 0, nil", n, buf)
	}
	if got := b.Stats().EOFReads; got != 0 {
		t.Errorf("EOFReads = %d, want 0 (decode errors are not retried)", got)
	}
}

func TestLoadFrameStreamLayouts(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *codectest.Clip)
		want   int
	}{
		{"decoder delay", func(c *codectest.Clip) { c.DecoderDelay = 4 }, 30},
		{"interleaved audio", func(c *codectest.Clip) { c.WithAudio = true }, 30},
		{"keyframe every 10", func(c *codectest.Clip) { c.KeyframeInterval = 10 }, 30},
		{"keyframe every 7", func(c *codectest.Clip) { c.KeyframeInterval = 7 }, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := codectest.TwoSecondClip()
			tt.modify(&clip)
			b := newBackend(t, clip)
			s := mustCreate(t, b)

			if got := frameNumber(t, mustLoad(t, s, 0.5)); got != tt.want {
				t.Errorf("frame = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadFrameStartsAtKeyframe(t *testing.T) {
	clip := codectest.TwoSecondClip()
	clip.KeyframeInterval = 10
	b := newBackend(t, clip)
	s := mustCreate(t, b)

	mustLoad(t, s, 0.5)

	if got := b.Stats().PacketsRead; got != 1 {
		t.Errorf("PacketsRead = %d, want 1 when the target is a keyframe", got)
	}
}

func TestLoadFramePixelFormats(t *testing.T) {
	tests := []struct {
		format  codec.PixelFormat
		wantBPP int
	}{
		{codec.PixelFormatYUV420P, 24},
		{codec.PixelFormatRGBA, 32},
		{codec.PixelFormatGray, 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			clip := codectest.TwoSecondClip()
			clip.PixelFormat = tt.format
			b := newBackend(t, clip)
			s := mustCreate(t, b)

			info, err := bitmap.Inspect(mustLoad(t, s, 0.5))
			if err != nil {
				t.Fatalf("Inspect() error = %v", err)
			}
			if info.BitsPerPixel != tt.wantBPP {
				t.Errorf("BitsPerPixel = %d, want %d", info.BitsPerPixel, tt.wantBPP)
			}
		})
	}
}

func TestLoadFrameInvalidPosition(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	s := mustCreate(t, b)

	for _, pos := range []float64{-0.1, 1.0001, math.NaN(), math.Inf(1)} {
		n, buf, err := s.LoadFrame(pos)
		if !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("LoadFrame(%v) error = %v, want ErrInvalidPosition", pos, err)
		}
		if n != 0 || buf != nil {
			t.Errorf("LoadFrame(%v) = %d, %v; want 0, nil", pos, n, buf)
		}
	}
	if seeks := b.Stats().Seeks; len(seeks) != 0 {
		t.Errorf("invalid positions issued seeks: %+v", seeks)
	}
}

func TestLoadFramePipelineFailures(t *testing.T) {
	tests := []struct {
		name string
		fail codectest.PipelineFailures
		want error
	}{
		{"converter build", codectest.PipelineFailures{ConverterBuild: true}, ErrConversion},
		{"convert", codectest.PipelineFailures{Convert: true}, ErrConversion},
		{"encoder build", codectest.PipelineFailures{EncoderBuild: true}, ErrEncoderOpen},
		{"encoder without output", codectest.PipelineFailures{EncoderNoOutput: true}, ErrEncode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t, codectest.TwoSecondClip())
			b.Fail = tt.fail
			s := mustCreate(t, b)

			n, buf, err := s.LoadFrame(0.5)
			if !errors.Is(err, tt.want) {
				t.Fatalf("LoadFrame() error = %v, want %v", err, tt.want)
			}
			if n != 0 || buf != nil {
				t.Errorf("LoadFrame() = %d, %v; want 0, nil", n, buf)
			}
		})
	}
}

func TestEncoderWithoutOutputIsRebuilt(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	b.Fail = codectest.PipelineFailures{EncoderNoOutput: true}
	s := mustCreate(t, b)

	for _, pos := range []float64{0, 0.5} {
		n, buf, err := s.LoadFrame(pos)
		if !errors.Is(err, ErrEncode) {
			t.Fatalf("LoadFrame(%v) error = %v, want ErrEncode", pos, err)
		}
		if n != 0 || buf != nil {
			t.Errorf("LoadFrame(%v) returned a picture held over from an earlier call", pos)
		}
	}
	if got := b.Stats().EncoderBuilds; got != 2 {
		t.Errorf("EncoderBuilds = %d, want 2", got)
	}

	b.Fail = codectest.PipelineFailures{}
	if got := frameNumber(t, mustLoad(t, s, 0.5)); got != 30 {
		t.Errorf("frame = %d, want 30", got)
	}
	stats := b.Stats()
	if stats.EncoderBuilds != 3 {
		t.Errorf("EncoderBuilds = %d, want 3", stats.EncoderBuilds)
	}
	if stats.ConverterBuilds != 1 {
		t.Errorf("ConverterBuilds = %d, want 1", stats.ConverterBuilds)
	}
}

func TestEncoderBuildFailureSkipsConversion(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	b.Fail = codectest.PipelineFailures{EncoderBuild: true}
	s := mustCreate(t, b)

	if _, _, err := s.LoadFrame(0.5); !errors.Is(err, ErrEncoderOpen) {
		t.Fatalf("LoadFrame() error = %v, want ErrEncoderOpen", err)
	}
	if got := b.Stats().ConverterBuilds; got != 1 {
		t.Errorf("ConverterBuilds = %d, want 1", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := newBackend(t, codectest.TwoSecondClip())
	s, err := Create(b, clipPath)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	mustLoad(t, s, 0.5)

	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if got := b.Stats().DoubleCloses; got != 0 {
		t.Errorf("DoubleCloses = %d, want 0", got)
	}

	if _, _, err := s.LoadFrame(0.5); !errors.Is(err, ErrClosed) {
		t.Errorf("LoadFrame() after Close error = %v, want ErrClosed", err)
	}
}

func TestNilSession(t *testing.T) {
	var s *Session

	if err := s.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
	if s.CodecName() != "" || s.Duration() != 0 || s.Width() != 0 || s.Height() != 0 || s.Path() != "" {
		t.Error("nil session accessors returned non-zero values")
	}
	if _, _, err := s.LoadFrame(0.5); !errors.Is(err, ErrClosed) {
		t.Errorf("nil LoadFrame() error = %v, want ErrClosed", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	b := codectest.New()
	b.Add("/media/a.mp4", codectest.TwoSecondClip())
	b.Add("/media/b.mp4", codectest.Clip{Frames: 30, FPS: 30, Width: 64, Height: 48})

	a, err := Create(b, "/media/a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	c, err := Create(b, "/media/b.mp4")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	fromA := mustLoad(t, a, 0.5)
	fromC := mustLoad(t, c, 0.5)

	if got := frameNumber(t, fromA); got != 30 {
		t.Errorf("a frame = %d, want 30", got)
	}
	if got := frameNumber(t, fromC); got != 15 {
		t.Errorf("b frame = %d, want 15", got)
	}
	info, err := bitmap.Inspect(fromC)
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("b size = %dx%d, want 64x48", info.Width, info.Height)
	}
}
