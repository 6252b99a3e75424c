package codectest

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"video-thumbnailer/internal/codec"
)

// BMPFormats is the pixel format list of the libavcodec BMP encoder, in
// the encoder's order.
var BMPFormats = []codec.PixelFormat{
	codec.PixelFormatBGRA,
	codec.PixelFormatBGR24,
	codec.PixelFormatRGB565,
	codec.PixelFormatRGB555,
	codec.PixelFormatRGB444,
	codec.PixelFormatRGB8,
	codec.PixelFormatBGR8,
	"rgb4_byte",
	"bgr4_byte",
	codec.PixelFormatGray,
	codec.PixelFormatPal8,
	codec.PixelFormatMonoBlk,
}

// Seek records one Input.Seek call.
type Seek struct {
	TS       int64
	Backward bool
}

// Stats is a snapshot of the backend counters.
type Stats struct {
	InitCalls int
	Verbosity codec.Verbosity

	// Currently open resources.
	OpenInputs     int
	OpenDecoders   int
	OpenConverters int
	OpenEncoders   int
	LiveFrames     int
	LivePackets    int

	// Lifetime totals.
	ConverterBuilds int
	EncoderBuilds   int
	DoubleReleases  int
	DoubleCloses    int
	Flushes         int
	Drains          int
	PacketsRead     int
	EOFReads        int
	Seeks           []Seek

	ErrorTolerant bool
}

// Backend is an in-memory codec.Backend. The zero value is not usable; use
// New.
type Backend struct {
	mu    sync.Mutex
	clips map[string]Clip
	stats Stats

	// Formats overrides the still-image encoder format list.
	Formats []codec.PixelFormat

	// Fail injects converter and encoder failures. Set it before the
	// first LoadFrame.
	Fail PipelineFailures
}

var _ codec.Backend = (*Backend)(nil)

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		clips:   make(map[string]Clip),
		Formats: BMPFormats,
	}
}

// Add registers a clip under path.
func (b *Backend) Add(path string, c Clip) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clips[path] = c.withDefaults()
}

// Stats returns a copy of the counters.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.Seeks = append([]Seek(nil), b.stats.Seeks...)
	return s
}

// ResetSeeks clears the recorded seeks.
func (b *Backend) ResetSeeks() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Seeks = nil
	b.stats.EOFReads = 0
}

// Leaks reports resources that are still held. An empty result means every
// input, decoder, converter, encoder, frame and packet was released.
func (b *Backend) Leaks() []string {
	s := b.Stats()
	var leaks []string
	check := func(name string, n int) {
		if n != 0 {
			leaks = append(leaks, fmt.Sprintf("%s=%d", name, n))
		}
	}
	check("inputs", s.OpenInputs)
	check("decoders", s.OpenDecoders)
	check("converters", s.OpenConverters)
	check("encoders", s.OpenEncoders)
	check("frames", s.LiveFrames)
	check("packets", s.LivePackets)
	check("double-releases", s.DoubleReleases)
	check("double-closes", s.DoubleCloses)
	return leaks
}

func (b *Backend) update(fn func(s *Stats)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.stats)
}

func (b *Backend) Name() string { return "codectest" }

func (b *Backend) Init(v codec.Verbosity) error {
	b.update(func(s *Stats) {
		s.InitCalls++
		s.Verbosity = v
	})
	return nil
}

func (b *Backend) OpenInput(path string) (codec.Input, error) {
	b.mu.Lock()
	clip, ok := b.clips[path]
	b.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	if clip.Fail.Open {
		return nil, errors.New("invalid data found when processing input")
	}

	b.update(func(s *Stats) { s.OpenInputs++ })
	return newInput(b, clip), nil
}

func (b *Backend) StillImageFormats() []codec.PixelFormat {
	return append([]codec.PixelFormat(nil), b.Formats...)
}

func (b *Backend) BestPixelFormat(candidates []codec.PixelFormat, src codec.PixelFormat) (codec.PixelFormat, error) {
	return codec.ClosestPixelFormat(candidates, src)
}

func (b *Backend) NewConverter(cfg codec.ConverterConfig) (codec.Converter, error) {
	b.update(func(s *Stats) { s.ConverterBuilds++ })

	if b.Fail.ConverterBuild {
		return nil, errors.New("cannot create buffer source")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid video size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.TargetFormat == codec.PixelFormatNone {
		return nil, errors.New("no target pixel format")
	}

	b.update(func(s *Stats) { s.OpenConverters++ })
	return &converter{b: b, cfg: cfg, fail: b.Fail.Convert}, nil
}

func (b *Backend) NewEncoder(cfg codec.EncoderConfig) (codec.Encoder, error) {
	b.update(func(s *Stats) { s.EncoderBuilds++ })

	if b.Fail.EncoderBuild {
		return nil, errors.New("failed to open encoder")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid encoder size %dx%d", cfg.Width, cfg.Height)
	}

	supported := false
	for _, f := range b.Formats {
		if f == cfg.PixelFormat {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("pixel format %s not supported by encoder", cfg.PixelFormat)
	}

	b.update(func(s *Stats) { s.OpenEncoders++ })
	return &encoder{b: b, cfg: cfg, noOutput: b.Fail.EncoderNoOutput}, nil
}
