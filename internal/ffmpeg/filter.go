package ffmpeg

import (
	"errors"
	"fmt"

	"video-thumbnailer/internal/codec"

	"github.com/asticode/go-astiav"
)

// converter runs "buffer -> format=<target> -> buffersink".
type converter struct {
	graph *astiav.FilterGraph
	src   *astiav.FilterContext
	sink  *astiav.FilterContext
}

func newConverter(cfg codec.ConverterConfig) (_ *converter, err error) {
	srcFormat, err := fromPixelFormat(cfg.SourceFormat)
	if err != nil {
		return nil, err
	}
	if _, err := fromPixelFormat(cfg.TargetFormat); err != nil {
		return nil, err
	}

	buffer := astiav.FindFilterByName("buffer")
	buffersink := astiav.FindFilterByName("buffersink")
	if buffer == nil || buffersink == nil {
		return nil, errors.New("buffer filters are not available")
	}

	c := &converter{graph: astiav.AllocFilterGraph()}
	if c.graph == nil {
		return nil, errors.New("failed to allocate filter graph")
	}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	sar := cfg.SampleAspectRatio
	if !sar.Valid() {
		sar = codec.Rational{Num: 0, Den: 1}
	}
	c.src, err = c.graph.NewFilterContext(buffer, "in", astiav.FilterArgs{
		"video_size":   fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"pix_fmt":      srcFormat.String(),
		"time_base":    cfg.TimeBase.String(),
		"pixel_aspect": sar.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create buffer source: %w", err)
	}

	c.sink, err = c.graph.NewFilterContext(buffersink, "out", nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create buffer sink: %w", err)
	}

	outputs := astiav.AllocFilterInOut()
	defer outputs.Free()
	outputs.SetName("in")
	outputs.SetFilterContext(c.src)
	outputs.SetPadIdx(0)
	outputs.SetNext(nil)

	inputs := astiav.AllocFilterInOut()
	defer inputs.Free()
	inputs.SetName("out")
	inputs.SetFilterContext(c.sink)
	inputs.SetPadIdx(0)
	inputs.SetNext(nil)

	if err = c.graph.Parse("format="+string(cfg.TargetFormat), inputs, outputs); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	if err = c.graph.Configure(); err != nil {
		return nil, fmt.Errorf("failed to configure graph: %w", err)
	}

	return c, nil
}

// Push adds a reference to f; the caller keeps ownership.
func (c *converter) Push(f codec.Frame) error {
	fr, ok := f.(*frame)
	if !ok || fr.f == nil {
		return fmt.Errorf("unexpected frame %T", f)
	}
	if err := c.src.BuffersrcAddFrame(fr.f, astiav.NewBuffersrcFlags(astiav.BuffersrcFlagKeepRef)); err != nil {
		return fmt.Errorf("failed to add frame to source: %w", translate(err))
	}
	return nil
}

func (c *converter) Pull() (codec.Frame, error) {
	out := astiav.AllocFrame()
	if err := c.sink.BuffersinkGetFrame(out, astiav.NewBuffersinkFlags()); err != nil {
		out.Free()
		return nil, translate(err)
	}
	return &frame{f: out, best: out.Pts()}, nil
}

func (c *converter) Close() error {
	if c.graph != nil {
		c.graph.Free()
		c.graph = nil
		c.src = nil
		c.sink = nil
	}
	return nil
}
