package codectest

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"

	"video-thumbnailer/internal/codec"

	"golang.org/x/image/bmp"
)

type frame struct {
	b        *Backend
	index    int
	width    int
	height   int
	format   codec.PixelFormat
	pts      int64
	img      image.Image
	released bool
}

func (f *frame) Width() int                     { return f.width }
func (f *frame) Height() int                    { return f.height }
func (f *frame) PixelFormat() codec.PixelFormat { return f.format }
func (f *frame) PTS() int64                     { return f.pts }
func (f *frame) SetPTS(pts int64)               { f.pts = pts }
func (f *frame) BestEffortTimestamp() int64     { return int64(f.index) }

func (f *frame) Release() {
	if f.released {
		f.b.update(func(s *Stats) { s.DoubleReleases++ })
		return
	}
	f.released = true
	f.img = nil
	f.b.update(func(s *Stats) { s.LiveFrames-- })
}

// FrameIndex returns the clip frame number of a frame produced by this
// package, or -1.
func FrameIndex(f codec.Frame) int {
	if fr, ok := f.(*frame); ok {
		return fr.index
	}
	return -1
}

type converter struct {
	b       *Backend
	cfg     codec.ConverterConfig
	fail    bool
	pending *frame
	closed  bool
}

func (c *converter) Push(f codec.Frame) error {
	if c.closed {
		return errors.New("converter closed")
	}
	src, ok := f.(*frame)
	if !ok {
		return fmt.Errorf("unexpected frame type %T", f)
	}
	if c.fail {
		return errors.New("failed to add frame to source")
	}
	if src.format != c.cfg.SourceFormat {
		return fmt.Errorf("frame format %s does not match source %s", src.format, c.cfg.SourceFormat)
	}
	if c.pending != nil {
		c.pending.Release()
	}

	c.b.update(func(s *Stats) { s.LiveFrames++ })
	c.pending = &frame{
		b:      c.b,
		index:  src.index,
		width:  c.cfg.Width,
		height: c.cfg.Height,
		format: c.cfg.TargetFormat,
		pts:    src.pts,
		img:    render(src.index, c.cfg.Width, c.cfg.Height, c.cfg.TargetFormat),
	}
	return nil
}

func (c *converter) Pull() (codec.Frame, error) {
	if c.pending == nil {
		return nil, codec.ErrAgain
	}
	out := c.pending
	c.pending = nil
	return out, nil
}

func (c *converter) Close() error {
	if c.closed {
		c.b.update(func(s *Stats) { s.DoubleCloses++ })
		return nil
	}
	c.closed = true
	if c.pending != nil {
		c.pending.Release()
		c.pending = nil
	}
	c.b.update(func(s *Stats) { s.OpenConverters-- })
	return nil
}

type encoder struct {
	b        *Backend
	cfg      codec.EncoderConfig
	noOutput bool
	held     []byte
	pending  []byte
	closed   bool
}

func (e *encoder) SendFrame(f codec.Frame) error {
	if e.closed {
		return errors.New("encoder closed")
	}
	src, ok := f.(*frame)
	if !ok || src.img == nil {
		return errors.New("frame has no picture")
	}
	if src.format != e.cfg.PixelFormat {
		return fmt.Errorf("frame format %s does not match encoder %s", src.format, e.cfg.PixelFormat)
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, src.img); err != nil {
		return fmt.Errorf("bmp encode: %w", err)
	}
	if e.noOutput {
		e.pending, e.held = e.held, buf.Bytes()
		return nil
	}
	e.pending = buf.Bytes()
	return nil
}

func (e *encoder) ReceivePacket() (codec.Packet, error) {
	if e.pending == nil {
		return nil, codec.ErrAgain
	}
	data := e.pending
	e.pending = nil
	e.b.update(func(s *Stats) { s.LivePackets++ })
	return &packet{b: e.b, desc: packetDesc{stream: -1}, data: data}, nil
}

func (e *encoder) Close() error {
	if e.closed {
		e.b.update(func(s *Stats) { s.DoubleCloses++ })
		return nil
	}
	e.closed = true
	e.held = nil
	e.pending = nil
	e.b.update(func(s *Stats) { s.OpenEncoders-- })
	return nil
}

// render draws the gradient picture of frame index in a layout matching
// target, so the BMP encoder picks the corresponding bit depth. The blue
// channel carries the frame index modulo 256.
func render(index, w, h int, target codec.PixelFormat) image.Image {
	rect := image.Rect(0, 0, w, h)
	shade := func(x, y int) color.RGBA {
		return color.RGBA{
			R: uint8(x * 255 / max(w-1, 1)),
			G: uint8(y * 255 / max(h-1, 1)),
			B: uint8(index),
			A: 0xff,
		}
	}

	switch target {
	case codec.PixelFormatGray, codec.PixelFormatMonoBlk:
		img := image.NewGray(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.Set(x, y, shade(x, y))
			}
		}
		return img
	case codec.PixelFormatPal8, codec.PixelFormatRGB8, codec.PixelFormatBGR8:
		img := image.NewPaletted(rect, palette.WebSafe)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.Set(x, y, shade(x, y))
			}
		}
		return img
	case codec.PixelFormatBGRA, codec.PixelFormatRGBA:
		img := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := shade(x, y)
				img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
			}
		}
		// One translucent pixel keeps the encoder on a 32-bit layout.
		img.SetNRGBA(0, 0, color.NRGBA{A: 0x80})
		return img
	default:
		img := image.NewRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetRGBA(x, y, shade(x, y))
			}
		}
		return img
	}
}
