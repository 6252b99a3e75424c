package ffmpeg

import (
	"errors"
	"fmt"

	"video-thumbnailer/internal/codec"

	"github.com/asticode/go-astiav"
)

// encoder is a libavcodec BMP encoder.
type encoder struct {
	cc *astiav.CodecContext
}

func newEncoder(cfg codec.EncoderConfig) (*encoder, error) {
	pf, err := fromPixelFormat(cfg.PixelFormat)
	if err != nil {
		return nil, err
	}

	enc := astiav.FindEncoder(astiav.CodecIDBmp)
	if enc == nil {
		return nil, errors.New("bmp encoder not available")
	}

	cc := astiav.AllocCodecContext(enc)
	if cc == nil {
		return nil, errors.New("failed to allocate encoder context")
	}
	cc.SetWidth(cfg.Width)
	cc.SetHeight(cfg.Height)
	cc.SetPixelFormat(pf)
	cc.SetTimeBase(astiav.NewRational(1, 1))

	if err := cc.Open(enc, nil); err != nil {
		cc.Free()
		return nil, fmt.Errorf("opening bmp encoder: %w", err)
	}
	return &encoder{cc: cc}, nil
}

func (e *encoder) SendFrame(f codec.Frame) error {
	fr, ok := f.(*frame)
	if !ok || fr.f == nil {
		return fmt.Errorf("unexpected frame %T", f)
	}
	return translate(e.cc.SendFrame(fr.f))
}

func (e *encoder) ReceivePacket() (codec.Packet, error) {
	p := astiav.AllocPacket()
	if err := e.cc.ReceivePacket(p); err != nil {
		p.Free()
		return nil, translate(err)
	}
	return &packet{p: p}, nil
}

func (e *encoder) Close() error {
	if e.cc != nil {
		e.cc.Free()
		e.cc = nil
	}
	return nil
}
