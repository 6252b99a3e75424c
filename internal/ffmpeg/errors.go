package ffmpeg

import (
	"errors"
	"fmt"
	"io"

	"video-thumbnailer/internal/codec"

	"github.com/asticode/go-astiav"
)

// translate maps library errors onto the codec sentinels, keeping the
// original error in the chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, astiav.ErrEagain):
		return fmt.Errorf("%w: %w", codec.ErrAgain, err)
	case errors.Is(err, astiav.ErrEof):
		return fmt.Errorf("%w: %w", io.EOF, err)
	case errors.Is(err, astiav.ErrStreamNotFound):
		return fmt.Errorf("%w: %w", codec.ErrStreamNotFound, err)
	case errors.Is(err, astiav.ErrDecoderNotFound):
		return fmt.Errorf("%w: %w", codec.ErrDecoderNotFound, err)
	default:
		return err
	}
}

func toPixelFormat(pf astiav.PixelFormat) codec.PixelFormat {
	return codec.PixelFormat(pf.String())
}

func fromPixelFormat(pf codec.PixelFormat) (astiav.PixelFormat, error) {
	f := astiav.FindPixelFormatByName(string(pf))
	if f == astiav.PixelFormatNone {
		return f, fmt.Errorf("unknown pixel format %q", pf)
	}
	return f, nil
}

func toRational(r astiav.Rational) codec.Rational {
	return codec.Rational{Num: r.Num(), Den: r.Den()}
}
