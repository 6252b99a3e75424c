// Package preview re-encodes BMP thumbnails into web-friendly formats,
// optionally fitting them into a bounding box.
package preview

import (
	"bytes"
	"fmt"
	"strings"

	"video-thumbnailer/internal/bitmap"

	"github.com/disintegration/imaging"
)

// Format is an output image format.
type Format string

const (
	FormatBMP  Format = "bmp"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultJPEGQuality matches the quality used for cached thumbnails.
const DefaultJPEGQuality = 80

// ParseFormat accepts bmp, png, jpeg and jpg, case-insensitively. An empty
// string selects BMP.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bmp":
		return FormatBMP, nil
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "image/bmp"
	}
}

// Extension returns the file extension of f including the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// Options controls Render. Zero Width and Height keep the native size; a
// single zero dimension is derived from the aspect ratio.
type Options struct {
	Format  Format
	Width   int
	Height  int
	Quality int
}

// Render converts a BMP thumbnail according to opts. BMP output at native
// size returns the input unchanged.
func Render(bmpData []byte, opts Options) ([]byte, error) {
	if opts.Format == "" {
		opts.Format = FormatBMP
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Format == FormatBMP && opts.Width == 0 && opts.Height == 0 {
		return bmpData, nil
	}

	img, err := bitmap.Decode(bmpData)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.Width > 0 && opts.Height > 0:
		img = imaging.Fit(img, opts.Width, opts.Height, imaging.Lanczos)
	case opts.Width > 0 || opts.Height > 0:
		img = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	}

	var encFormat imaging.Format
	var encOpts []imaging.EncodeOption
	switch opts.Format {
	case FormatPNG:
		encFormat = imaging.PNG
	case FormatJPEG:
		encFormat = imaging.JPEG
		quality := opts.Quality
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		encOpts = append(encOpts, imaging.JPEGQuality(quality))
	case FormatBMP:
		encFormat = imaging.BMP
	default:
		return nil, fmt.Errorf("unsupported format %q", opts.Format)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, encFormat, encOpts...); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", opts.Format, err)
	}
	return buf.Bytes(), nil
}
