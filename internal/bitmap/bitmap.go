// Package bitmap inspects and decodes the BMP images produced by the
// thumbnail encoder.
package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/bmp"
)

const (
	fileHeaderLen = 14
	minInfoLen    = 40
)

// ErrNotBMP is returned for data that does not start with a BMP header.
var ErrNotBMP = errors.New("bitmap: not a BMP image")

// Info describes a BMP header.
type Info struct {
	Width        int
	Height       int
	TopDown      bool
	BitsPerPixel int
	Compression  uint32
	FileSize     uint32
	PixelOffset  uint32
}

// Inspect parses the file and info headers of a BMP image without decoding
// its pixels. It accepts every bit depth the encoder can emit, including
// the 16-bit and palette layouts image/bmp decoders reject.
func Inspect(data []byte) (Info, error) {
	if len(data) < fileHeaderLen+minInfoLen || data[0] != 'B' || data[1] != 'M' {
		return Info{}, ErrNotBMP
	}

	le := binary.LittleEndian
	infoLen := le.Uint32(data[14:18])
	if infoLen < minInfoLen {
		return Info{}, fmt.Errorf("bitmap: unsupported info header size %d", infoLen)
	}

	height := int32(le.Uint32(data[22:26]))
	info := Info{
		Width:        int(int32(le.Uint32(data[18:22]))),
		Height:       int(height),
		BitsPerPixel: int(le.Uint16(data[28:30])),
		Compression:  le.Uint32(data[30:34]),
		FileSize:     le.Uint32(data[2:6]),
		PixelOffset:  le.Uint32(data[10:14]),
	}
	if height < 0 {
		info.Height = int(-height)
		info.TopDown = true
	}

	if info.Width <= 0 || info.Height == 0 {
		return Info{}, fmt.Errorf("bitmap: invalid dimensions %dx%d", info.Width, info.Height)
	}
	if int(info.PixelOffset) > len(data) {
		return Info{}, fmt.Errorf("bitmap: pixel offset %d beyond %d bytes", info.PixelOffset, len(data))
	}
	return info, nil
}

// Decode decodes a BMP image.
func Decode(data []byte) (image.Image, error) {
	if _, err := Inspect(data); err != nil {
		return nil, err
	}
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("bitmap: %w", err)
	}
	return img, nil
}

// DecodeConfig returns the dimensions and colour model of a BMP image.
func DecodeConfig(data []byte) (image.Config, error) {
	cfg, err := bmp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("bitmap: %w", err)
	}
	return cfg, nil
}
