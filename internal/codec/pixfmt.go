package codec

import (
	"errors"
	"strings"
)

// PixelFormat names a pixel layout using libavutil naming ("yuv420p",
// "bgr24", ...).
type PixelFormat string

// Pixel formats the core and the bundled backends know about.
const (
	PixelFormatNone     PixelFormat = ""
	PixelFormatYUV420P  PixelFormat = "yuv420p"
	PixelFormatYUV422P  PixelFormat = "yuv422p"
	PixelFormatYUV444P  PixelFormat = "yuv444p"
	PixelFormatYUVA420P PixelFormat = "yuva420p"
	PixelFormatNV12     PixelFormat = "nv12"
	PixelFormatRGB24    PixelFormat = "rgb24"
	PixelFormatBGR24    PixelFormat = "bgr24"
	PixelFormatBGRA     PixelFormat = "bgra"
	PixelFormatRGBA     PixelFormat = "rgba"
	PixelFormatRGB565   PixelFormat = "rgb565le"
	PixelFormatRGB555   PixelFormat = "rgb555le"
	PixelFormatRGB444   PixelFormat = "rgb444le"
	PixelFormatRGB8     PixelFormat = "rgb8"
	PixelFormatBGR8     PixelFormat = "bgr8"
	PixelFormatGray     PixelFormat = "gray"
	PixelFormatPal8     PixelFormat = "pal8"
	PixelFormatMonoBlk  PixelFormat = "monob"
)

// ErrNoPixelFormat is returned when a format list is empty.
var ErrNoPixelFormat = errors.New("codec: no candidate pixel format")

type pixelTraits struct {
	depth   int // bits per colour component
	color   bool
	alpha   bool
	palette bool
	// chroma subsampling: log2 of horizontal and vertical factors
	chromaW, chromaH int
}

var knownPixelFormats = map[PixelFormat]pixelTraits{
	PixelFormatYUV420P:  {depth: 8, color: true, chromaW: 1, chromaH: 1},
	PixelFormatYUV422P:  {depth: 8, color: true, chromaW: 1},
	PixelFormatYUV444P:  {depth: 8, color: true},
	PixelFormatYUVA420P: {depth: 8, color: true, alpha: true, chromaW: 1, chromaH: 1},
	PixelFormatNV12:     {depth: 8, color: true, chromaW: 1, chromaH: 1},
	PixelFormatRGB24:    {depth: 8, color: true},
	PixelFormatBGR24:    {depth: 8, color: true},
	PixelFormatBGRA:     {depth: 8, color: true, alpha: true},
	PixelFormatRGBA:     {depth: 8, color: true, alpha: true},
	PixelFormatRGB565:   {depth: 5, color: true},
	PixelFormatRGB555:   {depth: 5, color: true},
	PixelFormatRGB444:   {depth: 4, color: true},
	PixelFormatRGB8:     {depth: 2, color: true},
	PixelFormatBGR8:     {depth: 2, color: true},
	"rgb4_byte":         {depth: 1, color: true},
	"bgr4_byte":         {depth: 1, color: true},
	PixelFormatGray:     {depth: 8},
	PixelFormatPal8:     {depth: 8, color: true, alpha: true, palette: true},
	PixelFormatMonoBlk:  {depth: 1},
}

func traitsOf(f PixelFormat) pixelTraits {
	if t, ok := knownPixelFormats[f]; ok {
		return t
	}
	name := strings.ToLower(string(f))
	t := pixelTraits{depth: 8, color: !strings.HasPrefix(name, "gray")}
	for _, prefix := range []string{"rgba", "bgra", "argb", "abgr", "yuva", "gbrap", "ya"} {
		if strings.HasPrefix(name, prefix) {
			t.alpha = true
			break
		}
	}
	if strings.Contains(name, "10") || strings.Contains(name, "12") || strings.Contains(name, "16") {
		t.depth = 10
	}
	return t
}

// ClosestPixelFormat returns the candidate that loses the least information
// when converting from src. An exact match always wins; ties are broken by
// candidate order, so the result is deterministic.
func ClosestPixelFormat(candidates []PixelFormat, src PixelFormat) (PixelFormat, error) {
	if len(candidates) == 0 {
		return PixelFormatNone, ErrNoPixelFormat
	}

	best := candidates[0]
	bestLoss := -1
	for _, c := range candidates {
		if c == src {
			return c, nil
		}
		loss := conversionLoss(traitsOf(src), traitsOf(c))
		if bestLoss < 0 || loss < bestLoss {
			best, bestLoss = c, loss
		}
	}
	return best, nil
}

// conversionLoss scores how much of src survives in dst. Lower is better.
// Weights follow the order colour > alpha > depth > palette > chroma, with
// a small penalty for needlessly wide targets.
func conversionLoss(src, dst pixelTraits) int {
	loss := 0
	if src.color && !dst.color {
		loss += 10000
	}
	if src.alpha && !dst.alpha {
		loss += 1000
	}
	if dst.depth < src.depth {
		loss += 100 * (src.depth - dst.depth)
	}
	if dst.palette && !src.palette {
		loss += 50
	}
	if dst.chromaW > src.chromaW {
		loss += 10 * (dst.chromaW - src.chromaW)
	}
	if dst.chromaH > src.chromaH {
		loss += 10 * (dst.chromaH - src.chromaH)
	}
	if dst.depth > src.depth {
		loss += dst.depth - src.depth
	}
	if dst.alpha && !src.alpha {
		loss++
	}
	return loss
}
