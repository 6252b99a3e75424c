package thumb

import (
	"strings"
	"testing"

	"video-thumbnailer/internal/bitmap"
	"video-thumbnailer/internal/codec/codectest"
)

const clipPath = "/media/clip.mp4"

// newBackend returns a backend holding clip at clipPath. Every resource it
// hands out must be released by the end of the test.
func newBackend(t *testing.T, clip codectest.Clip) *codectest.Backend {
	t.Helper()
	b := codectest.New()
	b.Add(clipPath, clip)
	t.Cleanup(func() {
		if leaks := b.Leaks(); len(leaks) > 0 {
			t.Errorf("leaked resources: %s", strings.Join(leaks, ", "))
		}
	})
	return b
}

func mustCreate(t *testing.T, b *codectest.Backend) *Session {
	t.Helper()
	s, err := Create(b, clipPath)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustLoad(t *testing.T, s *Session, position float64) []byte {
	t.Helper()
	n, buf, err := s.LoadFrame(position)
	if err != nil {
		t.Fatalf("LoadFrame(%v) error = %v", position, err)
	}
	defer buf.Free()

	if n != uint64(buf.Len()) {
		t.Errorf("LoadFrame(%v) size = %d, buffer holds %d", position, n, buf.Len())
	}
	return append([]byte(nil), buf.Bytes()...)
}

// frameNumber recovers the clip frame encoded in a thumbnail. The test
// backend paints frame i with a blue channel of i.
func frameNumber(t *testing.T, data []byte) int {
	t.Helper()
	img, err := bitmap.Decode(data)
	if err != nil {
		t.Fatalf("decoding thumbnail: %v", err)
	}
	b := img.Bounds()
	_, _, blue, _ := img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2).RGBA()
	return int(blue >> 8)
}
