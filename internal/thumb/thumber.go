package thumb

import (
	"errors"
	"fmt"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/logging"
)

// Thumber is the operation set a host application uses to drive thumbnail
// extraction. Every method tolerates a nil Session or FrameBuffer.
type Thumber interface {
	Create(path string) (*Session, error)
	LoadFrame(s *Session, position float64) (uint64, *FrameBuffer, error)
	FreeFrameBuffer(b *FrameBuffer)
	Destroy(s *Session)
	CodecName(s *Session) string
	Duration(s *Session) float64
	Width(s *Session) int
	Height(s *Session) int
}

// Init initializes backend at the given verbosity and returns the operation
// table bound to it. Calling Init again re-applies the verbosity; backends
// register their codecs only once.
func Init(backend codec.Backend, v codec.Verbosity) (Thumber, error) {
	if backend == nil {
		return nil, errors.New("thumb: nil backend")
	}
	if err := backend.Init(v); err != nil {
		return nil, fmt.Errorf("thumb: initializing %s backend: %w", backend.Name(), err)
	}

	logging.Debug("Thumbnail backend %s initialized (verbosity %s)", backend.Name(), v)
	return &table{backend: backend}, nil
}

type table struct {
	backend codec.Backend
}

func (t *table) Create(path string) (*Session, error) {
	return Create(t.backend, path)
}

func (t *table) LoadFrame(s *Session, position float64) (uint64, *FrameBuffer, error) {
	return s.LoadFrame(position)
}

func (t *table) FreeFrameBuffer(b *FrameBuffer) { b.Free() }

func (t *table) Destroy(s *Session) { _ = s.Close() }

func (t *table) CodecName(s *Session) string { return s.CodecName() }

func (t *table) Duration(s *Session) float64 { return s.Duration() }

func (t *table) Width(s *Session) int { return s.Width() }

func (t *table) Height(s *Session) int { return s.Height() }
