package thumb

import (
	"errors"
	"fmt"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/metrics"
)

// frameEncoder wraps the still-image encoder built for a session.
type frameEncoder struct {
	enc codec.Encoder
}

func (e *frameEncoder) close() {
	if e.enc != nil {
		if err := e.enc.Close(); err != nil {
			logging.Warn("Error closing encoder: %v", err)
		}
		e.enc = nil
	}
}

func (s *Session) ensureEncoder() error {
	if s.encoder != nil {
		return nil
	}

	enc, err := s.backend.NewEncoder(codec.EncoderConfig{
		Width:       s.width,
		Height:      s.height,
		PixelFormat: s.pipeline.format,
	})
	if err != nil {
		logging.Error("Failed to open encoder for %s: %v", s.path, err)
		return newError(KindEncoderOpen, "load", s.path, err)
	}

	metrics.ThumbnailPipelineBuildsTotal.WithLabelValues("encoder").Inc()
	logging.Debug("Encoder for %s: %dx%d %s", s.path, s.width, s.height, s.pipeline.format)
	s.encoder = &frameEncoder{enc: enc}
	return nil
}

// encode turns a converted frame into a standalone image. The caller keeps
// ownership of frame. The returned bytes are a copy.
func (s *Session) encode(frame codec.Frame) ([]byte, error) {
	if err := s.encoder.enc.SendFrame(frame); err != nil {
		logging.Error("Failed to encode %s: %v", s.path, err)
		return nil, newError(KindEncode, "load", s.path, err)
	}

	pkt, err := s.encoder.enc.ReceivePacket()
	if err != nil {
		if errors.Is(err, codec.ErrAgain) {
			// The frame is still queued inside the encoder; drop it so the
			// next call cannot receive this picture.
			s.encoder.close()
			s.encoder = nil
			err = fmt.Errorf("encoder produced no output: %w", err)
		}
		logging.Error("Failed to encode %s: %v", s.path, err)
		return nil, newError(KindEncode, "load", s.path, err)
	}
	defer pkt.Release()

	src := pkt.Data()
	data := make([]byte, len(src))
	copy(data, src)
	return data, nil
}
