package thumb

import (
	"errors"
	"fmt"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/metrics"
)

// pixelPipeline converts decoded frames to the pixel format negotiated with
// the still-image encoder. It is built once per session.
type pixelPipeline struct {
	conv   codec.Converter
	format codec.PixelFormat
}

func (p *pixelPipeline) close() {
	if p.conv != nil {
		if err := p.conv.Close(); err != nil {
			logging.Warn("Error closing conversion pipeline: %v", err)
		}
		p.conv = nil
	}
}

func (s *Session) ensurePipeline() error {
	if s.pipeline != nil {
		return nil
	}

	native := s.decoder.PixelFormat()
	format, err := s.backend.BestPixelFormat(s.backend.StillImageFormats(), native)
	if err != nil {
		logging.Error("No encoder pixel format for %s (%s): %v", s.path, native, err)
		return newError(KindConversion, "load", s.path, err)
	}

	conv, err := s.backend.NewConverter(codec.ConverterConfig{
		Width:             s.decoder.Width(),
		Height:            s.decoder.Height(),
		SourceFormat:      native,
		TimeBase:          s.stream.TimeBase,
		SampleAspectRatio: s.decoder.SampleAspectRatio(),
		TargetFormat:      format,
	})
	if err != nil {
		logging.Error("Failed to build conversion pipeline for %s: %v", s.path, err)
		return newError(KindConversion, "load", s.path, err)
	}

	metrics.ThumbnailPipelineBuildsTotal.WithLabelValues("converter").Inc()
	logging.Debug("Conversion pipeline for %s: %s -> %s", s.path, native, format)
	s.pipeline = &pixelPipeline{conv: conv, format: format}
	return nil
}

// convert pushes frame through the pipeline and returns the converted frame.
// The pipeline must already be built. The caller keeps ownership of frame
// and owns the result.
func (s *Session) convert(frame codec.Frame) (codec.Frame, error) {
	if err := s.pipeline.conv.Push(frame); err != nil {
		logging.Error("Failed to add frame to source for %s: %v", s.path, err)
		return nil, newError(KindConversion, "load", s.path, err)
	}

	out, err := s.pipeline.conv.Pull()
	if err != nil {
		if errors.Is(err, codec.ErrAgain) {
			s.pipeline.close()
			s.pipeline = nil
			err = fmt.Errorf("conversion produced no frame: %w", err)
		}
		logging.Error("Failed to get frame from sink for %s: %v", s.path, err)
		return nil, newError(KindConversion, "load", s.path, err)
	}

	out.SetPTS(0)
	return out, nil
}
