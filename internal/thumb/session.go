package thumb

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/logging"
	"video-thumbnailer/internal/metrics"
)

// Session holds everything needed to extract thumbnails from one input.
// The zero value is not usable; call Create.
type Session struct {
	backend codec.Backend
	path    string

	input   codec.Input
	stream  codec.StreamInfo
	decoder codec.Decoder

	durationTS int64
	width      int
	height     int
	codecName  string

	pipeline *pixelPipeline
	encoder  *frameEncoder

	counted bool
	closed  bool
}

// Create opens path, probes its streams, selects the best video stream and
// opens an error-tolerant decoder for it. On failure every resource acquired
// so far is released and a nil Session is returned.
func Create(backend codec.Backend, path string) (*Session, error) {
	start := time.Now()
	s, err := create(backend, path)
	metrics.SessionCreateDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SessionsCreatedTotal.WithLabelValues(KindOf(err).String()).Inc()
		return nil, err
	}

	metrics.SessionsCreatedTotal.WithLabelValues("success").Inc()
	metrics.SessionsOpen.Inc()
	s.counted = true
	return s, nil
}

func create(backend codec.Backend, path string) (*Session, error) {
	if backend == nil {
		return nil, newError(KindContainerOpen, "create", path, errors.New("nil backend"))
	}

	s := &Session{backend: backend, path: path}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	input, err := backend.OpenInput(path)
	if err != nil {
		logging.Error("Cannot open file %s: %v", path, err)
		return nil, newError(KindContainerOpen, "create", path, err)
	}
	s.input = input

	if err := input.FindStreamInfo(); err != nil {
		logging.Error("Cannot find stream info for %s: %v", path, err)
		return nil, newError(KindProbe, "create", path, err)
	}

	s.durationTS = input.Duration()
	if s.durationTS <= 0 {
		logging.Error("Cannot determine duration of %s", path)
		return nil, newError(KindProbe, "create", path, fmt.Errorf("container reports duration %d", s.durationTS))
	}

	stream, err := input.BestVideoStream()
	if err != nil {
		logging.Error("Cannot find video stream in %s: %v", path, err)
		return nil, newError(KindNoVideoStream, "create", path, err)
	}
	s.stream = stream

	decoder, err := input.OpenDecoder(stream, codec.DecoderOptions{ErrorTolerant: true})
	if err != nil {
		logging.Error("Cannot open %s decoder for %s: %v", stream.CodecName, path, err)
		return nil, newError(KindDecoderOpen, "create", path, err)
	}
	s.decoder = decoder

	s.width = decoder.Width()
	s.height = decoder.Height()
	s.codecName = decoder.CodecName()
	if s.codecName == "" {
		s.codecName = stream.CodecName
	}

	logging.Debug("Opened %s: codec=%s %dx%d duration=%.3fs stream=%d timebase=%s",
		path, s.codecName, s.width, s.height, s.Duration(), stream.Index, stream.TimeBase)

	ok = true
	return s, nil
}

// Path returns the path the session was created from.
func (s *Session) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// CodecName returns the short name of the video decoder, e.g. "h264".
func (s *Session) CodecName() string {
	if s == nil {
		return ""
	}
	return s.codecName
}

// Duration returns the container duration in seconds.
func (s *Session) Duration() float64 {
	if s == nil {
		return 0
	}
	tb := codec.GlobalTimeBase
	return float64(s.durationTS) * float64(tb.Num) / float64(tb.Den)
}

// Width returns the decoder's frame width in pixels.
func (s *Session) Width() int {
	if s == nil {
		return 0
	}
	return s.width
}

// Height returns the decoder's frame height in pixels.
func (s *Session) Height() int {
	if s == nil {
		return 0
	}
	return s.height
}

// LoadFrame extracts and encodes the frame nearest to position, a fraction
// of the container duration in [0, 1]. It returns the encoded size and a
// buffer the caller owns. On failure the size is 0 and the buffer nil.
func (s *Session) LoadFrame(position float64) (uint64, *FrameBuffer, error) {
	start := time.Now()
	buf, err := s.loadFrame(position)
	metrics.ThumbnailExtractionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ThumbnailExtractionsTotal.WithLabelValues(KindOf(err).String()).Inc()
		return 0, nil, err
	}

	metrics.ThumbnailExtractionsTotal.WithLabelValues("success").Inc()
	metrics.ThumbnailOutputBytes.Observe(float64(buf.Len()))
	return uint64(buf.Len()), buf, nil
}

func (s *Session) loadFrame(position float64) (*FrameBuffer, error) {
	if s == nil || s.closed {
		return nil, newError(KindClosed, "load", s.Path(), nil)
	}
	if math.IsNaN(position) || position < 0 || position > 1 {
		return nil, newError(KindInvalidPosition, "load", s.path, fmt.Errorf("position %v outside [0, 1]", position))
	}

	stageStart := time.Now()
	frame, err := s.locate(position)
	metrics.ThumbnailStageDuration.WithLabelValues("locate").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, err
	}

	if err := s.ensurePipeline(); err != nil {
		frame.Release()
		return nil, err
	}
	if err := s.ensureEncoder(); err != nil {
		frame.Release()
		return nil, err
	}

	stageStart = time.Now()
	converted, err := s.convert(frame)
	frame.Release()
	metrics.ThumbnailStageDuration.WithLabelValues("convert").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, err
	}

	stageStart = time.Now()
	data, err := s.encode(converted)
	converted.Release()
	metrics.ThumbnailStageDuration.WithLabelValues("encode").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, err
	}

	return &FrameBuffer{data: data}, nil
}

// Close releases the pipeline, encoder, decoder and input in that order.
// It is safe to call on a nil Session and more than once.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	if s.pipeline != nil {
		s.pipeline.close()
		s.pipeline = nil
	}
	if s.encoder != nil {
		s.encoder.close()
		s.encoder = nil
	}

	var errs []error
	if s.decoder != nil {
		if err := s.decoder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing decoder: %w", err))
		}
		s.decoder = nil
	}
	if s.input != nil {
		if err := s.input.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing input: %w", err))
		}
		s.input = nil
	}

	if s.counted {
		metrics.SessionsOpen.Dec()
		s.counted = false
	}

	if err := errors.Join(errs...); err != nil {
		logging.Warn("Error closing session for %s: %v", s.path, err)
		return err
	}
	return nil
}

// FrameBuffer holds one encoded BMP image. The bytes belong to the caller
// until Free is called.
type FrameBuffer struct {
	data []byte
}

// Bytes returns the encoded image, or nil after Free.
func (b *FrameBuffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the encoded size in bytes.
func (b *FrameBuffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// WriteTo writes the encoded image to w.
func (b *FrameBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// Free drops the buffer's contents. Free on nil or on an already freed
// buffer is a no-op.
func (b *FrameBuffer) Free() {
	if b == nil {
		return
	}
	b.data = nil
}
