package streaming

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"video-thumbnailer/internal/logging"
)

// Sentinel errors for body writes.
var (
	// ErrWriteTimeout indicates that a chunk could not be written before its
	// deadline. This typically occurs when a client is receiving data too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the client disconnected before the body
	// was written. This is detected via the request context being canceled.
	ErrClientGone = errors.New("client disconnected")
)

// Config configures body writes
type Config struct {
	// WriteTimeout bounds each chunk write (0 = no deadline)
	WriteTimeout time.Duration
	// ChunkSize is the size of chunks to write (0 = write as received)
	ChunkSize int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// Writer writes a response body in chunks, each under its own write
// deadline. The HTTP server has no global write timeout, so these
// deadlines are what bound a stalled client.
type Writer struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	ctx       context.Context
	config    Config
	deadlines bool
	start     time.Time
	written   int64
}

// NewWriter wraps w. ctx is normally the request context.
func NewWriter(ctx context.Context, w http.ResponseWriter, config Config) *Writer {
	return &Writer{
		w:         w,
		rc:        http.NewResponseController(w),
		ctx:       ctx,
		config:    config,
		deadlines: config.WriteTimeout > 0,
		start:     time.Now(),
	}
}

// Write implements io.Writer.
func (bw *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if bw.ctx.Err() != nil {
			return total, ErrClientGone
		}

		chunk := p
		if bw.config.ChunkSize > 0 && len(chunk) > bw.config.ChunkSize {
			chunk = chunk[:bw.config.ChunkSize]
		}

		bw.setDeadline()
		n, err := bw.w.Write(chunk)
		total += n
		bw.written += int64(n)
		if err != nil {
			return total, bw.classify(err)
		}
		p = p[n:]

		// Not every writer can flush; the data is still buffered.
		_ = bw.rc.Flush()
	}
	return total, nil
}

func (bw *Writer) setDeadline() {
	if !bw.deadlines {
		return
	}
	err := bw.rc.SetWriteDeadline(time.Now().Add(bw.config.WriteTimeout))
	if errors.Is(err, http.ErrNotSupported) {
		bw.deadlines = false
	}
}

func (bw *Writer) classify(err error) error {
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrWriteTimeout, err)
	case bw.ctx.Err() != nil:
		return ErrClientGone
	default:
		return err
	}
}

// Stats returns the number of bytes written and the time since the
// writer was created.
func (bw *Writer) Stats() (bytesWritten int64, duration time.Duration) {
	return bw.written, time.Since(bw.start)
}

// WriteBody writes data to w with the protections of Writer.
func WriteBody(ctx context.Context, w http.ResponseWriter, data []byte, config Config) error {
	bw := NewWriter(ctx, w, config)
	_, err := bw.Write(data)

	bytesWritten, duration := bw.Stats()
	logging.Debug("Body written: %d of %d bytes in %v", bytesWritten, len(data), duration)

	return err
}
