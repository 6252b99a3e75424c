package streaming

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

// deadlineWriter records writes, flushes and deadlines. failAt makes the
// write with that index fail with err.
type deadlineWriter struct {
	header    http.Header
	body      bytes.Buffer
	writes    int
	flushes   int
	deadlines []time.Time
	failAt    int
	err       error
}

func newDeadlineWriter() *deadlineWriter {
	return &deadlineWriter{header: http.Header{}, failAt: -1}
}

func (d *deadlineWriter) Header() http.Header { return d.header }
func (d *deadlineWriter) WriteHeader(int)     {}
func (d *deadlineWriter) Flush()              { d.flushes++ }

func (d *deadlineWriter) Write(p []byte) (int, error) {
	defer func() { d.writes++ }()
	if d.writes == d.failAt {
		return 0, d.err
	}
	return d.body.Write(p)
}

func (d *deadlineWriter) SetWriteDeadline(t time.Time) error {
	d.deadlines = append(d.deadlines, t)
	return nil
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.WriteTimeout != 30*time.Second {
		t.Errorf("Expected WriteTimeout=30s, got %v", config.WriteTimeout)
	}
	if config.ChunkSize != 64*1024 {
		t.Errorf("Expected ChunkSize=64KB, got %d", config.ChunkSize)
	}
}

func TestWriterChunks(t *testing.T) {
	w := newDeadlineWriter()
	data := bytes.Repeat([]byte{0xAB}, 150*1024)

	bw := NewWriter(context.Background(), w, DefaultConfig())
	n, err := bw.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(data) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
	}
	if !bytes.Equal(w.body.Bytes(), data) {
		t.Error("body differs from input")
	}

	if w.writes != 3 {
		t.Errorf("Expected 3 chunk writes, got %d", w.writes)
	}
	if w.flushes != 3 {
		t.Errorf("Expected 3 flushes, got %d", w.flushes)
	}
	if len(w.deadlines) != 3 {
		t.Errorf("Expected 3 deadlines, got %d", len(w.deadlines))
	}
	for i, d := range w.deadlines {
		if time.Until(d) <= 0 || time.Until(d) > 30*time.Second {
			t.Errorf("deadline %d = %v, want within 30s from now", i, d)
		}
	}

	bytesWritten, _ := bw.Stats()
	if bytesWritten != int64(len(data)) {
		t.Errorf("Expected bytes written=%d, got %d", len(data), bytesWritten)
	}
}

func TestWriterNoChunking(t *testing.T) {
	w := newDeadlineWriter()
	config := Config{ChunkSize: 0}

	bw := NewWriter(context.Background(), w, config)
	if _, err := bw.Write(make([]byte, 200*1024)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if w.writes != 1 {
		t.Errorf("Expected 1 write, got %d", w.writes)
	}
	if len(w.deadlines) != 0 {
		t.Errorf("Expected no deadlines with zero WriteTimeout, got %d", len(w.deadlines))
	}
}

func TestWriterWithoutDeadlineSupport(t *testing.T) {
	w := httptest.NewRecorder()
	data := bytes.Repeat([]byte("frame"), 30000)

	if err := WriteBody(context.Background(), w, data, DefaultConfig()); err != nil {
		t.Fatalf("WriteBody failed: %v", err)
	}
	if !bytes.Equal(w.Body.Bytes(), data) {
		t.Error("body differs from input")
	}
	if !w.Flushed {
		t.Error("Expected recorder to be flushed")
	}
}

func TestWriterClientGone(t *testing.T) {
	w := newDeadlineWriter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := NewWriter(ctx, w, DefaultConfig()).Write([]byte("data"))
	if !errors.Is(err, ErrClientGone) {
		t.Errorf("Expected ErrClientGone, got %v", err)
	}
	if n != 0 || w.writes != 0 {
		t.Errorf("Expected nothing written, got n=%d writes=%d", n, w.writes)
	}
}

func TestWriterErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		cancel bool
		want   error
	}{
		{"deadline exceeded", os.ErrDeadlineExceeded, false, ErrWriteTimeout},
		{"closed pipe", io.ErrClosedPipe, false, io.ErrClosedPipe},
		{"closed pipe after cancel", io.ErrClosedPipe, true, ErrClientGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newDeadlineWriter()
			w.failAt = 1
			w.err = tt.err

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			config := Config{WriteTimeout: time.Second, ChunkSize: 4}
			bw := NewWriter(ctx, w, config)
			if tt.cancel {
				// Cancel between the first and second chunk.
				cancelAfterFirst := &cancelingWriter{deadlineWriter: w, cancel: cancel}
				bw = NewWriter(ctx, cancelAfterFirst, config)
			}

			n, err := bw.Write([]byte("12345678"))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if n != 4 {
				t.Errorf("Expected 4 bytes before the failure, got %d", n)
			}
		})
	}
}

// cancelingWriter cancels the request context after its first write.
type cancelingWriter struct {
	*deadlineWriter
	cancel context.CancelFunc
}

func (c *cancelingWriter) Write(p []byte) (int, error) {
	n, err := c.deadlineWriter.Write(p)
	c.cancel()
	return n, err
}
