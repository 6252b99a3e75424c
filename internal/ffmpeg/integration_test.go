package ffmpeg_test

import (
	"context"
	"errors"
	"math"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"video-thumbnailer/internal/bitmap"
	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/ffmpeg"
	"video-thumbnailer/internal/thumb"
)

// Integration tests decoding real files generated with the ffmpeg CLI.

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping integration test")
	}
}

func runFFmpeg(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	args = append([]string{"-hide_banner", "-loglevel", "error"}, args...)
	return exec.CommandContext(ctx, "ffmpeg", args...).Run()
}

// createTestVideo writes a 2 second, 30 fps, 320x240 clip with a single
// keyframe and B-frames, so the decoder holds frames back.
func createTestVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")

	encoders := [][]string{
		{"-c:v", "libx264", "-pix_fmt", "yuv420p"},
		{"-c:v", "mpeg4"},
	}
	for _, enc := range encoders {
		args := []string{"-f", "lavfi", "-i", "testsrc=size=320x240:rate=30:duration=2"}
		args = append(args, enc...)
		args = append(args, "-g", "60", "-bf", "2", "-y", path)
		if err := runFFmpeg(args...); err == nil {
			return path
		}
	}
	t.Skip("could not create test video")
	return ""
}

func newSession(t *testing.T, path string) *thumb.Session {
	t.Helper()
	backend := ffmpeg.New()
	if err := backend.Init(codec.VerbosityQuiet); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	s, err := thumb.Create(backend, path)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func loadBitmap(t *testing.T, s *thumb.Session, position float64) bitmap.Info {
	t.Helper()
	n, buf, err := s.LoadFrame(position)
	if err != nil {
		t.Fatalf("LoadFrame(%v) error = %v", position, err)
	}
	defer buf.Free()

	if n != uint64(buf.Len()) {
		t.Errorf("LoadFrame(%v) size = %d, buffer holds %d", position, n, buf.Len())
	}
	info, err := bitmap.Inspect(buf.Bytes())
	if err != nil {
		t.Fatalf("LoadFrame(%v) output is not a bitmap: %v", position, err)
	}
	return info
}

func TestSessionIntegration(t *testing.T) {
	requireFFmpeg(t)
	s := newSession(t, createTestVideo(t))

	if got := s.CodecName(); got != "h264" && got != "mpeg4" {
		t.Errorf("CodecName() = %q, want h264 or mpeg4", got)
	}
	if s.Width() != 320 || s.Height() != 240 {
		t.Errorf("size = %dx%d, want 320x240", s.Width(), s.Height())
	}
	if got := s.Duration(); math.Abs(got-2) > 0.1 {
		t.Errorf("Duration() = %v, want about 2", got)
	}

	info := loadBitmap(t, s, 0.5)
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("thumbnail size = %dx%d, want 320x240", info.Width, info.Height)
	}

	// Every further call seeks and reopens the decoder.
	for _, pos := range []float64{0.25, 0, 0.5} {
		info := loadBitmap(t, s, pos)
		if info.Width != 320 || info.Height != 240 {
			t.Errorf("LoadFrame(%v) size = %dx%d, want 320x240", pos, info.Width, info.Height)
		}
	}
}

func TestSessionIntegrationNearEnd(t *testing.T) {
	requireFFmpeg(t)
	s := newSession(t, createTestVideo(t))

	// The last frames only leave the decoder once it is drained.
	info := loadBitmap(t, s, 0.95)
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("thumbnail size = %dx%d, want 320x240", info.Width, info.Height)
	}

	// The session keeps working after a drain.
	if info := loadBitmap(t, s, 0.1); info.Width != 320 {
		t.Errorf("thumbnail width after drain = %d, want 320", info.Width)
	}
}

func TestCreateIntegrationFailures(t *testing.T) {
	requireFFmpeg(t)
	dir := t.TempDir()

	audio := filepath.Join(dir, "tone.wav")
	if err := runFFmpeg("-f", "lavfi", "-i", "sine=duration=1", "-c:a", "pcm_s16le", "-y", audio); err != nil {
		t.Skipf("could not create test audio: %v", err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "missing.mp4"), thumb.ErrContainerOpen},
		{"audio only", audio, thumb.ErrNoVideoStream},
	}

	backend := ffmpeg.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := thumb.Create(backend, tt.path)
			if s != nil {
				s.Close()
				t.Error("Create() returned a session on failure")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
}
