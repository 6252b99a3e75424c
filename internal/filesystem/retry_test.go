package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
	if config.VolumeResolver != nil {
		t.Error("VolumeResolver should be nil by default")
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"ESTALE error", syscall.ESTALE, true},
		{"wrapped ESTALE", &os.PathError{Op: "stat", Path: "/media/a.mp4", Err: syscall.ESTALE}, true},
		{"ENOENT error", syscall.ENOENT, false},
		{"generic error", os.ErrNotExist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_Resolve(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"media":   "/media",
		"archive": "/media/archive",
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{"media root", "/media", "media"},
		{"media video", "/media/movies/clip.mp4", "media"},
		{"longest prefix wins", "/media/archive/2019/clip.mkv", "archive"},
		{"sibling with shared prefix", "/media2/clip.mp4", "unknown"},
		{"unknown path", "/etc/hosts", "unknown"},
		{"root path", "/", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vr.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_Resolve_NilResolver(t *testing.T) {
	var vr *VolumeResolver
	if got := vr.Resolve("/media/clip.mp4"); got != "unknown" {
		t.Errorf("nil resolver Resolve() = %q, want %q", got, "unknown")
	}
}

func TestRetryConfig_ResolveVolume(t *testing.T) {
	original := defaultResolver
	defer func() { defaultResolver = original }()

	SetDefaultVolumeResolver(NewVolumeResolver(map[string]string{"default-media": "/media"}))

	config := DefaultRetryConfig()
	if got := config.resolveVolume("/media/clip.mp4"); got != "default-media" {
		t.Errorf("resolveVolume() = %q, want %q", got, "default-media")
	}

	config.VolumeResolver = NewVolumeResolver(map[string]string{"override-media": "/media"})
	if got := config.resolveVolume("/media/clip.mp4"); got != "override-media" {
		t.Errorf("resolveVolume() = %q, want %q", got, "override-media")
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	ops      []string
	attempts int
	stale    int
	success  int
	failures int
}

func (o *recordingObserver) ObserveOperation(volume, operation string, _ float64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.ops = append(o.ops, volume+"/"+operation+"/"+status)
}

func (o *recordingObserver) ObserveRetryAttempt(string, string) {
	o.mu.Lock()
	o.attempts++
	o.mu.Unlock()
}

func (o *recordingObserver) ObserveRetrySuccess(string, string) {
	o.mu.Lock()
	o.success++
	o.mu.Unlock()
}

func (o *recordingObserver) ObserveRetryFailure(string, string) {
	o.mu.Lock()
	o.failures++
	o.mu.Unlock()
}

func (o *recordingObserver) ObserveRetryDuration(string, string, float64) {}

func (o *recordingObserver) ObserveStaleError(string, string) {
	o.mu.Lock()
	o.stale++
	o.mu.Unlock()
}

func withObserver(t *testing.T) *recordingObserver {
	t.Helper()
	original := defaultObserver
	obs := &recordingObserver{}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(original) })
	return obs
}

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestStatWithRetry_Success(t *testing.T) {
	obs := withObserver(t)
	tmpDir := t.TempDir()
	config := fastConfig()
	config.VolumeResolver = NewVolumeResolver(map[string]string{"media": tmpDir})

	testFile := filepath.Join(tmpDir, "clip.mp4")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	info, err := StatWithRetry(testFile, config)
	if err != nil {
		t.Fatalf("StatWithRetry() error = %v, want nil", err)
	}
	if info.Size() != 4 {
		t.Errorf("FileInfo.Size() = %d, want 4", info.Size())
	}
	if len(obs.ops) != 1 || obs.ops[0] != "media/stat/ok" {
		t.Errorf("observed ops = %v, want [media/stat/ok]", obs.ops)
	}
}

func TestStatWithRetry_NotExist(t *testing.T) {
	obs := withObserver(t)

	_, err := StatWithRetry(filepath.Join(t.TempDir(), "missing.mp4"), fastConfig())
	if !os.IsNotExist(err) {
		t.Errorf("StatWithRetry() error = %v, want os.IsNotExist", err)
	}
	if obs.attempts != 0 {
		t.Errorf("retry attempts = %d, want 0 for non-NFS errors", obs.attempts)
	}
}

func TestOpenWithRetry_Success(t *testing.T) {
	withObserver(t)
	testFile := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(testFile, []byte("test content"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	file, err := OpenWithRetry(testFile, fastConfig())
	if err != nil {
		t.Fatalf("OpenWithRetry() error = %v, want nil", err)
	}
	file.Close()
}

func TestWithRetry_StaleThenSuccess(t *testing.T) {
	obs := withObserver(t)
	calls := 0

	got, err := withRetry("stat", "/media/clip.mp4", fastConfig(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, syscall.ESTALE
		}
		return 42, nil
	})

	if err != nil || got != 42 {
		t.Fatalf("withRetry() = %d, %v; want 42, nil", got, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if obs.stale != 2 || obs.attempts != 2 || obs.success != 1 || obs.failures != 0 {
		t.Errorf("observer stale=%d attempts=%d success=%d failures=%d, want 2/2/1/0",
			obs.stale, obs.attempts, obs.success, obs.failures)
	}
}

func TestWithRetry_StaleExhausted(t *testing.T) {
	obs := withObserver(t)
	calls := 0

	_, err := withRetry("open", "/media/clip.mp4", fastConfig(), func() (struct{}, error) {
		calls++
		return struct{}{}, syscall.ESTALE
	})

	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("withRetry() error = %v, want ESTALE", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (initial + 3 retries)", calls)
	}
	if obs.failures != 1 {
		t.Errorf("failures = %d, want 1", obs.failures)
	}
}

func TestWithRetry_NilObserver(t *testing.T) {
	original := defaultObserver
	SetObserver(nil)
	defer SetObserver(original)

	if _, err := withRetry("stat", "/x", fastConfig(), func() (int, error) {
		return 0, syscall.ESTALE
	}); err == nil {
		t.Fatal("expected error")
	}
}

func BenchmarkStatWithRetry_Success(b *testing.B) {
	testFile := filepath.Join(b.TempDir(), "clip.mp4")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		b.Fatalf("Failed to create test file: %v", err)
	}

	config := DefaultRetryConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := StatWithRetry(testFile, config); err != nil {
			b.Fatalf("StatWithRetry error: %v", err)
		}
	}
}
