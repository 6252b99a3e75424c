package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"video-thumbnailer/internal/codec"
	"video-thumbnailer/internal/codec/codectest"
	"video-thumbnailer/internal/startup"
	"video-thumbnailer/internal/thumb"

	"github.com/gorilla/mux"
)

type fakeShedder struct{ overloaded bool }

func (f *fakeShedder) Overloaded() bool { return f.overloaded }

type testServer struct {
	handlers *Handlers
	backend  *codectest.Backend
	router   *mux.Router
	mediaDir string
}

func newTestServer(t *testing.T, shedder LoadShedder) *testServer {
	t.Helper()

	backend := codectest.New()
	thumber, err := thumb.Init(backend, codec.VerbosityQuiet)
	if err != nil {
		t.Fatalf("thumb.Init() error = %v", err)
	}

	mediaDir := t.TempDir()
	h := New(thumber, backend.Name(), &startup.Config{
		MediaDir:        mediaDir,
		DefaultPosition: 0.5,
		Workers:         2,
	}, shedder)
	h.SetReady(true)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	t.Cleanup(func() {
		if leaks := backend.Leaks(); len(leaks) > 0 {
			t.Errorf("leaked resources: %s", strings.Join(leaks, ", "))
		}
	})

	return &testServer{handlers: h, backend: backend, router: router, mediaDir: mediaDir}
}

// addClip creates a placeholder file under the media directory and
// registers clip for it with the test backend.
func (s *testServer) addClip(t *testing.T, rel string, clip codectest.Clip) {
	t.Helper()
	full := filepath.Join(s.mediaDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte("placeholder"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.backend.Add(full, clip)
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
