package mediatypes

import "testing"

func TestIsVideo(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"mp4", "clip.mp4", true},
		{"uppercase extension", "CLIP.MKV", true},
		{"nested path", "shows/s01/e01.webm", true},
		{"transport stream", "capture.ts", true},
		{"image", "poster.jpg", false},
		{"playlist", "list.wpl", false},
		{"no extension", "README", false},
		{"dot file", ".mp4", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVideo(tt.path); got != tt.want {
				t.Errorf("IsVideo(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.mp4", "video/mp4"},
		{"a.MOV", "video/quicktime"},
		{"a.mkv", "video/x-matroska"},
		{"a.mpg", "video/mpeg"},
		{"a.txt", "application/octet-stream"},
		{"a", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.path); got != tt.want {
			t.Errorf("GetMimeType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExtensionsAreLowercase(t *testing.T) {
	for ext, mime := range VideoExtensions {
		if ext != Ext("x"+ext) {
			t.Errorf("extension %q is not normalized", ext)
		}
		if mime == "" {
			t.Errorf("extension %q has no MIME type", ext)
		}
	}
}
