package mediatypes

import (
	"path/filepath"
	"strings"
)

// VideoExtensions maps lowercase file extensions to their MIME types for
// every container the thumbnailer accepts.
var VideoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
	".asf":  "video/x-ms-asf",
	".flv":  "video/x-flv",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ts":   "video/mp2t",
	".m2ts": "video/mp2t",
	".3gp":  "video/3gpp",
	".ogv":  "video/ogg",
}

// Ext returns the lowercase extension of name, including the leading dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsVideo reports whether name has a supported video container extension.
func IsVideo(name string) bool {
	_, ok := VideoExtensions[Ext(name)]
	return ok
}

// GetMimeType returns the MIME type for name based on its extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(name string) string {
	if mime, ok := VideoExtensions[Ext(name)]; ok {
		return mime
	}
	return "application/octet-stream"
}
