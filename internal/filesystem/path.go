package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a relative path escapes its root directory.
var ErrOutsideRoot = errors.New("path escapes media directory")

// ErrNotRegular is returned when a path names something other than a regular file.
var ErrNotRegular = errors.New("not a regular file")

// ResolveFile joins relativePath onto root and ensures the result stays
// inside root and names an existing regular file. The stat goes through
// StatWithRetry so NFS-backed media directories survive stale handles.
func ResolveFile(root, relativePath string, config RetryConfig) (string, os.FileInfo, error) {
	relativePath = filepath.Clean("/" + filepath.FromSlash(relativePath))
	if relativePath == "/" {
		return "", nil, fmt.Errorf("%w: empty path", os.ErrInvalid)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", nil, err
	}
	fullPath := filepath.Join(absRoot, relativePath)
	if fullPath != absRoot && !strings.HasPrefix(fullPath, absRoot+string(filepath.Separator)) {
		return "", nil, ErrOutsideRoot
	}

	info, err := StatWithRetry(fullPath, config)
	if err != nil {
		return "", nil, err
	}
	if !info.Mode().IsRegular() {
		return "", nil, fmt.Errorf("%s: %w", relativePath, ErrNotRegular)
	}

	return fullPath, info, nil
}
