// Package asset stores rendered animations on disk and serves them back.
package asset

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("asset: invalid file name")

// Store is a flat directory of rendered outputs.
type Store struct {
	dir string
}

// NewStore creates a store that keeps files in dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Path returns the location of a stored file. Names must be plain file
// names without directory components.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// TempPath returns a hidden scratch location with the given extension.
// Hidden files are never served.
func (s *Store) TempPath(ext string) string {
	return filepath.Join(s.dir, ".tmp-"+uuid.New().String()[:8]+ext)
}

// Commit moves a scratch file into place under name.
func (s *Store) Commit(tmp, name string) (string, error) {
	dst, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", fmt.Errorf("commit %s: %w", name, err)
	}
	return dst, nil
}

// Discard removes a scratch or stored file, ignoring files that do not exist.
func (s *Store) Discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("discard output", "path", path, "error", err)
	}
}

// Exists reports whether a stored file is present.
func (s *Store) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Serve returns an http.Handler serving stored files below prefix with
// caching headers.
func (s *Store) Serve(prefix string) http.Handler {
	fs := http.FileServer(http.Dir(s.dir))
	return http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if _, err := s.Path(name); err != nil {
			http.NotFound(w, r)
			return
		}
		// Render IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}
