// Package typeid generates the prefixed, sortable IDs given to render jobs
// and preview connections.
package typeid

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixRender  = "render"
	PrefixPreview = "prev"
)

var ErrInvalidID = errors.New("typeid: invalid id")

func New(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

func NewRenderID() string  { return New(PrefixRender) }
func NewPreviewID() string { return New(PrefixPreview) }

// Validate checks that id is well formed and carries wantPrefix.
func Validate(id, wantPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidID, id, err)
	}
	if got := parsed.Prefix(); got != wantPrefix {
		return fmt.Errorf("%w %q: prefix %q, want %q", ErrInvalidID, id, got, wantPrefix)
	}
	return nil
}

// FromFilename returns the render ID a stored file is named after, as in
// "render_01h....mp4".
func FromFilename(name string) (string, error) {
	id := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if err := Validate(id, PrefixRender); err != nil {
		return "", err
	}
	return id, nil
}
