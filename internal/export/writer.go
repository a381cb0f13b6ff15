// Package export writes rendered frames to video files.
package export

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inamate/nestpoly/internal/engine"
)

var (
	ErrEncoderNotFound = errors.New("export: video encoder not found")
	ErrWriterClosed    = errors.New("export: writer closed")
)

// sequenceVerb matches an integer printf verb such as %d or %04d.
var sequenceVerb = regexp.MustCompile(`%0?[0-9]*d`)

// IsSequencePattern reports whether path names a numbered PNG sequence
// rather than a single video file. It must carry an integer verb and a
// .png extension.
func IsSequencePattern(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".png") && sequenceVerb.MatchString(path)
}

// NewWriter returns the frame writer for path: a PNGSequenceWriter for a
// numbered .png pattern, otherwise an FFmpegWriter.
func NewWriter(ctx context.Context, path string, fps int, ffmpegPath string) (engine.FrameWriter, error) {
	if path == "" {
		return nil, errors.New("export: empty output path")
	}
	if IsSequencePattern(path) {
		return NewPNGSequenceWriter(path), nil
	}
	return NewFFmpegWriter(ctx, path, fps, ffmpegPath), nil
}
