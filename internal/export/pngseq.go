package export

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSequenceWriter writes each frame as a numbered PNG file. The file
// name of frame i is fmt.Sprintf(pattern, i).
type PNGSequenceWriter struct {
	pattern string
	enc     png.Encoder
	frames  int
	closed  bool
}

func NewPNGSequenceWriter(pattern string) *PNGSequenceWriter {
	return &PNGSequenceWriter{
		pattern: pattern,
		enc:     png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

func (w *PNGSequenceWriter) WriteFrame(img image.Image) error {
	if w.closed {
		return ErrWriterClosed
	}

	name := fmt.Sprintf(w.pattern, w.frames)
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create frame dir: %w", err)
		}
	}

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create frame %d: %w", w.frames, err)
	}
	bw := bufio.NewWriter(f)
	if err := w.enc.Encode(bw, img); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %d: %w", w.frames, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write frame %d: %w", w.frames, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close frame %d: %w", w.frames, err)
	}

	w.frames++
	return nil
}

func (w *PNGSequenceWriter) Close() error {
	w.closed = true
	return nil
}

// Frames returns the number of files written.
func (w *PNGSequenceWriter) Frames() int { return w.frames }
