package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FFmpegWriter pipes raw RGBA frames into an ffmpeg child process. The
// process is started by the first WriteFrame, which fixes the frame size.
type FFmpegWriter struct {
	ctx        context.Context
	path       string
	fps        int
	ffmpegPath string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	size   image.Point
	frame  *image.RGBA // conversion buffer for non-RGBA input
	frames int
	closed bool
}

// NewFFmpegWriter returns a writer that encodes into path at fps frames
// per second using the ffmpeg binary at ffmpegPath.
func NewFFmpegWriter(ctx context.Context, path string, fps int, ffmpegPath string) *FFmpegWriter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegWriter{ctx: ctx, path: path, fps: fps, ffmpegPath: ffmpegPath}
}

func (w *FFmpegWriter) WriteFrame(img image.Image) error {
	if w.closed {
		return ErrWriterClosed
	}

	size := img.Bounds().Size()
	if w.cmd == nil {
		if err := w.start(size); err != nil {
			w.closed = true
			return err
		}
	} else if size != w.size {
		return fmt.Errorf("frame %d is %v, want %v", w.frames, size, w.size)
	}

	if _, err := w.stdin.Write(rawRGBA(img, &w.frame)); err != nil {
		return w.abort(fmt.Errorf("write frame %d: %w", w.frames, err))
	}
	w.frames++
	return nil
}

func (w *FFmpegWriter) start(size image.Point) error {
	bin, err := exec.LookPath(w.ffmpegPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoderNotFound, err)
	}

	cmd := exec.CommandContext(w.ctx, bin, ffmpegArgs(w.path, w.fps, size)...)
	cmd.Stderr = &w.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncoderNotFound, err)
	}

	slog.Debug("ffmpeg started", "path", w.path, "size", size, "fps", w.fps)
	w.cmd, w.stdin, w.size = cmd, stdin, size
	return nil
}

// abort tears the process down after a failed write and reports what
// ffmpeg printed.
func (w *FFmpegWriter) abort(err error) error {
	w.closed = true
	w.stdin.Close()
	if werr := w.cmd.Wait(); werr != nil {
		return fmt.Errorf("%w: ffmpeg: %v: %s", err, werr, strings.TrimSpace(w.stderr.String()))
	}
	return err
}

// Close flushes the encoder and waits for ffmpeg to exit.
func (w *FFmpegWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.cmd == nil {
		return nil
	}

	w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(w.stderr.String()))
	}
	slog.Debug("ffmpeg finished", "path", w.path, "frames", w.frames)
	return nil
}

// Frames returns the number of frames handed to ffmpeg.
func (w *FFmpegWriter) Frames() int { return w.frames }

func ffmpegArgs(path string, fps int, size image.Point) []string {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", size.X, size.Y),
		"-framerate", strconv.Itoa(fps),
		"-i", "-",
	}
	args = append(args, codecArgs(path)...)
	return append(args, path)
}

func codecArgs(path string) []string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return []string{
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-crf", "18",
			"-preset", "fast",
			"-movflags", "+faststart",
		}
	case ".webm":
		return []string{
			"-c:v", "libvpx-vp9",
			"-crf", "30",
			"-b:v", "0",
			"-pix_fmt", "yuva420p",
		}
	case ".gif":
		// Single pass: generate the palette and apply it in one graph
		return []string{
			"-filter_complex", "split[a][b];[a]palettegen=stats_mode=diff[p];[b][p]paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
			"-loop", "0",
		}
	default:
		return []string{"-pix_fmt", "yuv420p"}
	}
}

// rawRGBA returns the tightly packed RGBA bytes of img, converting into
// *buf when img is not already laid out that way.
func rawRGBA(img image.Image, buf **image.RGBA) []byte {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*b.Dx() {
		start := rgba.PixOffset(b.Min.X, b.Min.Y)
		return rgba.Pix[start : start+rgba.Stride*b.Dy()]
	}
	if *buf == nil || (*buf).Bounds().Size() != b.Size() {
		*buf = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(*buf, (*buf).Bounds(), img, b.Min, draw.Src)
	return (*buf).Pix
}
