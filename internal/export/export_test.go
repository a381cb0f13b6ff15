package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeFFmpeg installs a shell script standing in for ffmpeg and returns
// its path. The script body runs with the output path in $out.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor out; do :; done\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestCodecArgs(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"out.mp4", "libx264"},
		{"OUT.MOV", "libx264"},
		{"clip.webm", "libvpx-vp9"},
		{"loop.gif", "palettegen"},
		{"raw.mkv", "yuv420p"},
	}
	for _, tt := range tests {
		args := strings.Join(codecArgs(tt.path), " ")
		if !strings.Contains(args, tt.want) {
			t.Errorf("codecArgs(%q) = %q, want %q in it", tt.path, args, tt.want)
		}
	}
}

func TestFFmpegArgs(t *testing.T) {
	got := ffmpegArgs("out.mp4", 30, image.Pt(1600, 1600))
	want := []string{
		"-y", "-loglevel", "error",
		"-f", "rawvideo", "-pix_fmt", "rgba", "-s", "1600x1600", "-framerate", "30", "-i", "-",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-crf", "18", "-preset", "fast", "-movflags", "+faststart",
		"out.mp4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestFFmpegWriterMissingEncoder(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	w := NewFFmpegWriter(context.Background(), out, 30, filepath.Join(t.TempDir(), "no-such-ffmpeg"))

	err := w.WriteFrame(solid(4, 4, color.RGBA{A: 255}))
	if !errors.Is(err, ErrEncoderNotFound) {
		t.Fatalf("WriteFrame = %v, want ErrEncoderNotFound", err)
	}
	if err := w.WriteFrame(solid(4, 4, color.RGBA{A: 255})); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("second WriteFrame = %v, want ErrWriterClosed", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file created without an encoder")
	}
}

func TestFFmpegWriterStreamsFrames(t *testing.T) {
	bin := fakeFFmpeg(t, `printf '%s\n' "$@" > "$out.args"; cat > "$out"`)
	out := filepath.Join(t.TempDir(), "out.webm")

	w := NewFFmpegWriter(context.Background(), out, 24, bin)
	red := color.RGBA{R: 255, A: 255}
	for range 3 {
		if err := w.WriteFrame(solid(4, 2, red)); err != nil {
			t.Fatal(err)
		}
	}

	// Sub-images and non-RGBA frames are repacked before writing.
	big := solid(8, 8, red)
	if err := w.WriteFrame(big.SubImage(image.Rect(2, 2, 6, 4))); err != nil {
		t.Fatal(err)
	}
	gray := image.NewGray(image.Rect(0, 0, 4, 2))
	if err := w.WriteFrame(gray); err != nil {
		t.Fatal(err)
	}

	if err := w.WriteFrame(solid(2, 2, red)); err == nil {
		t.Error("frame of a different size accepted")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.WriteFrame(solid(4, 2, red)); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("WriteFrame after Close = %v, want ErrWriterClosed", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := 5 * 4 * 2 * 4; len(data) != want || w.Frames() != 5 {
		t.Fatalf("encoder got %d bytes over %d frames, want %d bytes", len(data), w.Frames(), want)
	}
	if !bytes.Equal(data[:4], []byte{255, 0, 0, 255}) {
		t.Errorf("first pixel = %v", data[:4])
	}
	if last := data[len(data)-4:]; !bytes.Equal(last, []byte{0, 0, 0, 255}) {
		t.Errorf("gray frame pixel = %v", last)
	}

	args, _ := os.ReadFile(out + ".args")
	for _, want := range []string{"4x2", "libvpx-vp9", "24"} {
		if !strings.Contains(string(args), want+"\n") {
			t.Errorf("args %q lack %q", args, want)
		}
	}
}

func TestFFmpegWriterReportsEncoderFailure(t *testing.T) {
	bin := fakeFFmpeg(t, `echo "unknown encoder" >&2; exit 1`)
	w := NewFFmpegWriter(context.Background(), filepath.Join(t.TempDir(), "out.mp4"), 30, bin)

	err := w.WriteFrame(solid(64, 64, color.RGBA{A: 255}))
	if err == nil {
		err = w.Close()
	}
	if err == nil || !strings.Contains(err.Error(), "unknown encoder") {
		t.Errorf("err = %v, want ffmpeg stderr in it", err)
	}
}

func TestPNGSequenceWriter(t *testing.T) {
	pattern := filepath.Join(t.TempDir(), "frames", "f_%03d.png")
	w, err := NewWriter(context.Background(), pattern, 30, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(*PNGSequenceWriter); !ok {
		t.Fatalf("NewWriter(%q) = %T", pattern, w)
	}

	blue := color.RGBA{B: 255, A: 255}
	for range 2 {
		if err := w.WriteFrame(solid(3, 3, blue)); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()
	if err := w.WriteFrame(solid(3, 3, blue)); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("WriteFrame after Close = %v", err)
	}

	f, err := os.Open(filepath.Join(filepath.Dir(pattern), "f_001.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := color.RGBAModel.Convert(img.At(1, 1)); got != blue {
		t.Errorf("pixel = %v, want %v", got, blue)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(pattern), "f_002.png")); !os.IsNotExist(err) {
		t.Error("unexpected third frame")
	}
}

func TestNewWriter(t *testing.T) {
	if _, err := NewWriter(context.Background(), "", 30, "ffmpeg"); err == nil {
		t.Error("empty path accepted")
	}
	w, err := NewWriter(context.Background(), "movie.mp4", 30, "ffmpeg")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(*FFmpegWriter); !ok {
		t.Errorf("NewWriter(movie.mp4) = %T", w)
	}

	w, err = NewWriter(context.Background(), "out_%d.mp4", 30, "ffmpeg")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(*FFmpegWriter); !ok {
		t.Errorf("NewWriter(out_%%d.mp4) = %T, want *FFmpegWriter", w)
	}

	for path, want := range map[string]bool{
		"f_%d.png":     true,
		"f_%04d.png":   true,
		"f_%03d.PNG":   true,
		"100%.mp4":     false,
		"movie.mp4":    false,
		"f_%s.png":     false,
		"out_%d.mp4":   false,
		"out_%04d.gif": false,
		"%d/frame":     false,
	} {
		if got := IsSequencePattern(path); got != want {
			t.Errorf("IsSequencePattern(%q) = %v", path, got)
		}
	}
}
