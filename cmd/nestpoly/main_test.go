package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/inamate/nestpoly/internal/engine"
)

func execute(t *testing.T, args ...string) (job, bool, error) {
	t.Helper()
	t.Setenv("NESTPOLY_FFMPEG_PATH", "/usr/local/bin/ffmpeg")
	t.Setenv("NESTPOLY_LOG_LEVEL", "error")

	var got job
	called := false
	cmd := newRootCmd(func(_ context.Context, j job) error {
		got, called = j, true
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})
	err := cmd.Execute()
	return got, called, err
}

func TestDefaults(t *testing.T) {
	got, called, err := execute(t, "6", "out.mp4")
	if err != nil || !called {
		t.Fatalf("err=%v called=%v", err, called)
	}

	want := engine.DefaultOptions()
	want.Sides = 6
	if diff := cmp.Diff(job{Options: want, Output: "out.mp4", FFmpegPath: "/usr/local/bin/ffmpeg"}, got); diff != "" {
		t.Errorf("job mismatch (-want +got):\n%s", diff)
	}
}

func TestFlags(t *testing.T) {
	got, _, err := execute(t, "6", "hex.gif",
		"-f", "400", "-c", "royalblue,silver", "-m", "7", "-d", "50", "--fps", "24", "--dpi", "100",
		"--mode", "twist", "--figsize", "4", "--linewidth", "0", "--edgecolor", "gray", "--background", "black",
		"--ffmpeg", "/opt/ffmpeg")
	if err != nil {
		t.Fatal(err)
	}

	want := engine.Options{
		Sides:       6,
		Frames:      400,
		Colors:      []string{"royalblue", "silver"},
		MaxPolygons: 7,
		Delay:       50 * time.Millisecond,
		FrameRate:   24,
		DPI:         100,
		FigureSize:  4,
		Mode:        engine.ModeTwist,
		EdgeColor:   "gray",
		LineWidth:   0,
		Background:  "black",
	}
	if diff := cmp.Diff(want, got.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if got.Output != "hex.gif" || got.FFmpegPath != "/opt/ffmpeg" {
		t.Errorf("output=%q ffmpeg=%q", got.Output, got.FFmpegPath)
	}
}

func TestFrameRateSpellings(t *testing.T) {
	for _, flag := range []string{"--frame_rate", "--fps", "-r", "--frame-rate"} {
		got, _, err := execute(t, "4", "sq.mp4", flag, "12")
		if err != nil {
			t.Fatalf("%s: %v", flag, err)
		}
		if got.Options.FrameRate != 12 {
			t.Errorf("%s: frame rate %d, want 12", flag, got.Options.FrameRate)
		}
	}
}

func TestRepeatedColors(t *testing.T) {
	got, _, err := execute(t, "3", "tri.mp4", "-c", "red", "-c", "C2", "--colors", "#00ff00")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"red", "C2", "#00ff00"}, got.Options.Colors); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroPolygonsAccepted(t *testing.T) {
	got, called, err := execute(t, "5", "empty.mp4", "-m", "0")
	if err != nil || !called || got.Options.MaxPolygons != 0 {
		t.Errorf("err=%v called=%v max=%d", err, called, got.Options.MaxPolygons)
	}
}

func TestInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"too few sides", []string{"2", "out.mp4"}},
		{"non-numeric sides", []string{"six", "out.mp4"}},
		{"missing filename", []string{"6"}},
		{"extra argument", []string{"6", "out.mp4", "more"}},
		{"zero frames", []string{"6", "out.mp4", "-f", "0"}},
		{"bad colour", []string{"6", "out.mp4", "-c", "plaid"}},
		{"bad mode", []string{"6", "out.mp4", "--mode", "spin"}},
		{"bad log level", []string{"6", "out.mp4", "--log-level", "chatty"}},
		{"non-numeric frames", []string{"6", "out.mp4", "-f", "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, called, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if called {
				t.Error("render ran despite invalid input")
			}
		})
	}

	_, _, err := execute(t, "2", "out.mp4")
	if !errors.Is(err, engine.ErrInvalidOptions) {
		t.Errorf("err = %v, want ErrInvalidOptions", err)
	}
}

func TestRenderPNGSequence(t *testing.T) {
	t.Setenv("NESTPOLY_LOG_LEVEL", "error")
	dir := t.TempDir()
	pattern := filepath.Join(dir, "f_%03d.png")

	cmd := newRootCmd(render)
	cmd.SetArgs([]string{"4", pattern, "-f", "3", "--dpi", "10", "-m", "3"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"f_000.png", "f_001.png", "f_002.png"}, names); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderMissingEncoder(t *testing.T) {
	t.Setenv("NESTPOLY_LOG_LEVEL", "error")
	out := filepath.Join(t.TempDir(), "out.mp4")

	cmd := newRootCmd(render)
	cmd.SetArgs([]string{"4", out, "-f", "2", "--dpi", "10", "--ffmpeg", filepath.Join(t.TempDir(), "missing")})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "encoder not found") {
		t.Errorf("err = %v, want encoder not found", err)
	}
}
