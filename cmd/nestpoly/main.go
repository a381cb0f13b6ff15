// Command nestpoly renders an animation of nested, rotating regular
// polygons to a video file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inamate/nestpoly/internal/config"
	"github.com/inamate/nestpoly/internal/engine"
	"github.com/inamate/nestpoly/internal/export"
	"github.com/inamate/nestpoly/internal/palette"
)

// job is everything needed to render one animation.
type job struct {
	Options    engine.Options
	Output     string
	FFmpegPath string
}

type runFunc func(ctx context.Context, j job) error

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(render).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "nestpoly:", err)
		os.Exit(1)
	}
}

// render writes the animation with the writer matching the output name.
func render(ctx context.Context, j job) error {
	w, err := export.NewWriter(ctx, j.Output, j.Options.FrameRate, j.FFmpegPath)
	if err != nil {
		return err
	}
	if err := engine.Render(ctx, j.Options, w); err != nil {
		return err
	}
	slog.Info("wrote animation", "file", j.Output)
	return nil
}

func newRootCmd(run runFunc) *cobra.Command {
	defaults := engine.DefaultOptions()
	opts := defaults
	var (
		delayMS  int
		mode     string
		ffmpeg   string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "nestpoly nsides filename",
		Short: "Animate nested rotating regular polygons",
		Long: `Render nsides-sided regular polygons nested inside each other, each one
inscribed in the last and turning with it, and encode the frames into
filename with ffmpeg. A .png filename containing an integer verb such as
frames/f_%04d.png writes numbered PNG files instead.

--fps is accepted as an alias of --frame_rate.`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sides, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("nsides must be an integer, got %q", args[0])
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			if ffmpeg == "" {
				ffmpeg = cfg.FfmpegPath
			}

			opts.Sides = sides
			opts.Delay = time.Duration(delayMS) * time.Millisecond
			opts.Mode = engine.Mode(mode)
			if err := opts.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), job{Options: opts, Output: args[1], FFmpegPath: ffmpeg})
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.SetNormalizeFunc(normalizeFlag)

	flags.IntVarP(&opts.Frames, "frames", "f", defaults.Frames, "number of frames")
	flags.StringSliceVarP(&opts.Colors, "colors", "c", palette.Default, "fill colours, cycled across layers (comma separated or repeated)")
	flags.IntVarP(&opts.MaxPolygons, "max_polygons", "m", defaults.MaxPolygons, "maximum number of nested polygons")
	flags.IntVarP(&delayMS, "delay", "d", int(defaults.Delay/time.Millisecond), "delay between frames of a live preview in milliseconds")
	flags.IntVarP(&opts.FrameRate, "frame_rate", "r", defaults.FrameRate, "frame rate of the video")
	flags.IntVar(&opts.DPI, "dpi", defaults.DPI, "dots per inch")

	flags.StringVar(&mode, "mode", string(defaults.Mode), "layer motion: rigid or twist")
	flags.Float64Var(&opts.FigureSize, "figsize", defaults.FigureSize, "frame edge length in inches")
	flags.StringVar(&opts.EdgeColor, "edgecolor", defaults.EdgeColor, "outline colour")
	flags.Float64Var(&opts.LineWidth, "linewidth", defaults.LineWidth, "outline width in points, 0 for none")
	flags.StringVar(&opts.Background, "background", defaults.Background, "background colour")
	flags.StringVar(&ffmpeg, "ffmpeg", "", "path to the ffmpeg binary (default $NESTPOLY_FFMPEG_PATH or ffmpeg)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	return cmd
}

// normalizeFlag maps alternative spellings onto the canonical flag names.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "fps", "frame-rate", "framerate":
		name = "frame_rate"
	case "max-polygons", "maxpolygons":
		name = "max_polygons"
	case "log_level":
		name = "log-level"
	}
	return pflag.NormalizedName(name)
}

func setupLogging(level string) error {
	lvl, err := config.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}
