package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable, e.g. NESTPOLY_PORT.
const Prefix = "NESTPOLY"

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	OutputDir      string `envconfig:"OUTPUT_DIR" default:"./data/renders"`
	FfmpegPath     string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	// Server-side caps on requested animations. MaxSize is the frame edge
	// in pixels.
	MaxFrames   int `envconfig:"MAX_FRAMES" default:"2000"`
	MaxDPI      int `envconfig:"MAX_DPI" default:"400"`
	MaxSize     int `envconfig:"MAX_SIZE" default:"4096"`
	MaxSides    int `envconfig:"MAX_SIDES" default:"360"`
	MaxPolygons int `envconfig:"MAX_POLYGONS" default:"5000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into a list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// ParseLevel maps a level name (debug, info, warn, error) onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}
