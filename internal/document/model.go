// Package document is the JSON description of a nested polygon animation
// used by the HTTP and browser surfaces.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/inamate/nestpoly/internal/engine"
)

// Animation mirrors the command-line parameters. Omitted fields take the
// command-line defaults. MaxPolygons and LineWidth are pointers because
// zero is a meaningful value for both.
type Animation struct {
	Sides       int      `json:"nsides"`
	Frames      int      `json:"frames,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	MaxPolygons *int     `json:"maxPolygons,omitempty"`
	Delay       int      `json:"delay,omitempty"` // milliseconds
	FrameRate   int      `json:"frameRate,omitempty"`
	DPI         int      `json:"dpi,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	FigureSize  float64  `json:"figureSize,omitempty"`
	EdgeColor   string   `json:"edgeColor,omitempty"`
	LineWidth   *float64 `json:"lineWidth,omitempty"`
	Background  string   `json:"background,omitempty"`
}

// Options converts the document into validated engine options.
func (a Animation) Options() (engine.Options, error) {
	o := engine.DefaultOptions()
	o.Sides = a.Sides
	if a.Frames != 0 {
		o.Frames = a.Frames
	}
	if len(a.Colors) > 0 {
		o.Colors = append([]string(nil), a.Colors...)
	}
	if a.MaxPolygons != nil {
		o.MaxPolygons = *a.MaxPolygons
	}
	if a.Delay != 0 {
		o.Delay = time.Duration(a.Delay) * time.Millisecond
	}
	if a.FrameRate != 0 {
		o.FrameRate = a.FrameRate
	}
	if a.DPI != 0 {
		o.DPI = a.DPI
	}
	if a.Mode != "" {
		o.Mode = engine.Mode(a.Mode)
	}
	if a.FigureSize != 0 {
		o.FigureSize = a.FigureSize
	}
	if a.EdgeColor != "" {
		o.EdgeColor = a.EdgeColor
	}
	if a.LineWidth != nil {
		o.LineWidth = *a.LineWidth
	}
	if a.Background != "" {
		o.Background = a.Background
	}

	if err := o.Validate(); err != nil {
		return engine.Options{}, err
	}
	return o, nil
}

// FromOptions describes existing engine options as a document.
func FromOptions(o engine.Options) Animation {
	maxPolygons, lineWidth := o.MaxPolygons, o.LineWidth
	return Animation{
		Sides:       o.Sides,
		Frames:      o.Frames,
		Colors:      append([]string(nil), o.Colors...),
		MaxPolygons: &maxPolygons,
		Delay:       int(o.Delay / time.Millisecond),
		FrameRate:   o.FrameRate,
		DPI:         o.DPI,
		Mode:        string(o.Mode),
		FigureSize:  o.FigureSize,
		EdgeColor:   o.EdgeColor,
		LineWidth:   &lineWidth,
		Background:  o.Background,
	}
}

// Parse decodes a document, rejecting unknown fields.
func Parse(data []byte) (Animation, error) {
	var a Animation
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return Animation{}, fmt.Errorf("decode animation: %w", err)
	}
	return a, nil
}

// FromQuery reads a document from URL query parameters named like the
// command-line flags. A "preset" parameter selects the starting document
// which the remaining parameters override.
func FromQuery(q url.Values) (Animation, error) {
	var a Animation
	if name := q.Get("preset"); name != "" {
		p, ok := Preset(name)
		if !ok {
			return Animation{}, fmt.Errorf("unknown preset %q", name)
		}
		a = p
	}

	var err error
	intParam := func(key string, dst *int) {
		v := q.Get(key)
		if v == "" || err != nil {
			return
		}
		n, perr := strconv.Atoi(v)
		if perr != nil {
			err = fmt.Errorf("parameter %s: %q is not an integer", key, v)
			return
		}
		*dst = n
	}
	floatParam := func(key string, dst *float64) {
		v := q.Get(key)
		if v == "" || err != nil {
			return
		}
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			err = fmt.Errorf("parameter %s: %q is not a number", key, v)
			return
		}
		*dst = f
	}

	intParam("nsides", &a.Sides)
	intParam("frames", &a.Frames)
	intParam("delay", &a.Delay)
	intParam("frame_rate", &a.FrameRate)
	intParam("dpi", &a.DPI)
	floatParam("figsize", &a.FigureSize)
	if q.Has("max_polygons") {
		var n int
		intParam("max_polygons", &n)
		a.MaxPolygons = &n
	}
	if q.Has("linewidth") {
		var w float64
		floatParam("linewidth", &w)
		a.LineWidth = &w
	}
	if err != nil {
		return Animation{}, err
	}

	if v := q.Get("colors"); v != "" {
		a.Colors = SplitColors(v)
	}
	if v := q.Get("mode"); v != "" {
		a.Mode = v
	}
	if v := q.Get("edgecolor"); v != "" {
		a.EdgeColor = v
	}
	if v := q.Get("background"); v != "" {
		a.Background = v
	}
	return a, nil
}

// SplitColors splits a comma separated colour list, dropping blanks.
func SplitColors(s string) []string {
	var colors []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}
