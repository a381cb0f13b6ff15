// Package palette parses colour specifications and assigns colours to
// nesting layers.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	ErrUnknownColor = errors.New("palette: unknown color")
	ErrEmpty        = errors.New("palette: at least one color is required")
)

// Default is the two-colour cycle used when no colours are given.
var Default = []string{"C0", "C1"}

// tab10 is the default property cycle of matplotlib, addressed as C0..C9.
var tab10 = [...]struct {
	name string
	rgb  color.RGBA
}{
	{"blue", color.RGBA{0x1f, 0x77, 0xb4, 0xff}},
	{"orange", color.RGBA{0xff, 0x7f, 0x0e, 0xff}},
	{"green", color.RGBA{0x2c, 0xa0, 0x2c, 0xff}},
	{"red", color.RGBA{0xd6, 0x27, 0x28, 0xff}},
	{"purple", color.RGBA{0x94, 0x67, 0xbd, 0xff}},
	{"brown", color.RGBA{0x8c, 0x56, 0x4b, 0xff}},
	{"pink", color.RGBA{0xe3, 0x77, 0xc2, 0xff}},
	{"gray", color.RGBA{0x7f, 0x7f, 0x7f, 0xff}},
	{"olive", color.RGBA{0xbc, 0xbd, 0x22, 0xff}},
	{"cyan", color.RGBA{0x17, 0xbe, 0xcf, 0xff}},
}

var shorthand = map[string]color.RGBA{
	"b": {0x00, 0x00, 0xff, 0xff},
	"g": {0x00, 0x80, 0x00, 0xff},
	"r": {0xff, 0x00, 0x00, 0xff},
	"c": {0x00, 0xbf, 0xbf, 0xff},
	"m": {0xbf, 0x00, 0xbf, 0xff},
	"y": {0xbf, 0xbf, 0x00, 0xff},
	"k": {0x00, 0x00, 0x00, 0xff},
	"w": {0xff, 0xff, 0xff, 0xff},
}

// Parse converts a colour specification into an opaque RGBA colour.
//
// Accepted forms, tried in order: cycle references "C0".."C9", single
// letters "b g r c m y k w", "tab:<name>", CSS names such as "royalblue",
// hex "#rgb" or "#rrggbb", and grayscale levels "0".."1".
func Parse(spec string) (color.RGBA, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("%w: empty specification", ErrUnknownColor)
	}

	if len(s) == 2 && s[0] == 'C' && s[1] >= '0' && s[1] <= '9' {
		return tab10[s[1]-'0'].rgb, nil
	}

	if c, ok := shorthand[s]; ok {
		return c, nil
	}

	lower := strings.ToLower(s)
	if name, ok := strings.CutPrefix(lower, "tab:"); ok {
		for _, t := range tab10 {
			if t.name == name || (name == "grey" && t.name == "gray") {
				return t.rgb, nil
			}
		}
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, spec)
	}

	if c, ok := colornames.Map[lower]; ok {
		return c, nil
	}

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: %q: %v", ErrUnknownColor, spec, err)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 && v <= 1 {
		l := uint8(v*255 + 0.5)
		return color.RGBA{R: l, G: l, B: l, A: 0xff}, nil
	}

	return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, spec)
}

// Palette is an ordered, non-empty list of colours assigned to layers
// cyclically.
type Palette struct {
	specs  []string
	colors []color.RGBA
}

// New parses every spec. The order of specs is the order of assignment.
func New(specs []string) (Palette, error) {
	if len(specs) == 0 {
		return Palette{}, ErrEmpty
	}
	p := Palette{
		specs:  append([]string(nil), specs...),
		colors: make([]color.RGBA, len(specs)),
	}
	for i, s := range specs {
		c, err := Parse(s)
		if err != nil {
			return Palette{}, err
		}
		p.colors[i] = c
	}
	return p, nil
}

// At returns the colour for layer i.
func (p Palette) At(i int) color.RGBA {
	n := len(p.colors)
	return p.colors[((i%n)+n)%n]
}

// Len returns the number of colours in the cycle.
func (p Palette) Len() int { return len(p.colors) }

// Specs returns the specifications the palette was built from.
func (p Palette) Specs() []string { return append([]string(nil), p.specs...) }

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
