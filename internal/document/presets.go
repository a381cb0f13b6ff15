package document

import (
	"maps"
	"slices"
)

func intPtr(n int) *int { return &n }

var presets = map[string]Animation{
	"hexagon": {
		Sides:  6,
		Frames: 400,
		Colors: []string{"royalblue", "silver"},
	},
	"square": {
		Sides: 4,
	},
	"triangle-twist": {
		Sides:       3,
		Frames:      240,
		Colors:      []string{"tab:orange", "tab:blue", "tab:green"},
		MaxPolygons: intPtr(60),
		Mode:        "twist",
	},
}

// Preset returns a copy of a built-in animation.
func Preset(name string) (Animation, bool) {
	p, ok := presets[name]
	if !ok {
		return Animation{}, false
	}
	p.Colors = slices.Clone(p.Colors)
	if p.MaxPolygons != nil {
		p.MaxPolygons = intPtr(*p.MaxPolygons)
	}
	return p, true
}

// PresetNames lists the built-in animations in name order.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}
