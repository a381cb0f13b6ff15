package palette

import (
	"errors"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want color.RGBA
	}{
		{"C0", color.RGBA{0x1f, 0x77, 0xb4, 0xff}},
		{"C1", color.RGBA{0xff, 0x7f, 0x0e, 0xff}},
		{"C9", color.RGBA{0x17, 0xbe, 0xcf, 0xff}},
		{"k", color.RGBA{0, 0, 0, 0xff}},
		{"w", color.RGBA{0xff, 0xff, 0xff, 0xff}},
		{"tab:orange", color.RGBA{0xff, 0x7f, 0x0e, 0xff}},
		{"royalblue", color.RGBA{0x41, 0x69, 0xe1, 0xff}},
		{"Silver", color.RGBA{0xc0, 0xc0, 0xc0, 0xff}},
		{"black", color.RGBA{0, 0, 0, 0xff}},
		{"#ff8800", color.RGBA{0xff, 0x88, 0x00, 0xff}},
		{"#0f0", color.RGBA{0x00, 0xff, 0x00, 0xff}},
		{"0.5", color.RGBA{0x80, 0x80, 0x80, 0xff}},
		{" 1 ", color.RGBA{0xff, 0xff, 0xff, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	for _, spec := range []string{"", "notacolor", "#zzzzzz", "1.5", "-0.1", "tab:chartreuse", "C10", "c0", "c9"} {
		if _, err := Parse(spec); !errors.Is(err, ErrUnknownColor) {
			t.Errorf("Parse(%q) error = %v, want ErrUnknownColor", spec, err)
		}
	}
}

func TestPaletteCycles(t *testing.T) {
	p, err := New(Default)
	if err != nil {
		t.Fatal(err)
	}
	c0, _ := Parse("C0")
	c1, _ := Parse("C1")

	var got []color.RGBA
	for i := range 5 {
		got = append(got, p.At(i))
	}
	want := []color.RGBA{c0, c1, c0, c1, c0}
	if d := cmp.Diff(want, got); d != "" {
		t.Error(d)
	}
	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2", p.Len())
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("New(nil) = %v, want ErrEmpty", err)
	}
	if _, err := New([]string{"C0", "bogus"}); !errors.Is(err, ErrUnknownColor) {
		t.Errorf("New with bad color = %v, want ErrUnknownColor", err)
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.RGBA{0x41, 0x69, 0xe1, 0xff}); got != "#4169e1" {
		t.Errorf("Hex = %q", got)
	}
}
