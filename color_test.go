package batch

import (
	"image/color"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#fff", RGB(1, 1, 1)},
		{"000", RGB(0, 0, 0)},
		{"#ff0000", RGB(1, 0, 0)},
		{"00ff0080", RGBA2(0, 1, 0, 128.0/255)},
		{"#0f0f", RGB(0, 1, 0)},
		{"bogus", Black},
	}
	for _, tt := range tests {
		if got := Hex(tt.in); got != tt.want {
			t.Errorf("Hex(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseHexErrors(t *testing.T) {
	for _, in := range []string{"", "#", "12345", "gg0000", "+fffff", "#ff00ff00ff"} {
		if _, err := ParseHex(in); err == nil {
			t.Errorf("ParseHex(%q) should fail", in)
		}
	}
}

func TestRGBA_Roundtrip(t *testing.T) {
	c := color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	got := FromColor(c).Color().(color.NRGBA)
	if got != c {
		t.Errorf("roundtrip = %+v, want %+v", got, c)
	}
}

func TestRGBA_Float32(t *testing.T) {
	r, g, b, a := RGBA2(1, 0.5, 0.25, 0).Float32()
	if r != 1 || g != 0.5 || b != 0.25 || a != 0 {
		t.Errorf("Float32() = %v %v %v %v", r, g, b, a)
	}
}
