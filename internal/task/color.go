package task

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an 8-bit RGB display color.
type Color struct {
	R, G, B uint8
}

// ParseColor decodes "#RRGGBB", "0xRRGGBB" or "0XRRGGBB".
func ParseColor(raw string) (Color, error) {
	digits, ok := cutHexPrefix(raw)
	if !ok || len(digits) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}

	value, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}

	return Color{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
	}, nil
}

func cutHexPrefix(raw string) (string, bool) {
	for _, prefix := range []string{"#", "0x", "0X"} {
		if after, ok := strings.CutPrefix(raw, prefix); ok {
			return after, true
		}
	}

	return "", false
}

// Hex renders c as upper-case "#RRGGBB", the persisted form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// Name returns the palette name for c, or its hex form when c is not in the
// palette.
func (c Color) Name() string {
	for _, entry := range palette {
		if entry.Color == c {
			return entry.Name
		}
	}

	return c.Hex()
}

// NamedColor pairs a palette color with its display name.
type NamedColor struct {
	Name  string
	Color Color
}

// palette offers the colors used when a new list is created.
// Values follow the classic AWT constants.
var palette = []NamedColor{
	{Name: "red", Color: Color{R: 255, G: 0, B: 0}},
	{Name: "orange", Color: Color{R: 255, G: 200, B: 0}},
	{Name: "yellow", Color: Color{R: 255, G: 255, B: 0}},
	{Name: "green", Color: Color{R: 0, G: 255, B: 0}},
	{Name: "cyan", Color: Color{R: 0, G: 255, B: 255}},
	{Name: "blue", Color: Color{R: 0, G: 0, B: 255}},
	{Name: "magenta", Color: Color{R: 255, G: 0, B: 255}},
	{Name: "pink", Color: Color{R: 255, G: 175, B: 175}},
	{Name: "white", Color: Color{R: 255, G: 255, B: 255}},
	{Name: "light-gray", Color: Color{R: 192, G: 192, B: 192}},
	{Name: "gray", Color: Color{R: 128, G: 128, B: 128}},
	{Name: "dark-gray", Color: Color{R: 64, G: 64, B: 64}},
	{Name: "black", Color: Color{R: 0, G: 0, B: 0}},
}

// Palette returns a copy of the named palette in display order.
func Palette() []NamedColor {
	out := make([]NamedColor, len(palette))
	copy(out, palette)

	return out
}

// ColorByName looks up a palette color, case-insensitively.
func ColorByName(name string) (Color, error) {
	for _, entry := range palette {
		if strings.EqualFold(entry.Name, name) {
			return entry.Color, nil
		}
	}

	return Color{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
}

// ResolveColor accepts either a palette name or a hex string.
func ResolveColor(raw string) (Color, error) {
	if c, err := ColorByName(raw); err == nil {
		return c, nil
	}

	c, err := ParseColor(raw)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q is neither a palette name nor a hex color", ErrUnknownColor, raw)
	}

	return c, nil
}
