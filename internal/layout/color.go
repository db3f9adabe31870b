package layout

import "github.com/lucasb-eyer/go-colorful"

// Color is a packed 0xRRGGBB value. It doubles as the room's identity during
// overlap merging.
type Color uint32

// RGB returns the 8-bit channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Colorful converts c for color math and for image/color consumers.
func (c Color) Colorful() colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Hex returns the "#rrggbb" form.
func (c Color) Hex() string {
	return c.Colorful().Hex()
}
