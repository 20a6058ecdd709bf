package img2palette

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents a color in the RGB color space with 8-bit channels,
// where each channel ranges from 0 to 255.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Uint32 packs the color into a 24-bit 0xRRGGBB value.
func (c RGB) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Hex returns the color as a lowercase "#rrggbb" string.
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

// ToColor converts RGB to an opaque color.RGBA.
func (c RGB) ToColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// String formats the color as "RGB(r, g, b)".
func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// IsLight reports whether dark text reads better than light text on top
// of this color.
func (c RGB) IsLight() bool {
	l, _, _ := c.colorful().Lab()
	return l > 0.6
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// rgbFromVec rounds each component of v to the nearest integer and clamps
// it to [0, 255].
func rgbFromVec(v Vec3) RGB {
	return RGB{R: channel(v[0]), G: channel(v[1]), B: channel(v[2])}
}

func channel(v float64) uint8 {
	v = math.Round(v)
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// distance calculates the Euclidean distance between two RGB colors.
func (c RGB) distance(other RGB) float64 {
	dr := int(c.R) - int(other.R)
	dg := int(c.G) - int(other.G)
	db := int(c.B) - int(other.B)
	return math.Sqrt(float64(dr*dr + dg*dg + db*db))
}

func (c RGB) component(axis int) uint8 {
	switch axis {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}
