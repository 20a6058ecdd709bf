package img2palette

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/wbrown/img2palette/imageutil"
)

// ColorSpace selects the coordinates samples are clustered in.
type ColorSpace int

const (
	// SpaceRGB clusters raw 8-bit RGB values.
	SpaceRGB ColorSpace = iota
	// SpaceLab clusters CIE L*a*b* (D65) coordinates, where Euclidean
	// distance follows perceived difference more closely.
	SpaceLab
)

// ParseColorSpace parses "rgb" or "lab" (case-insensitive).
func ParseColorSpace(name string) (ColorSpace, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rgb":
		return SpaceRGB, nil
	case "lab":
		return SpaceLab, nil
	}
	return SpaceRGB, fmt.Errorf("unknown color space %q, options are rgb or lab", name)
}

func (s ColorSpace) String() string {
	if s == SpaceLab {
		return "lab"
	}
	return "rgb"
}

// Encode converts an 8-bit color into this space.
func (s ColorSpace) Encode(c imageutil.RGB) Vec3 {
	if s == SpaceLab {
		l, a, b := colorful.Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
		}.Lab()
		return Vec3{l, a, b}
	}
	return Vec3{float64(c.R), float64(c.G), float64(c.B)}
}

// Decode converts a point of this space back to RGB components on the
// 0-255 scale. Lab points outside the sRGB gamut are clamped.
func (s ColorSpace) Decode(v Vec3) Vec3 {
	if s == SpaceLab {
		c := colorful.Lab(v[0], v[1], v[2]).Clamped()
		return Vec3{c.R * 255, c.G * 255, c.B * 255}
	}
	return v
}

// EncodeAll converts a sample list, converting each distinct color once.
func (s ColorSpace) EncodeAll(samples []imageutil.RGB) []Vec3 {
	out := make([]Vec3, len(samples))
	if s == SpaceRGB {
		for i, c := range samples {
			out[i] = Vec3{float64(c.R), float64(c.G), float64(c.B)}
		}
		return out
	}
	cache := make(map[imageutil.RGB]Vec3)
	for i, c := range samples {
		v, ok := cache[c]
		if !ok {
			v = s.Encode(c)
			cache[c] = v
		}
		out[i] = v
	}
	return out
}

// DecodeAll converts centroids back to RGB components.
func (s ColorSpace) DecodeAll(points []Vec3) []Vec3 {
	out := make([]Vec3, len(points))
	for i, v := range points {
		out[i] = s.Decode(v)
	}
	return out
}
