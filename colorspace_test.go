package img2palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/img2palette/imageutil"
)

func TestParseColorSpace(t *testing.T) {
	tests := []struct {
		in   string
		want ColorSpace
	}{
		{"", SpaceRGB},
		{"rgb", SpaceRGB},
		{"RGB", SpaceRGB},
		{" lab ", SpaceLab},
		{"Lab", SpaceLab},
	}
	for _, tt := range tests {
		got, err := ParseColorSpace(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseColorSpace("hsv")
	assert.Error(t, err)
}

func TestColorSpaceString(t *testing.T) {
	assert.Equal(t, "rgb", SpaceRGB.String())
	assert.Equal(t, "lab", SpaceLab.String())
}

func TestColorSpaceRoundTrip(t *testing.T) {
	colors := []imageutil.RGB{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 255, B: 255},
		{R: 200, G: 50, B: 50},
		{R: 12, G: 140, B: 220},
	}
	for _, space := range []ColorSpace{SpaceRGB, SpaceLab} {
		for _, c := range colors {
			got := rgbFromVec(space.Decode(space.Encode(c)))
			assert.Equal(t, RGB{c.R, c.G, c.B}, got, "%s %v", space, c)
		}
	}
}

func TestEncodeAllMatchesEncode(t *testing.T) {
	samples := []imageutil.RGB{{R: 1, G: 2, B: 3}, {R: 200, G: 50, B: 50}, {R: 1, G: 2, B: 3}}
	for _, space := range []ColorSpace{SpaceRGB, SpaceLab} {
		encoded := space.EncodeAll(samples)
		require.Len(t, encoded, len(samples))
		for i, c := range samples {
			assert.Equal(t, space.Encode(c), encoded[i])
		}
	}
	assert.Equal(t, Vec3{200, 50, 50}, SpaceRGB.Encode(imageutil.RGB{R: 200, G: 50, B: 50}))
}
