package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest, and the only one that never invents new colors.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// Resize resizes an RGBA image to the specified dimensions using the
// given interpolation method.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	dstRect := image.Rect(0, 0, width, height)
	interp.scaler().Scale(dst.RGBA, dstRect, img.RGBA, img.Bounds(), draw.Src, nil)
	return dst
}

// FitDimensions returns the size of a width x height image whose longer
// side has been reduced to maxDim, keeping the aspect ratio. The shorter
// side is truncated and never drops below one pixel. If maxDim is not
// positive or the image already fits, the size is returned unchanged.
func FitDimensions(width, height, maxDim int) (int, int) {
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return width, height
	}
	if width > height {
		return maxDim, max(1, int(float64(maxDim)*float64(height)/float64(width)))
	}
	return max(1, int(float64(maxDim)*float64(width)/float64(height))), maxDim
}

// ResizeToMax shrinks an image so that its longer side is at most maxDim
// pixels, preserving the aspect ratio. The original image is returned when
// no resize is needed.
func ResizeToMax(img *RGBAImage, maxDim int, interp Interpolation) *RGBAImage {
	width, height := FitDimensions(img.Width(), img.Height(), maxDim)
	if width == img.Width() && height == img.Height() {
		return img
	}
	return Resize(img, width, height, interp)
}
