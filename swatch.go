package img2palette

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/wbrown/img2palette/imageutil"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// SwatchOptions controls the geometry of a rendered palette image.
type SwatchOptions struct {
	CellWidth   int
	CellHeight  int
	LabelHeight int
	FontSize    float64
}

// DefaultSwatchOptions returns 160x160 color cells with a 56 pixel label
// strip and 12 point text.
func DefaultSwatchOptions() SwatchOptions {
	return SwatchOptions{
		CellWidth:   160,
		CellHeight:  160,
		LabelHeight: 56,
		FontSize:    12,
	}
}

var (
	swatchFontOnce sync.Once
	swatchFont     *truetype.Font
	swatchFontErr  error
)

func loadSwatchFont() (*truetype.Font, error) {
	swatchFontOnce.Do(func() {
		swatchFont, swatchFontErr = freetype.ParseFont(goregular.TTF)
	})
	return swatchFont, swatchFontErr
}

// RenderSwatch draws the palette as a row of equal columns, most
// prevalent color first. Each column is a solid block labelled with its hex
// code, followed by a white strip holding the RGB triple and percentage.
func RenderSwatch(p *Palette, opts SwatchOptions) (*image.RGBA, error) {
	if p == nil || len(p.Colors) == 0 {
		return nil, errors.New("palette has no colors")
	}
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 || opts.LabelHeight < 0 || opts.FontSize <= 0 {
		return nil, fmt.Errorf("invalid swatch geometry: %+v", opts)
	}

	ttf, err := loadSwatchFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse swatch font: %w", err)
	}

	width := opts.CellWidth * len(p.Colors)
	height := opts.CellHeight + opts.LabelHeight
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(opts.FontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetHinting(font.HintingFull)

	margin := opts.CellWidth / 20
	line := int(opts.FontSize * 1.5)
	for i, c := range p.Colors {
		x0 := i * opts.CellWidth
		cell := image.Rect(x0, 0, x0+opts.CellWidth, opts.CellHeight)
		draw.Draw(img, cell, &image.Uniform{C: c.RGB.ToColor()}, image.Point{}, draw.Src)

		ink := image.White
		if c.RGB.IsLight() {
			ink = image.Black
		}
		ctx.SetSrc(ink)
		if _, err := ctx.DrawString(c.Hex, freetype.Pt(x0+margin, opts.CellHeight-margin)); err != nil {
			return nil, fmt.Errorf("failed to draw label: %w", err)
		}

		if opts.LabelHeight == 0 {
			continue
		}
		ctx.SetSrc(image.Black)
		labels := []string{c.RGB.String(), fmt.Sprintf("%.1f%%", c.Percent)}
		for j, label := range labels {
			pt := freetype.Pt(x0+margin, opts.CellHeight+(j+1)*line)
			if _, err := ctx.DrawString(label, pt); err != nil {
				return nil, fmt.Errorf("failed to draw label: %w", err)
			}
		}
	}
	return img, nil
}

// SaveSwatchPNG renders the palette with RenderSwatch and writes it to
// path as a PNG file.
func SaveSwatchPNG(p *Palette, path string, opts SwatchOptions) error {
	img, err := RenderSwatch(p, opts)
	if err != nil {
		return err
	}
	return imageutil.SavePNG(img, path)
}
