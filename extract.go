package img2palette

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/wbrown/img2palette/imageutil"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultColors is the number of palette entries extracted by default.
	DefaultColors = 5
	// DefaultResolution is the default limit, in pixels, for the longer
	// side of an image before it is sampled.
	DefaultResolution = 1000
)

// Extractor turns images into ranked palettes: it resizes, samples,
// clusters and ranks. An Extractor is safe for concurrent use once
// configured; each extraction owns its own random source and buffers.
type Extractor struct {
	// Configuration options
	Colors        int
	Resolution    int
	MaxIter       int
	Tolerance     float64
	Space         ColorSpace
	Seed          int64
	Workers       int
	Interpolation imageutil.Interpolation

	logger zerolog.Logger
}

// ExtractorOption is a functional option for configuring an Extractor.
type ExtractorOption func(*Extractor)

// NewExtractor creates a new Extractor with the given options.
// Default values: Colors=5, Resolution=1000, MaxIter=50, Tolerance=1e-4,
// Space=SpaceRGB, Workers=1, and a seed taken from the clock.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		Colors:        DefaultColors,
		Resolution:    DefaultResolution,
		MaxIter:       DefaultMaxIter,
		Tolerance:     DefaultTolerance,
		Space:         SpaceRGB,
		Seed:          time.Now().UnixNano(),
		Workers:       1,
		Interpolation: imageutil.InterpolationArea,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithColors sets the number of colors to extract.
func WithColors(n int) ExtractorOption {
	return func(e *Extractor) {
		e.Colors = n
	}
}

// WithResolution limits the longer image side before sampling. Zero or a
// negative value samples images at full size.
func WithResolution(px int) ExtractorOption {
	return func(e *Extractor) {
		e.Resolution = px
	}
}

// WithMaxIter sets the k-means iteration budget.
func WithMaxIter(n int) ExtractorOption {
	return func(e *Extractor) {
		e.MaxIter = n
	}
}

// WithTolerance sets the k-means convergence tolerance.
func WithTolerance(tol float64) ExtractorOption {
	return func(e *Extractor) {
		e.Tolerance = tol
	}
}

// WithColorSpace sets the space samples are clustered in.
func WithColorSpace(space ColorSpace) ExtractorOption {
	return func(e *Extractor) {
		e.Space = space
	}
}

// WithSeed fixes the random seed, making extraction reproducible.
func WithSeed(seed int64) ExtractorOption {
	return func(e *Extractor) {
		e.Seed = seed
	}
}

// WithWorkers bounds how many images ExtractFiles processes at once.
func WithWorkers(n int) ExtractorOption {
	return func(e *Extractor) {
		e.Workers = n
	}
}

// WithInterpolation sets the scaler used when shrinking images.
func WithInterpolation(interp imageutil.Interpolation) ExtractorOption {
	return func(e *Extractor) {
		e.Interpolation = interp
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger zerolog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// ExtractSamples clusters a flat list of pixel colors and ranks the
// clusters. Width and Height of the returned palette are left zero.
func (e *Extractor) ExtractSamples(ctx context.Context, samples []imageutil.RGB) (*Palette, error) {
	km := &KMeans{
		K:       e.Colors,
		MaxIter: e.MaxIter,
		Tol:     e.Tolerance,
		Logger:  &e.logger,
	}
	// Every extraction starts from the same seed, so a file's palette does
	// not depend on which batch it ran in or in what order.
	rng := rand.New(rand.NewSource(e.Seed))

	res, err := km.Fit(ctx, rng, e.Space.EncodeAll(samples))
	if err != nil {
		return nil, err
	}

	return &Palette{
		Samples:    len(samples),
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Colors:     Rank(e.Space.DecodeAll(res.Centroids), res.Counts),
	}, nil
}

// ExtractImage shrinks img to the configured resolution and extracts its
// palette.
func (e *Extractor) ExtractImage(ctx context.Context, img *imageutil.RGBAImage) (*Palette, error) {
	resized := imageutil.ResizeToMax(img, e.Resolution, e.Interpolation)

	p, err := e.ExtractSamples(ctx, imageutil.Samples(resized))
	if err != nil {
		return nil, err
	}
	p.Width, p.Height = resized.Width(), resized.Height()
	return p, nil
}

// ExtractFile loads the image at path and extracts its palette.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Palette, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := imageutil.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p, err := e.ExtractImage(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Source = path

	e.logger.Debug().
		Str("source", path).
		Int("width", img.Width()).
		Int("height", img.Height()).
		Int("sampled_width", p.Width).
		Int("sampled_height", p.Height).
		Str("space", e.Space.String()).
		Dur("elapsed", time.Since(start)).
		Msg("extracted palette")
	return p, nil
}

// ExtractFiles extracts palettes for several images, running up to
// e.Workers extractions at once. Palettes are returned in the order of
// paths. The first failure cancels the remaining work and is returned.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string) ([]*Palette, error) {
	palettes := make([]*Palette, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.Workers))
	for i, path := range paths {
		g.Go(func() error {
			p, err := e.ExtractFile(ctx, path)
			if err != nil {
				return err
			}
			palettes[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return palettes, nil
}
