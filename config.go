package img2palette

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// MinColors and MaxColors bound the palette size accepted from
	// configuration.
	MinColors = 3
	MaxColors = 10
	// MinResolution is the smallest sampling resolution accepted from
	// configuration.
	MinResolution = 100
)

// ErrInvalidConfig is returned by Config.Validate and LoadConfig for
// values outside the accepted ranges.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds user-facing extraction settings, as read from a YAML file
// and command-line flags.
type Config struct {
	Colors     int     `yaml:"colors"`
	Resolution int     `yaml:"resolution"`
	MaxIter    int     `yaml:"max_iter"`
	Tolerance  float64 `yaml:"tolerance"`
	Space      string  `yaml:"space"`
	// Seed fixes the random seed. Zero picks a seed from the clock.
	Seed    int64  `yaml:"seed"`
	Workers int    `yaml:"workers"`
	Format  string `yaml:"format"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Colors:     DefaultColors,
		Resolution: DefaultResolution,
		MaxIter:    DefaultMaxIter,
		Tolerance:  DefaultTolerance,
		Space:      SpaceRGB.String(),
		Workers:    1,
		Format:     "table",
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep
// their DefaultConfig values. The result is validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks every field against its accepted range.
func (c Config) Validate() error {
	switch {
	case c.Colors < MinColors || c.Colors > MaxColors:
		return fmt.Errorf("%w: colors=%d must be between %d and %d",
			ErrInvalidConfig, c.Colors, MinColors, MaxColors)
	case c.Resolution < MinResolution:
		return fmt.Errorf("%w: resolution=%d must be at least %d",
			ErrInvalidConfig, c.Resolution, MinResolution)
	case c.MaxIter < 1:
		return fmt.Errorf("%w: max_iter=%d must be at least 1",
			ErrInvalidConfig, c.MaxIter)
	case c.Tolerance < 0 || math.IsNaN(c.Tolerance):
		return fmt.Errorf("%w: tolerance=%v must be non-negative",
			ErrInvalidConfig, c.Tolerance)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers=%d must be at least 1",
			ErrInvalidConfig, c.Workers)
	}
	if _, err := ParseColorSpace(c.Space); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Format {
	case "table", "json", "ansi":
	default:
		return fmt.Errorf("%w: format=%q must be table, json or ansi",
			ErrInvalidConfig, c.Format)
	}
	return nil
}

// Options converts the config into Extractor options. It assumes the
// config has been validated.
func (c Config) Options() []ExtractorOption {
	space, _ := ParseColorSpace(c.Space)
	opts := []ExtractorOption{
		WithColors(c.Colors),
		WithResolution(c.Resolution),
		WithMaxIter(c.MaxIter),
		WithTolerance(c.Tolerance),
		WithColorSpace(space),
		WithWorkers(c.Workers),
	}
	if c.Seed != 0 {
		opts = append(opts, WithSeed(c.Seed))
	}
	return opts
}
