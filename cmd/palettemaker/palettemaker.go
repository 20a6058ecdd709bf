package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wbrown/img2palette"
)

func main() {
	configFile := flag.String("config", "",
		"Path to a YAML config file; flags given explicitly override it")
	colors := flag.Int("colors", img2palette.DefaultColors,
		"Number of colors to extract (3-10)")
	resolution := flag.Int("resolution", img2palette.DefaultResolution,
		"Processing resolution: longest image side in pixels (min 100). "+
			"Higher resolution = more accurate but slower processing")
	maxIter := flag.Int("maxiter", img2palette.DefaultMaxIter,
		"Maximum number of k-means iterations")
	tolerance := flag.Float64("tol", img2palette.DefaultTolerance,
		"Convergence tolerance for centroid movement")
	space := flag.String("space", "rgb",
		"Color space to cluster in: rgb or lab")
	seed := flag.Int64("seed", 0,
		"Random seed for reproducible palettes (0 picks one from the clock)")
	workers := flag.Int("workers", 1,
		"Number of images processed concurrently")
	format := flag.String("format", "table",
		"Output format: table, json or ansi")
	swatchFile := flag.String("swatch", "",
		"Write a PNG swatch of the palette to this path "+
			"(with several images, the image number is appended)")
	verbose := flag.Bool("verbose", false,
		"Log debug information to stderr")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}).Level(level).With().Timestamp().Logger()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Println("Please provide one or more image paths as arguments")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := img2palette.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = img2palette.LoadConfig(*configFile); err != nil {
			log.Fatal().Err(err).Str("config", *configFile).Msg("could not load config")
		}
	}

	// Only flags set on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "colors":
			cfg.Colors = *colors
		case "resolution":
			cfg.Resolution = *resolution
		case "maxiter":
			cfg.MaxIter = *maxIter
		case "tol":
			cfg.Tolerance = *tolerance
		case "space":
			cfg.Space = strings.ToLower(*space)
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		case "format":
			cfg.Format = strings.ToLower(*format)
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	log.Debug().
		Int("colors", cfg.Colors).
		Int("resolution", cfg.Resolution).
		Int("max_iter", cfg.MaxIter).
		Float64("tolerance", cfg.Tolerance).
		Str("space", cfg.Space).
		Int64("seed", cfg.Seed).
		Int("workers", cfg.Workers).
		Msg("settings")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	extractor := img2palette.NewExtractor(
		append(cfg.Options(), img2palette.WithLogger(log.Logger))...)

	start := time.Now()
	palettes, err := extractor.ExtractFiles(ctx, paths)
	if err != nil {
		log.Error().Err(err).Msg("error processing image")
		stop()
		os.Exit(1)
	}

	mode := terminalMode(os.Stdout)
	switch cfg.Format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(palettes)
	case "ansi":
		for _, p := range palettes {
			fmt.Printf("%s\n%s\n", p.Source, img2palette.RenderANSI(p.Colors, mode))
		}
	default:
		for _, p := range palettes {
			writeTable(os.Stdout, p, mode)
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("error writing output")
	}

	if *swatchFile != "" {
		for i, p := range palettes {
			out := swatchPath(*swatchFile, i, len(palettes))
			if err := img2palette.SaveSwatchPNG(p, out, img2palette.DefaultSwatchOptions()); err != nil {
				log.Error().Err(err).Str("swatch", out).Msg("error writing swatch")
				continue
			}
			log.Info().Str("source", p.Source).Str("swatch", out).Msg("swatch written")
		}
	}

	log.Info().
		Int("images", len(palettes)).
		Dur("elapsed", time.Since(start)).
		Msg("done")
}

// terminalMode picks the richest ANSI coloring the output supports.
func terminalMode(f *os.File) img2palette.ANSIMode {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return img2palette.ANSINone
	}
	switch strings.ToLower(os.Getenv("COLORTERM")) {
	case "truecolor", "24bit":
		return img2palette.ANSITrueColor
	}
	return img2palette.ANSI256
}

// writeTable prints one palette as a table, with a swatch column when the
// output is a terminal.
func writeTable(w io.Writer, p *img2palette.Palette, mode img2palette.ANSIMode) {
	fmt.Fprintf(w, "%s (%dx%d, %d iterations)\n", p.Source, p.Width, p.Height, p.Iterations)

	header := []string{"#", "Hex", "RGB", "Share"}
	if mode != img2palette.ANSINone {
		header = append([]string{""}, header...)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, c := range p.Colors {
		row := []string{
			strconv.Itoa(i + 1),
			c.Hex,
			c.RGB.String(),
			fmt.Sprintf("%.1f%%", c.Percent),
		}
		if mode != img2palette.ANSINone {
			row = append([]string{img2palette.Swatch(c.RGB, mode)}, row...)
		}
		table.Append(row)
	}
	table.Render()
}

// swatchPath returns the swatch file for the i-th of n palettes. A single
// palette uses base as is; otherwise "-<i+1>" goes before the extension.
func swatchPath(base string, i, n int) string {
	if n <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), i+1, ext)
}
