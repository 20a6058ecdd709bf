package img2palette

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultMaxIter is the iteration budget used when none is configured.
	DefaultMaxIter = 50
	// DefaultTolerance is the largest per-component centroid shift that
	// still counts as converged.
	DefaultTolerance = 1e-4
)

// Vec3 is a point in a three-component color space. Samples and
// centroids share this representation.
type Vec3 [3]float64

// Result is the outcome of a single KMeans.Fit call. Counts[i] is the
// number of samples whose nearest centroid is Centroids[i], so the two
// slices always describe the same clustering.
type Result struct {
	Centroids  []Vec3
	Counts     []int
	Iterations int
	Converged  bool
}

// KMeans partitions a sample population into K clusters with Lloyd's
// algorithm. A KMeans holds configuration only; every Fit call owns its
// own buffers, so one value may be shared by concurrent callers.
type KMeans struct {
	K       int
	MaxIter int
	Tol     float64
	Logger  *zerolog.Logger
}

// NewKMeans returns a KMeans for k clusters with the default iteration
// budget and tolerance.
func NewKMeans(k int) *KMeans {
	return &KMeans{K: k, MaxIter: DefaultMaxIter, Tol: DefaultTolerance}
}

func (km *KMeans) validate(rng *rand.Rand) error {
	switch {
	case km.K < 1:
		return invalidParameter("k", km.K, "cluster count out of range")
	case km.MaxIter < 1:
		return invalidParameter("max_iter", km.MaxIter, "must be at least 1")
	case km.Tol < 0 || math.IsNaN(km.Tol):
		return invalidParameter("tol", km.Tol, "must be a non-negative number")
	case rng == nil:
		return invalidParameter("rng", nil, "random source is required")
	}
	return nil
}

func (km *KMeans) logger() *zerolog.Logger {
	if km.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return km.Logger
}

// Fit clusters samples into km.K groups. All randomness (initial centroid
// choice and reseeding of empty clusters) is drawn from rng, so two calls
// with identically seeded generators return identical results.
//
// The context is checked between iterations; a cancelled context aborts
// the fit with the context's error.
func (km *KMeans) Fit(ctx context.Context, rng *rand.Rand, samples []Vec3) (*Result, error) {
	if err := km.validate(rng); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	k, n := km.K, len(samples)
	centroids, distinct := initCentroids(rng, samples, k)

	next := make([]Vec3, k)
	sums := make([]Vec3, k)
	counts := make([]int, k)
	labels := make([]int, n)

	res := &Result{}
	reseeded := 0
	for res.Iterations < km.MaxIter {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("kmeans stopped after %d iterations: %w",
				res.Iterations, err)
		}
		res.Iterations++

		assign(samples, centroids, labels, counts)

		for j := range sums {
			sums[j] = Vec3{}
		}
		for i, s := range samples {
			l := labels[i]
			sums[l][0] += s[0]
			sums[l][1] += s[1]
			sums[l][2] += s[2]
		}
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				next[j] = samples[rng.Intn(n)]
				reseeded++
				continue
			}
			c := float64(counts[j])
			next[j] = Vec3{sums[j][0] / c, sums[j][1] / c, sums[j][2] / c}
		}

		if maxShift(centroids, next) < km.Tol {
			// counts already belong to centroids
			res.Converged = true
			break
		}
		centroids, next = next, centroids
	}

	if !res.Converged {
		// The last update moved the centroids after counting; recount so
		// the reported counts match the reported centroids.
		assign(samples, centroids, labels, counts)
	}

	res.Centroids = centroids
	res.Counts = counts

	km.logger().Debug().
		Int("k", k).
		Int("samples", n).
		Int("distinct", distinct).
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Int("reseeded", reseeded).
		Dur("elapsed", time.Since(start)).
		Msg("kmeans fit")

	return res, nil
}

// initCentroids picks k starting centroids. With at least k distinct
// sample values, k of them are chosen uniformly without replacement.
// Otherwise every distinct value is used and the remainder is drawn with
// replacement from the full sample list, which yields duplicate centroids.
// It also returns the number of distinct values found.
func initCentroids(rng *rand.Rand, samples []Vec3, k int) ([]Vec3, int) {
	distinct := distinctSamples(samples)
	d := len(distinct)
	centroids := make([]Vec3, 0, k)

	if d >= k {
		// partial Fisher-Yates: the first k slots become the selection
		for i := 0; i < k; i++ {
			j := i + rng.Intn(d-i)
			distinct[i], distinct[j] = distinct[j], distinct[i]
		}
		return append(centroids, distinct[:k]...), d
	}

	centroids = append(centroids, distinct...)
	for len(centroids) < k {
		centroids = append(centroids, samples[rng.Intn(len(samples))])
	}
	return centroids, d
}

// distinctSamples returns the unique sample values in lexicographic
// component order, making the initial selection independent of map
// iteration order.
func distinctSamples(samples []Vec3) []Vec3 {
	seen := make(map[Vec3]struct{})
	distinct := make([]Vec3, 0)
	for _, s := range samples {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		distinct = append(distinct, s)
	}
	sort.Slice(distinct, func(i, j int) bool {
		a, b := distinct[i], distinct[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	return distinct
}

// assign labels every sample with its nearest centroid and recounts the
// cluster populations. Ties go to the lowest centroid index.
func assign(samples, centroids []Vec3, labels, counts []int) {
	for j := range counts {
		counts[j] = 0
	}
	for i := range samples {
		best, bestDist := 0, math.Inf(1)
		for j := range centroids {
			d := floats.Distance(samples[i][:], centroids[j][:], 2)
			if d < bestDist {
				best, bestDist = j, d
			}
		}
		labels[i] = best
		counts[best]++
	}
}

// maxShift returns the largest absolute component difference between
// matching centroids of a and b.
func maxShift(a, b []Vec3) float64 {
	shift := 0.0
	for i := range a {
		for c := 0; c < 3; c++ {
			shift = math.Max(shift, math.Abs(a[i][c]-b[i][c]))
		}
	}
	return shift
}
