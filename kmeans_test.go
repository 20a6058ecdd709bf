package img2palette

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(v Vec3, n int) []Vec3 {
	out := make([]Vec3, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func randomSamples(rng *rand.Rand, n int) []Vec3 {
	out := make([]Vec3, n)
	for i := range out {
		out[i] = Vec3{
			float64(rng.Intn(256)),
			float64(rng.Intn(256)),
			float64(rng.Intn(256)),
		}
	}
	return out
}

func sum(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

func TestFitRejectsInvalidParameters(t *testing.T) {
	samples := repeat(Vec3{1, 2, 3}, 4)
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name  string
		km    KMeans
		rng   *rand.Rand
		field string
	}{
		{"zero k", KMeans{K: 0, MaxIter: 10, Tol: 1e-4}, rng, "k"},
		{"negative k", KMeans{K: -2, MaxIter: 10, Tol: 1e-4}, rng, "k"},
		{"zero max iter", KMeans{K: 2, MaxIter: 0, Tol: 1e-4}, rng, "max_iter"},
		{"negative tol", KMeans{K: 2, MaxIter: 10, Tol: -1}, rng, "tol"},
		{"NaN tol", KMeans{K: 2, MaxIter: 10, Tol: math.NaN()}, rng, "tol"},
		{"nil rng", KMeans{K: 2, MaxIter: 10, Tol: 1e-4}, nil, "rng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.km.Fit(context.Background(), tt.rng, samples)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidParameter)

			var perr *ParameterError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.field, perr.Name)
		})
	}
}

func TestFitParametersCheckedBeforeSamples(t *testing.T) {
	km := KMeans{K: 0, MaxIter: 10, Tol: 1e-4}
	_, err := km.Fit(context.Background(), rand.New(rand.NewSource(1)), nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestFitEmptyInput(t *testing.T) {
	km := NewKMeans(3)
	res, err := km.Fit(context.Background(), rand.New(rand.NewSource(1)), nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestFitTwoClusters(t *testing.T) {
	samples := append(repeat(Vec3{10, 10, 10}, 100), repeat(Vec3{200, 50, 50}, 300)...)

	km := NewKMeans(2)
	res, err := km.Fit(context.Background(), rand.New(rand.NewSource(42)), samples)
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.LessOrEqual(t, res.Iterations, km.MaxIter)
	require.Len(t, res.Centroids, 2)
	require.Len(t, res.Counts, 2)

	ranked := Rank(res.Centroids, res.Counts)
	assert.Equal(t, RGB{200, 50, 50}, ranked[0].RGB)
	assert.Equal(t, 300, ranked[0].Count)
	assert.InDelta(t, 75.0, ranked[0].Percent, 1e-9)
	assert.Equal(t, RGB{10, 10, 10}, ranked[1].RGB)
	assert.Equal(t, 100, ranked[1].Count)
	assert.InDelta(t, 25.0, ranked[1].Percent, 1e-9)
}

func TestFitDeterministic(t *testing.T) {
	samples := randomSamples(rand.New(rand.NewSource(3)), 2000)
	km := NewKMeans(6)

	a, err := km.Fit(context.Background(), rand.New(rand.NewSource(99)), samples)
	require.NoError(t, err)
	b, err := km.Fit(context.Background(), rand.New(rand.NewSource(99)), samples)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFitConservesSamples(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		samples := randomSamples(rand.New(rand.NewSource(seed)), 1500)
		km := NewKMeans(int(seed) + 2)
		res, err := km.Fit(context.Background(), rand.New(rand.NewSource(seed)), samples)
		require.NoError(t, err)

		assert.Len(t, res.Centroids, km.K)
		assert.Equal(t, len(samples), sum(res.Counts))
		for _, c := range res.Counts {
			assert.GreaterOrEqual(t, c, 0)
		}
	}
}

func TestFitFewerDistinctThanK(t *testing.T) {
	samples := repeat(Vec3{120, 60, 30}, 50)

	km := NewKMeans(5)
	res, err := km.Fit(context.Background(), rand.New(rand.NewSource(1)), samples)
	require.NoError(t, err)

	require.Len(t, res.Centroids, 5)
	assert.Equal(t, 50, sum(res.Counts))
	for _, c := range res.Centroids {
		assert.Equal(t, Vec3{120, 60, 30}, c)
	}
	// duplicates tie, so everything lands on the lowest index
	assert.Equal(t, []int{50, 0, 0, 0, 0}, res.Counts)

	ranked := Rank(res.Centroids, res.Counts)
	assert.Equal(t, 0, ranked[0].Cluster)
	assert.InDelta(t, 100.0, ranked[0].Percent, 1e-9)
}

func TestFitIterationBudget(t *testing.T) {
	samples := randomSamples(rand.New(rand.NewSource(11)), 800)

	km := &KMeans{K: 4, MaxIter: 3, Tol: DefaultTolerance}
	res, err := km.Fit(context.Background(), rand.New(rand.NewSource(5)), samples)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Iterations, 3)
	assert.GreaterOrEqual(t, res.Iterations, 1)
}

func TestFitZeroToleranceRunsFullBudget(t *testing.T) {
	samples := randomSamples(rand.New(rand.NewSource(8)), 500)

	km := &KMeans{K: 3, MaxIter: 7, Tol: 0}
	res, err := km.Fit(context.Background(), rand.New(rand.NewSource(8)), samples)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Iterations)
	assert.False(t, res.Converged)
}

func TestFitCountsMatchCentroids(t *testing.T) {
	samples := randomSamples(rand.New(rand.NewSource(21)), 1000)

	for _, maxIter := range []int{1, 2, 50} {
		km := &KMeans{K: 5, MaxIter: maxIter, Tol: DefaultTolerance}
		res, err := km.Fit(context.Background(), rand.New(rand.NewSource(21)), samples)
		require.NoError(t, err)

		labels := make([]int, len(samples))
		counts := make([]int, km.K)
		assign(samples, res.Centroids, labels, counts)
		assert.Equal(t, counts, res.Counts, "max_iter=%d", maxIter)
	}
}

func TestFitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	km := NewKMeans(2)
	res, err := km.Fit(ctx, rand.New(rand.NewSource(1)), repeat(Vec3{1, 1, 1}, 10))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInitCentroidsDistinct(t *testing.T) {
	samples := append(repeat(Vec3{0, 0, 0}, 40), repeat(Vec3{255, 0, 0}, 40)...)
	samples = append(samples, repeat(Vec3{0, 255, 0}, 40)...)
	samples = append(samples, Vec3{0, 0, 255})

	centroids, d := initCentroids(rand.New(rand.NewSource(4)), samples, 3)
	assert.Equal(t, 4, d)
	require.Len(t, centroids, 3)

	seen := make(map[Vec3]bool)
	for _, c := range centroids {
		assert.False(t, seen[c], "duplicate centroid %v", c)
		seen[c] = true
		assert.Contains(t, samples, c)
	}
}

func TestInitCentroidsSupplement(t *testing.T) {
	samples := []Vec3{{9, 9, 9}, {1, 2, 3}, {9, 9, 9}, {1, 2, 0}}

	centroids, d := initCentroids(rand.New(rand.NewSource(2)), samples, 6)
	assert.Equal(t, 3, d)
	require.Len(t, centroids, 6)
	assert.Equal(t, []Vec3{{1, 2, 0}, {1, 2, 3}, {9, 9, 9}}, centroids[:3])
	for _, c := range centroids[3:] {
		assert.Contains(t, samples, c)
	}
}

func TestAssignTiesGoToLowestIndex(t *testing.T) {
	samples := []Vec3{{5, 0, 0}}
	centroids := []Vec3{{10, 0, 0}, {0, 0, 0}}
	labels := make([]int, 1)
	counts := make([]int, 2)

	assign(samples, centroids, labels, counts)
	assert.Equal(t, []int{0}, labels)
	assert.Equal(t, []int{1, 0}, counts)
}

func TestMaxShift(t *testing.T) {
	a := []Vec3{{0, 0, 0}, {10, 10, 10}}
	b := []Vec3{{0, 0.5, 0}, {10, 7, 10}}
	assert.InDelta(t, 3.0, maxShift(a, b), 1e-12)
	assert.Zero(t, maxShift(a, a))
}
