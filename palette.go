package img2palette

import "sort"

// RankedColor is one entry of a ranked palette.
type RankedColor struct {
	// Cluster is the index of the source cluster in the fit result.
	Cluster int     `json:"cluster"`
	RGB     RGB     `json:"rgb"`
	Hex     string  `json:"hex"`
	Code    uint32  `json:"code"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Palette is the ranked result of extracting colors from one image.
type Palette struct {
	Source     string        `json:"source,omitempty"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Samples    int           `json:"samples"`
	Iterations int           `json:"iterations"`
	Converged  bool          `json:"converged"`
	Colors     []RankedColor `json:"colors"`
}

// Rank orders clusters by descending population and converts each
// centroid to an 8-bit RGB color. Clusters with equal counts keep their
// index order. Centroid components are rounded to the nearest integer and
// clamped to [0, 255]. Percentages are relative to the sum of counts and
// are all zero when that sum is zero.
//
// Rank has no side effects and always returns len(centroids) entries;
// counts must have the same length as centroids.
func Rank(centroids []Vec3, counts []int) []RankedColor {
	order := make([]int, len(centroids))
	total := 0
	for i := range order {
		order[i] = i
		total += counts[i]
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	ranked := make([]RankedColor, len(order))
	for r, i := range order {
		rgb := rgbFromVec(centroids[i])
		var percent float64
		if total > 0 {
			percent = 100 * float64(counts[i]) / float64(total)
		}
		ranked[r] = RankedColor{
			Cluster: i,
			RGB:     rgb,
			Hex:     rgb.Hex(),
			Code:    rgb.Uint32(),
			Count:   counts[i],
			Percent: percent,
		}
	}
	return ranked
}
