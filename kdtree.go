package img2palette

import (
	"math"
	"sort"
)

// ColorNode represents a node in a KD-tree of palette entries. Each node
// holds one color with its palette index, its children, and the axis its
// subtree is split on.
type ColorNode struct {
	Color       RGB
	Index       int
	Left, Right *ColorNode
	SplitAxis   int
}

type indexedColor struct {
	color RGB
	index int
}

// buildKDTree constructs a KD-tree from a list of palette entries. The
// slice is reordered in place.
func buildKDTree(entries []indexedColor) *ColorNode {
	if len(entries) == 0 {
		return nil
	}

	// Choose splitting axis based on the dimension with the largest variance
	axis := chooseSplitAxis(entries)

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].color.component(axis) < entries[j].color.component(axis)
	})

	median := len(entries) / 2
	return &ColorNode{
		Color:     entries[median].color,
		Index:     entries[median].index,
		Left:      buildKDTree(entries[:median]),
		Right:     buildKDTree(entries[median+1:]),
		SplitAxis: axis,
	}
}

// chooseSplitAxis returns the index of the color axis with the largest
// variance.
func chooseSplitAxis(entries []indexedColor) int {
	var mean, variance [3]float64
	for _, e := range entries {
		for axis := 0; axis < 3; axis++ {
			mean[axis] += float64(e.color.component(axis))
		}
	}
	for axis := range mean {
		mean[axis] /= float64(len(entries))
	}
	for _, e := range entries {
		for axis := 0; axis < 3; axis++ {
			d := float64(e.color.component(axis)) - mean[axis]
			variance[axis] += d * d
		}
	}

	if variance[0] > variance[1] && variance[0] > variance[2] {
		return 0 // R axis
	} else if variance[1] > variance[2] {
		return 1 // G axis
	}
	return 2 // B axis
}

// nearest returns the palette entry closest to target. Equidistant
// entries resolve to the lowest palette index.
func (node *ColorNode) nearest(target RGB) (RGB, int) {
	best := &ColorNode{Index: math.MaxInt}
	bestDist := math.Inf(1)
	node.search(target, &best, &bestDist)
	return best.Color, best.Index
}

func (node *ColorNode) search(target RGB, best **ColorNode, bestDist *float64) {
	if node == nil {
		return
	}

	dist := node.Color.distance(target)
	if dist < *bestDist || (dist == *bestDist && node.Index < (*best).Index) {
		*best = node
		*bestDist = dist
	}

	axisDist := float64(target.component(node.SplitAxis)) -
		float64(node.Color.component(node.SplitAxis))
	next, other := node.Right, node.Left
	if axisDist < 0 {
		next, other = node.Left, node.Right
	}

	next.search(target, best, bestDist)

	// The other side can only hold something at least |axisDist| away.
	if math.Abs(axisDist) <= *bestDist {
		other.search(target, best, bestDist)
	}
}
