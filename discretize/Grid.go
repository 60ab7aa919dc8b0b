// Package discretize maps continuous vectors into finite spaces of
// equal-width bins so that tabular agents can index them.
//
// Discretization is a lossy boundary: Vector(Index(x)) returns the
// center of the bin containing x, not x itself. Bin centers are fixed
// points of the round trip, so applying Index then Vector twice in a
// row is idempotent. Training through a discretized action space
// necessarily loses resolution; finer bins recover resolution at the
// cost of a larger table.
package discretize

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"sfneuman.com/gridlearn/utils/floatutils"
)

// Grid partitions each dimension of a bounded continuous space into a
// fixed number of equal-width bins. The total number of cells is the
// product of the per-dimension bin counts; keeping this product small
// enough for tabular storage is a configuration concern, not an
// enforced runtime limit.
type Grid struct {
	bins  []int
	lower []float64
	upper []float64
}

// NewGrid returns a grid over the space bounded below by lower and
// above by upper, with bins[i] equal-width bins along dimension i
func NewGrid(bins []int, lower, upper mat.Vector) (*Grid, error) {
	if len(bins) != lower.Len() || len(bins) != upper.Len() {
		return nil, fmt.Errorf("newGrid: bins length %v must match bounds "+
			"lengths %v, %v", len(bins), lower.Len(), upper.Len())
	}

	g := &Grid{
		bins:  make([]int, len(bins)),
		lower: make([]float64, len(bins)),
		upper: make([]float64, len(bins)),
	}

	for i, b := range bins {
		if b <= 0 {
			return nil, fmt.Errorf("newGrid: bin count %v for dimension %v "+
				"must be positive", b, i)
		}
		if !floatutils.Finite(lower.AtVec(i), upper.AtVec(i)) {
			return nil, fmt.Errorf("newGrid: dimension %v has non-finite "+
				"bounds [%v, %v]", i, lower.AtVec(i), upper.AtVec(i))
		}
		if lower.AtVec(i) >= upper.AtVec(i) {
			return nil, fmt.Errorf("newGrid: dimension %v has empty bounds "+
				"[%v, %v]", i, lower.AtVec(i), upper.AtVec(i))
		}
		g.bins[i] = b
		g.lower[i] = lower.AtVec(i)
		g.upper[i] = upper.AtVec(i)
	}

	return g, nil
}

// Dims returns the number of dimensions of the grid
func (g *Grid) Dims() int {
	return len(g.bins)
}

// Size returns the total number of cells in the grid
func (g *Grid) Size() int {
	size := 1
	for _, b := range g.bins {
		size *= b
	}
	return size
}

// Index returns the mixed-radix cell index of the argument vector.
// Index is total: out-of-bound components are clamped before binning,
// so every input maps to a valid cell.
func (g *Grid) Index(v mat.Vector) (int, error) {
	if v.Len() != len(g.bins) {
		return 0, fmt.Errorf("index: vector length %v must match grid "+
			"dimensionality %v", v.Len(), len(g.bins))
	}

	index := 0
	for i := range g.bins {
		index = index*g.bins[i] + g.bin(i, v.AtVec(i))
	}
	return index, nil
}

// Vector returns the representative point (the bin center) of the cell
// with the argument index
func (g *Grid) Vector(index int) (*mat.VecDense, error) {
	if index < 0 || index >= g.Size() {
		return nil, fmt.Errorf("vector: index %v ∉ [0, %v)", index, g.Size())
	}

	centers := make([]float64, len(g.bins))
	for i := len(g.bins) - 1; i >= 0; i-- {
		bin := index % g.bins[i]
		index /= g.bins[i]

		width := (g.upper[i] - g.lower[i]) / float64(g.bins[i])
		centers[i] = g.lower[i] + (float64(bin)+0.5)*width
	}

	return mat.NewVecDense(len(centers), centers), nil
}

// Key returns the cell of the argument vector as a string of
// per-dimension bin numbers, usable as a map key for tabular value
// storage
func (g *Grid) Key(v mat.Vector) (string, error) {
	if v.Len() != len(g.bins) {
		return "", fmt.Errorf("key: vector length %v must match grid "+
			"dimensionality %v", v.Len(), len(g.bins))
	}

	var b strings.Builder
	for i := range g.bins {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(strconv.Itoa(g.bin(i, v.AtVec(i))))
	}
	return b.String(), nil
}

// Fingerprint returns a string identifying the grid's configuration.
// Two grids index vectors identically if and only if their
// fingerprints are equal, so fingerprints gate snapshot restoration.
func (g *Grid) Fingerprint() string {
	return fmt.Sprintf("bins=%v lower=%v upper=%v", g.bins, g.lower, g.upper)
}

// bin returns the bin number of value along dimension i, clamping
// out-of-bound values to the outermost bins
func (g *Grid) bin(i int, value float64) int {
	value = floatutils.Clip(value, g.lower[i], g.upper[i])
	width := (g.upper[i] - g.lower[i]) / float64(g.bins[i])

	bin := int((value - g.lower[i]) / width)
	if bin >= g.bins[i] { // value exactly at the upper bound
		bin = g.bins[i] - 1
	}
	return bin
}
