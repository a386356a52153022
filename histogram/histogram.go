package histogram

import (
	"fmt"
	"gonum.org/v1/gonum/floats"
	"math"
)

// Histogram holds per-bin weights. A normalized Histogram is a point on the
// probability simplex: every entry non-negative, entries summing to one.
type Histogram []float64

func (h Histogram) Sum() float64 {
	return floats.Sum(h)
}

func (h Histogram) Clone() Histogram {
	out := make(Histogram, len(h))
	copy(out, h)
	return out
}

// Valid reports whether every entry is finite and non-negative.
func (h Histogram) Valid() bool {
	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Normalize scales the histogram in place so its entries sum to one.
func (h Histogram) Normalize() error {
	total := floats.Sum(h)
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return fmt.Errorf("cannot normalize histogram with total mass %v", total)
	}
	floats.Scale(1/total, h)
	return nil
}

// BinGrid describes a contiguous set of equal-width bins over [Lo, Hi).
type BinGrid struct {
	Lo float64 `yaml:"lo" json:"lo"`
	Hi float64 `yaml:"hi" json:"hi"`
	N  int     `yaml:"n" json:"n"`
}

func (g BinGrid) Width() float64 {
	if g.N == 0 {
		return 0
	}
	return (g.Hi - g.Lo) / float64(g.N)
}

func (g BinGrid) Centers() []float64 {
	width := g.Width()
	centers := make([]float64, g.N)
	for i := range centers {
		centers[i] = g.Lo + (float64(i)+0.5)*width
	}
	return centers
}

func (g BinGrid) Validate() error {
	if g.N <= 0 {
		return fmt.Errorf("bin grid needs a positive bin count, got %d", g.N)
	}
	if !(g.Hi > g.Lo) {
		return fmt.Errorf("bin grid needs hi > lo, got [%v, %v)", g.Lo, g.Hi)
	}
	return nil
}
