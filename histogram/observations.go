package histogram

import (
	"github.com/jrleja/BayesianComputing/utils"
	"fmt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ObservationSet is an immutable Nobs x Ndim table of per-object histograms,
// one normalized row per object, all rows over the same bins.
type ObservationSet struct {
	data *mat.Dense
	nobs int
	ndim int
}

// NewObservationSet copies and row-normalizes the given table. Rows must be
// non-empty, of equal length, finite, non-negative and carry positive mass.
func NewObservationSet(rows [][]float64) (*ObservationSet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("observation set needs at least one row")
	}
	ndim := len(rows[0])
	if ndim == 0 {
		return nil, fmt.Errorf("observation rows must not be empty")
	}
	data := mat.NewDense(len(rows), ndim, nil)
	for i, row := range rows {
		if len(row) != ndim {
			return nil, fmt.Errorf("observation row %d has %d bins, want %d", i, len(row), ndim)
		}
		h := Histogram(row).Clone()
		if !h.Valid() {
			return nil, fmt.Errorf("observation row %d has a negative or non-finite entry", i)
		}
		if err := h.Normalize(); err != nil {
			return nil, fmt.Errorf("observation row %d: %w", i, err)
		}
		data.SetRow(i, h)
	}
	return &ObservationSet{
		data: data,
		nobs: len(rows),
		ndim: ndim,
	}, nil
}

func (s *ObservationSet) Nobs() int {
	return s.nobs
}

func (s *ObservationSet) Ndim() int {
	return s.ndim
}

func (s *ObservationSet) At(i, j int) float64 {
	return s.data.At(i, j)
}

// Row returns a copy of the i-th object's histogram.
func (s *ObservationSet) Row(i int) Histogram {
	return Histogram(s.data.RawRowView(i)).Clone()
}

// Dense exposes the backing matrix for read-only use.
func (s *ObservationSet) Dense() *mat.Dense {
	return s.data
}

// StackedMean is the elementwise sum of all rows divided by the total mass of
// the table, always a valid simplex point. It is the sampler's fallback
// starting position.
func (s *ObservationSet) StackedMean() Histogram {
	sum := make(Histogram, s.ndim)
	for i := 0; i < s.nobs; i++ {
		floats.Add(sum, s.data.RawRowView(i))
	}
	// rows are normalized at construction, so total mass is positive
	_ = sum.Normalize()
	return sum
}

// Counts returns the per-bin column sums, the reference counts used to build
// the default Dirichlet concentration.
func (s *ObservationSet) Counts() []float64 {
	counts := make([]float64, s.ndim)
	for i := 0; i < s.nobs; i++ {
		floats.Add(counts, s.data.RawRowView(i))
	}
	return counts
}

// HashCode identifies the exact table contents, used as a stable key for
// seeding and result bookkeeping.
func (s *ObservationSet) HashCode() uint64 {
	return utils.HashFloats(s.data.RawMatrix().Data)
}
