package prior

import (
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestUniformIsFlatOnSimplex(t *testing.T) {
	flat := Uniform(3)
	a := flat([]float64{0.2, 0.3, 0.5})
	b := flat([]float64{0.6, 0.1, 0.3})
	require.False(t, math.IsInf(a, 0))
	require.InDelta(t, a, b, 1e-12)
}

func TestDirichletRejectsOutOfSimplex(t *testing.T) {
	logProb := Dirichlet([]float64{2, 2, 2})

	t.Run("Wrong length", func(t *testing.T) {
		require.True(t, math.IsInf(logProb([]float64{0.5, 0.5}), -1))
	})
	t.Run("Negative entry", func(t *testing.T) {
		require.True(t, math.IsInf(logProb([]float64{-0.1, 0.6, 0.5}), -1))
	})
	t.Run("Does not sum to one", func(t *testing.T) {
		require.True(t, math.IsInf(logProb([]float64{0.5, 0.5, 0.5}), -1))
	})
	t.Run("NaN entry", func(t *testing.T) {
		require.True(t, math.IsInf(logProb([]float64{math.NaN(), 0.5, 0.5}), -1))
	})
}

func TestDirichletOnSimplexBoundary(t *testing.T) {
	t.Run("Zero component under unit concentration", func(t *testing.T) {
		logProb := Dirichlet([]float64{1, 1, 1})
		v := logProb([]float64{0, 0.4, 0.6})
		require.False(t, math.IsInf(v, 0))
		require.False(t, math.IsNaN(v))
		// a flat density does not care where on the simplex we are
		require.InDelta(t, logProb([]float64{0.2, 0.3, 0.5}), v, 1e-12)
	})
	t.Run("Zero component under non-unit concentration", func(t *testing.T) {
		logProb := Dirichlet([]float64{2, 2, 2})
		require.True(t, math.IsInf(logProb([]float64{0, 0.4, 0.6}), -1))
	})
}

func TestDirichletFavorsConcentration(t *testing.T) {
	logProb := Dirichlet([]float64{5, 1, 1})
	heavy := logProb([]float64{0.8, 0.1, 0.1})
	light := logProb([]float64{0.1, 0.1, 0.8})
	require.Greater(t, heavy, light)
}

func TestDirichletWithCounts(t *testing.T) {
	// counts concentrated on the first bin should prefer first-bin mass
	logProb := DirichletWithCounts([]float64{10, 0, 0})
	heavy := logProb([]float64{0.8, 0.1, 0.1})
	light := logProb([]float64{0.1, 0.1, 0.8})
	require.Greater(t, heavy, light)
}
