package histogram

import (
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNewObservationSet(t *testing.T) {
	t.Run("Normalizes rows", func(t *testing.T) {
		obs, err := NewObservationSet([][]float64{
			{2, 2, 0},
			{0, 1, 3},
		})
		require.NoError(t, err)
		if diff := cmp.Diff(Histogram{0.5, 0.5, 0}, obs.Row(0)); diff != "" {
			t.Errorf("Unexpected row 0 (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(Histogram{0, 0.25, 0.75}, obs.Row(1)); diff != "" {
			t.Errorf("Unexpected row 1 (-want +got):\n%s", diff)
		}
	})
	t.Run("Rejects empty table", func(t *testing.T) {
		_, err := NewObservationSet(nil)
		require.Error(t, err)
	})
	t.Run("Rejects ragged rows", func(t *testing.T) {
		_, err := NewObservationSet([][]float64{{1, 0}, {1, 0, 0}})
		require.Error(t, err)
	})
	t.Run("Rejects negative entries", func(t *testing.T) {
		_, err := NewObservationSet([][]float64{{1, -1}})
		require.Error(t, err)
	})
	t.Run("Rejects zero-mass row", func(t *testing.T) {
		_, err := NewObservationSet([][]float64{{0, 0}})
		require.Error(t, err)
	})
}

func TestObservationSetRowIsACopy(t *testing.T) {
	obs, err := NewObservationSet([][]float64{{1, 1}})
	require.NoError(t, err)
	row := obs.Row(0)
	row[0] = 42
	require.Equal(t, 0.5, obs.At(0, 0))
}

func TestStackedMean(t *testing.T) {
	obs, err := NewObservationSet([][]float64{
		{1, 0},
		{0, 1},
		{1, 1},
	})
	require.NoError(t, err)
	if diff := cmp.Diff(Histogram{0.5, 0.5}, obs.StackedMean()); diff != "" {
		t.Errorf("Unexpected stacked mean (-want +got):\n%s", diff)
	}
}

func TestCounts(t *testing.T) {
	obs, err := NewObservationSet([][]float64{
		{1, 0},
		{1, 3},
	})
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{1.25, 0.75}, obs.Counts()); diff != "" {
		t.Errorf("Unexpected counts (-want +got):\n%s", diff)
	}
}

func TestHashCode(t *testing.T) {
	rows := [][]float64{{0.2, 0.8}, {0.6, 0.4}}
	first, err := NewObservationSet(rows)
	require.NoError(t, err)
	second, err := NewObservationSet(rows)
	require.NoError(t, err)
	require.Equal(t, first.HashCode(), second.HashCode())

	other, err := NewObservationSet([][]float64{{0.8, 0.2}, {0.6, 0.4}})
	require.NoError(t, err)
	require.NotEqual(t, first.HashCode(), other.HashCode())
}
