package histogram

import (
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestHistogramNormalize(t *testing.T) {
	t.Run("Scales to unit mass", func(t *testing.T) {
		h := Histogram{2, 1, 1}
		require.NoError(t, h.Normalize())
		if diff := cmp.Diff(Histogram{0.5, 0.25, 0.25}, h); diff != "" {
			t.Errorf("Unexpected normalized histogram (-want +got):\n%s", diff)
		}
	})
	t.Run("Rejects zero mass", func(t *testing.T) {
		h := Histogram{0, 0, 0}
		require.Error(t, h.Normalize())
	})
	t.Run("Rejects non-finite mass", func(t *testing.T) {
		h := Histogram{1, math.Inf(1)}
		require.Error(t, h.Normalize())
	})
}

func TestHistogramValid(t *testing.T) {
	require.True(t, Histogram{0, 0.5, 0.5}.Valid())
	require.False(t, Histogram{-0.1, 1.1}.Valid())
	require.False(t, Histogram{math.NaN(), 1}.Valid())
	require.False(t, Histogram{math.Inf(1), 0}.Valid())
}

func TestHistogramClone(t *testing.T) {
	h := Histogram{0.25, 0.75}
	clone := h.Clone()
	clone[0] = 0
	require.Equal(t, 0.25, h[0])
}

func TestBinGrid(t *testing.T) {
	grid := BinGrid{Lo: 0, Hi: 2, N: 4}
	require.NoError(t, grid.Validate())
	require.Equal(t, 0.5, grid.Width())
	if diff := cmp.Diff([]float64{0.25, 0.75, 1.25, 1.75}, grid.Centers()); diff != "" {
		t.Errorf("Unexpected bin centers (-want +got):\n%s", diff)
	}

	require.Error(t, BinGrid{Lo: 0, Hi: 1, N: 0}.Validate())
	require.Error(t, BinGrid{Lo: 1, Hi: 1, N: 4}.Validate())
}

func TestParseArtifact(t *testing.T) {
	t.Run("Valid artifact", func(t *testing.T) {
		data := []byte(`{"bins":{"lo":0,"hi":1,"n":3},"pdfs":[[0.2,0.3,0.5],[1,0,0]]}`)
		artifact, err := ParseArtifact(data)
		require.NoError(t, err)
		require.Len(t, artifact.PDFs, 2)
		obs, err := artifact.ObservationSet()
		require.NoError(t, err)
		require.Equal(t, 2, obs.Nobs())
		require.Equal(t, 3, obs.Ndim())
	})
	t.Run("Bin count mismatch", func(t *testing.T) {
		data := []byte(`{"bins":{"lo":0,"hi":1,"n":4},"pdfs":[[0.2,0.3,0.5]]}`)
		_, err := ParseArtifact(data)
		require.Error(t, err)
	})
	t.Run("No pdfs", func(t *testing.T) {
		_, err := ParseArtifact([]byte(`{"bins":{"lo":0,"hi":1,"n":3},"pdfs":[]}`))
		require.Error(t, err)
	})
	t.Run("Not JSON", func(t *testing.T) {
		_, err := ParseArtifact([]byte("not json"))
		require.Error(t, err)
	})
}
