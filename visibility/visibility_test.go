package visibility_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radiokit/aperture/geometry"
	"github.com/radiokit/aperture/visibility"
)

var testCentre = geometry.Direction{RA: 0.0, Dec: -35.0 * math.Pi / 180.0}

func makeVis(t *testing.T) *visibility.Visibility {
	t.Helper()
	config, err := visibility.NamedConfiguration("RING5")
	require.NoError(t, err)
	vis, err := visibility.New(config,
		geometry.Linspace(-math.Pi/4, math.Pi/4, 11),
		[]float64{1.0e8}, []float64{1.0e7},
		testCentre, 1.0, visibility.StokesI)
	require.NoError(t, err)
	return vis
}

func TestNewShape(t *testing.T) {
	vis := makeVis(t)
	// 5 antennas: 15 pairs including autocorrelations, 11 hour angles.
	require.Equal(t, 11*15, vis.NumRows())
	require.Equal(t, 1, vis.NumChan())
	require.Equal(t, 1, vis.NumPol())
}

func TestNewRowOrderingTimeMajor(t *testing.T) {
	vis := makeVis(t)
	pairs := vis.Config.Baselines()
	n := len(pairs)
	for r := 0; r < vis.NumRows(); r++ {
		require.Equal(t, pairs[r%n][0], vis.Antenna1[r])
		require.Equal(t, pairs[r%n][1], vis.Antenna2[r])
		if r >= n {
			require.GreaterOrEqual(t, vis.Time[r], vis.Time[r-n])
		}
	}
}

func TestAutocorrelationsHaveZeroBaseline(t *testing.T) {
	vis := makeVis(t)
	for r := 0; r < vis.NumRows(); r++ {
		if vis.Antenna1[r] == vis.Antenna2[r] {
			require.Equal(t, [3]float64{0, 0, 0}, vis.UVW[r])
		}
	}
}

func TestNewRejectsBadAxes(t *testing.T) {
	config, _ := visibility.NamedConfiguration("RING5")
	_, err := visibility.New(config, []float64{0.0}, nil, nil, testCentre, 1.0, visibility.StokesI)
	require.ErrorIs(t, err, visibility.ErrNoChannels)

	_, err = visibility.New(config, []float64{0.0}, []float64{1.0e8}, []float64{1.0e7, 1.0e7},
		testCentre, 1.0, visibility.StokesI)
	require.ErrorIs(t, err, visibility.ErrBandwidthMismatch)
}

func TestFlaggedWeight(t *testing.T) {
	vis := makeVis(t)
	require.Equal(t, 1.0, vis.FlaggedWeight(0, 0, 0))
	vis.Flag[0][0][0] = true
	require.Equal(t, 0.0, vis.FlaggedWeight(0, 0, 0))
}

func TestCopyShapePreservesOrderingAndZeroesVis(t *testing.T) {
	vis := makeVis(t)
	vis.Vis[3][0][0] = complex(2.5, -1.0)
	out := vis.CopyShape()
	require.Equal(t, vis.Time, out.Time)
	require.Equal(t, vis.Antenna1, out.Antenna1)
	require.Equal(t, vis.Antenna2, out.Antenna2)
	require.Equal(t, vis.UVW, out.UVW)
	for r := range out.Vis {
		require.Equal(t, complex(0, 0), out.Vis[r][0][0])
	}
	// Copies must not alias the source.
	out.Weight[0][0][0] = 7.0
	require.Equal(t, 1.0, vis.Weight[0][0][0])
}

func TestPredictComponentsAtPhaseCentre(t *testing.T) {
	vis := makeVis(t)
	comp := &visibility.Component{Direction: testCentre, Flux: [][]float64{{2.0}}}
	require.NoError(t, visibility.PredictComponents(vis, []*visibility.Component{comp}))
	// A source at the phase centre has unit phasor everywhere.
	for r := 0; r < vis.NumRows(); r++ {
		require.InDelta(t, 2.0, real(vis.Vis[r][0][0]), 1e-12)
		require.InDelta(t, 0.0, imag(vis.Vis[r][0][0]), 1e-12)
	}
}

func TestSumAtDirectionRecoversFlux(t *testing.T) {
	vis := makeVis(t)
	dir := geometry.LMNToDirection(0.005, -0.003, testCentre)
	comp := &visibility.Component{Direction: dir, Flux: [][]float64{{1.5}}}
	require.NoError(t, visibility.PredictComponents(vis, []*visibility.Component{comp}))

	flux, sumwt := visibility.SumAtDirection(vis, dir)
	require.InDelta(t, 1.5, flux[0][0], 1e-9)
	require.InDelta(t, float64(vis.NumRows()), sumwt[0][0], 1e-12)
}

func TestSubtract(t *testing.T) {
	vis := makeVis(t)
	comp := &visibility.Component{Direction: testCentre, Flux: [][]float64{{1.0}}}
	require.NoError(t, visibility.PredictComponents(vis, []*visibility.Component{comp}))

	diff, err := vis.Subtract(vis)
	require.NoError(t, err)
	for r := 0; r < diff.NumRows(); r++ {
		require.Equal(t, complex(0, 0), diff.Vis[r][0][0])
	}
}
