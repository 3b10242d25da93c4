package gridder_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radiokit/aperture/gridder"
)

func randomPlane(n int, seed int64) [][]complex128 {
	rng := rand.New(rand.NewSource(seed))
	x := gridder.MakePlane(n, n)
	for y := range x {
		for i := range x[y] {
			x[y][i] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
	}
	return x
}

func TestShiftsAreInverse(t *testing.T) {
	for _, n := range []int{8, 9} {
		x := randomPlane(n, 1)
		y := gridder.FFTShift(gridder.IFFTShift(x))
		for r := range x {
			require.Equal(t, x[r], y[r])
		}
		y = gridder.IFFTShift(gridder.FFTShift(x))
		for r := range x {
			require.Equal(t, x[r], y[r])
		}
	}
}

func TestRoundTripScalesByArea(t *testing.T) {
	const n = 16
	x := randomPlane(n, 2)
	orig := randomPlane(n, 2)

	grid := gridder.ImageToGrid(x)
	back := gridder.GridToImage(grid)

	// The transforms are unnormalized, so forward then inverse multiplies
	// by the number of pixels.
	scale := float64(n * n)
	for y := 0; y < n; y++ {
		for i := 0; i < n; i++ {
			require.InDelta(t, scale*real(orig[y][i]), real(back[y][i]), 1e-9)
			require.InDelta(t, scale*imag(orig[y][i]), imag(back[y][i]), 1e-9)
		}
	}
}

func TestCentreDeltaTransformsFlat(t *testing.T) {
	const n = 32
	x := gridder.MakePlane(n, n)
	x[n/2][n/2] = 1.0

	grid := gridder.ImageToGrid(x)
	for y := 0; y < n; y++ {
		for i := 0; i < n; i++ {
			require.InDelta(t, 1.0, real(grid[y][i]), 1e-12)
			require.InDelta(t, 0.0, imag(grid[y][i]), 1e-12)
		}
	}
}

func TestGridCorrectionCentreIsUnity(t *testing.T) {
	corr := gridder.GridCorrection(64)
	require.Len(t, corr, 64)
	require.InDelta(t, 1.0, corr[32], 1e-12)
	// The correction grows towards the edges where the taper falls off.
	require.Greater(t, corr[1], corr[16])
	require.Greater(t, corr[16], corr[32])
}
