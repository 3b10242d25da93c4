package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radiokit/aperture/geometry"
)

func TestDirectionToLMNAtCentre(t *testing.T) {
	centre := geometry.Direction{RA: 0.5, Dec: -0.6}
	l, m, n := geometry.DirectionToLMN(centre, centre)
	require.InDelta(t, 0.0, l, 1e-15)
	require.InDelta(t, 0.0, m, 1e-15)
	require.InDelta(t, 1.0, n, 1e-15)
}

func TestLMNRoundTrip(t *testing.T) {
	centre := geometry.Direction{RA: 1.0, Dec: -35.0 * math.Pi / 180.0}
	for _, lm := range [][2]float64{{0.0, 0.0}, {0.01, -0.02}, {-0.05, 0.03}} {
		d := geometry.LMNToDirection(lm[0], lm[1], centre)
		l, m, _ := geometry.DirectionToLMN(d, centre)
		require.InDelta(t, lm[0], l, 1e-12)
		require.InDelta(t, lm[1], m, 1e-12)
	}
}

func TestBaselineToUVWZenith(t *testing.T) {
	// At ha=0 and dec=pi/2 the baseline plane coincides with the uv plane.
	uvw := geometry.BaselineToUVW([3]float64{100.0, 50.0, 0.0}, 0.0, math.Pi/2)
	require.InDelta(t, 50.0, uvw[0], 1e-12)
	require.InDelta(t, -100.0, uvw[1], 1e-12)
	require.InDelta(t, 0.0, uvw[2], 1e-12)
}

func TestBaselineLengthPreserved(t *testing.T) {
	bl := [3]float64{120.0, -40.0, 25.0}
	want := math.Sqrt(bl[0]*bl[0] + bl[1]*bl[1] + bl[2]*bl[2])
	for _, ha := range []float64{-0.7, 0.0, 0.4} {
		uvw := geometry.BaselineToUVW(bl, ha, -0.5)
		got := math.Sqrt(uvw[0]*uvw[0] + uvw[1]*uvw[1] + uvw[2]*uvw[2])
		require.InDelta(t, want, got, 1e-9)
	}
}

func TestMetresToWavelengths(t *testing.T) {
	uvw := geometry.MetresToWavelengths([3]float64{geometry.SpeedOfLight, 0.0, 0.0}, 2.0)
	require.InDelta(t, 2.0, uvw[0], 1e-12)
}

func TestLinspace(t *testing.T) {
	xs := geometry.Linspace(-1.0, 1.0, 5)
	require.Len(t, xs, 5)
	require.InDelta(t, -1.0, xs[0], 1e-15)
	require.InDelta(t, 0.0, xs[2], 1e-15)
	require.InDelta(t, 1.0, xs[4], 1e-15)
}
