package fitting_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radiokit/aperture/fitting"
	"github.com/radiokit/aperture/geometry"
	"github.com/radiokit/aperture/visibility"
)

var fitCentre = geometry.Direction{RA: 0.0, Dec: -35.0 * math.Pi / 180.0}

func observe(t *testing.T, flux, l, m float64) *visibility.Visibility {
	t.Helper()
	config, err := visibility.NamedConfiguration("RING5")
	require.NoError(t, err)
	vis, err := visibility.New(config,
		geometry.Linspace(-math.Pi/4, math.Pi/4, 19),
		[]float64{1.0e8}, []float64{1.0e7},
		fitCentre, 1.0, visibility.StokesI)
	require.NoError(t, err)

	comp := &visibility.Component{
		Direction: geometry.LMNToDirection(l, m, fitCentre),
		Flux:      [][]float64{{flux}},
	}
	require.NoError(t, visibility.PredictComponents(vis, []*visibility.Component{comp}))
	return vis
}

func TestFitRecoversOffsetSource(t *testing.T) {
	const (
		flux = 1.5
		l    = 1.0e-3
		m    = -7.0e-4
	)
	vis := observe(t, flux, l, m)

	// Start at the phase centre with the wrong flux.
	initial := &visibility.Component{Direction: fitCentre, Flux: [][]float64{{1.0}}}
	res, err := fitting.FitComponent(vis, initial, fitting.Options{MaxIterations: 100})
	require.NoError(t, err)

	require.InDelta(t, flux, res.Component.Flux[0][0], 1e-3)
	gotL, gotM, _ := geometry.DirectionToLMN(res.Component.Direction, fitCentre)
	require.InDelta(t, l, gotL, 1e-6)
	require.InDelta(t, m, gotM, 1e-6)
	require.Less(t, res.Cost, 1e-3)
}

func TestFitAtCentreIsExact(t *testing.T) {
	vis := observe(t, 2.0, 0.0, 0.0)
	initial := &visibility.Component{Direction: fitCentre, Flux: [][]float64{{1.0}}}

	res, err := fitting.FitComponent(vis, initial, fitting.Options{})
	require.NoError(t, err)
	require.InDelta(t, 2.0, res.Component.Flux[0][0], 1e-6)
}

func TestFitGradientFree(t *testing.T) {
	vis := observe(t, 1.0, 5.0e-4, 5.0e-4)
	initial := &visibility.Component{Direction: fitCentre, Flux: [][]float64{{0.8}}}

	res, err := fitting.FitComponent(vis, initial, fitting.Options{
		GradientFree:  true,
		MaxIterations: 200,
	})
	require.NoError(t, err)
	require.InDelta(t, 1.0, res.Component.Flux[0][0], 1e-2)
}

func TestFitRejectsMultiPol(t *testing.T) {
	config, err := visibility.NamedConfiguration("RING5")
	require.NoError(t, err)
	vis, err := visibility.New(config, []float64{0.0},
		[]float64{1.0e8}, []float64{1.0e7},
		fitCentre, 1.0, visibility.StokesIQUV)
	require.NoError(t, err)

	initial := &visibility.Component{Direction: fitCentre, Flux: [][]float64{{1, 0, 0, 0}}}
	_, err = fitting.FitComponent(vis, initial, fitting.Options{})
	require.ErrorIs(t, err, fitting.ErrStokesIOnly)
}
