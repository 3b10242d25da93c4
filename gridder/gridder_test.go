package gridder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/radiokit/aperture/geometry"
	"github.com/radiokit/aperture/gridder"
	"github.com/radiokit/aperture/visibility"
)

// sampleVis builds a bare visibility table with one sample per uvw position,
// unit weight, frequency chosen so metres equal wavelengths.
func sampleVis(uvws [][3]float64) *visibility.Visibility {
	n := len(uvws)
	v := &visibility.Visibility{
		PolFrame:         visibility.StokesI,
		Frequency:        []float64{geometry.SpeedOfLight},
		ChannelBandwidth: []float64{1.0},
		Time:             make([]float64, n),
		Antenna1:         make([]int, n),
		Antenna2:         make([]int, n),
		UVW:              append([][3]float64(nil), uvws...),
	}
	v.Vis = make([][][]complex128, n)
	v.Weight = make([][][]float64, n)
	v.ImagingWeight = make([][][]float64, n)
	v.Flag = make([][][]bool, n)
	for r := 0; r < n; r++ {
		v.Vis[r] = [][]complex128{{complex(1, 0)}}
		v.Weight[r] = [][]float64{{1.0}}
		v.ImagingWeight[r] = [][]float64{{1.0}}
		v.Flag[r] = [][]bool{{false}}
	}
	return v
}

func newCache(t *testing.T) *gridder.KernelCache {
	t.Helper()
	c, err := gridder.NewKernelCache(3, 8, 0.0, 0.01)
	require.NoError(t, err)
	return c
}

func allRows(v *visibility.Visibility) []int {
	rows := make([]int, v.NumRows())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestGridAccumulatesSumOfWeights(t *testing.T) {
	vis := sampleVis([][3]float64{{0, 0, 0}, {5, -3, 0}, {-7, 2, 0}})
	g := gridder.NewUVGrid(1, 1, 64, 64, 1.0)

	sumwt, stats, err := gridder.Grid(g, vis, allRows(vis), newCache(t), false, 0.0)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Gridded)
	require.Equal(t, 0, stats.Dropped)
	require.InDelta(t, 3.0, sumwt[0][0], 1e-12)

	// The taps of each sample sum to one, so the grid total matches the
	// weighted sample total.
	var total complex128
	for _, row := range g.Data[0][0] {
		for _, v := range row {
			total += v
		}
	}
	require.InDelta(t, 3.0, real(total), 1e-12)
	require.InDelta(t, 0.0, imag(total), 1e-12)
}

func TestGridWeightPlaneMatchesSumOfWeights(t *testing.T) {
	vis := sampleVis([][3]float64{{0, 0, 0}, {5, -3, 0}, {-7, 2, 0}})
	vis.ImagingWeight[1][0][0] = 2.5
	vis.ImagingWeight[2][0][0] = 0.5
	g := gridder.NewUVGrid(1, 1, 64, 64, 1.0)

	sumwt, _, err := gridder.Grid(g, vis, allRows(vis), newCache(t), false, 0.0)
	require.NoError(t, err)

	// Each sample spreads its weight over taps summing to one, so the
	// weight plane totals the same sum the scalar accumulator reports.
	var total float64
	for _, row := range g.Weights[0][0] {
		for _, w := range row {
			total += w
		}
	}
	require.InDelta(t, sumwt[0][0], total, 1e-12)
	require.InDelta(t, 4.0, total, 1e-12)
}

func TestGridSkipsFlaggedSamples(t *testing.T) {
	vis := sampleVis([][3]float64{{0, 0, 0}, {5, 5, 0}})
	vis.Flag[1][0][0] = true
	g := gridder.NewUVGrid(1, 1, 64, 64, 1.0)

	sumwt, stats, err := gridder.Grid(g, vis, allRows(vis), newCache(t), false, 0.0)
	require.NoError(t, err)
	// The flagged row is still visited and counted as gridded, but its
	// weight contributes nothing.
	require.Equal(t, 2, stats.Gridded)
	require.InDelta(t, 1.0, sumwt[0][0], 1e-12)
}

func TestGridDropsOutOfBounds(t *testing.T) {
	vis := sampleVis([][3]float64{{0, 0, 0}, {500, 0, 0}})
	g := gridder.NewUVGrid(1, 1, 64, 64, 1.0)

	sumwt, stats, err := gridder.Grid(g, vis, allRows(vis), newCache(t), false, 0.0)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Gridded)
	require.Equal(t, 1, stats.Dropped)
	require.InDelta(t, 1.0, sumwt[0][0], 1e-12)
}

func TestGridPSFIgnoresAmplitude(t *testing.T) {
	vis := sampleVis([][3]float64{{3, 1, 0}})
	vis.Vis[0][0][0] = complex(123.0, -45.0)
	g := gridder.NewUVGrid(1, 1, 64, 64, 1.0)

	sumwt, _, err := gridder.Grid(g, vis, allRows(vis), newCache(t), true, 0.0)
	require.NoError(t, err)
	require.InDelta(t, 1.0, sumwt[0][0], 1e-12)

	var total complex128
	for _, row := range g.Data[0][0] {
		for _, v := range row {
			total += v
		}
	}
	require.InDelta(t, 1.0, real(total), 1e-12)
}

func TestDegridFlatGridReturnsUnity(t *testing.T) {
	// A flat unit grid is the transform of a centre point source; every
	// sample must degrid to exactly one.
	vis := sampleVis([][3]float64{{0, 0, 0}, {5.3, -2.7, 0}, {-11.1, 8.4, 0}})
	g := gridder.NewUVGrid(1, 1, 64, 64, 1.0)
	for y := range g.Data[0][0] {
		for x := range g.Data[0][0][y] {
			g.Data[0][0][y][x] = complex(1, 0)
		}
	}

	vals, stats, err := gridder.Degrid(g, vis, allRows(vis), newCache(t), 0.0)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Gridded)
	require.Len(t, vals, 3)
	for _, rowVals := range vals {
		require.InDelta(t, 1.0, real(rowVals[0][0]), 1e-12)
		require.InDelta(t, 0.0, imag(rowVals[0][0]), 1e-12)
	}
}

func TestDegridOutOfBoundsPredictsZero(t *testing.T) {
	vis := sampleVis([][3]float64{{500, 0, 0}})
	g := gridder.NewUVGrid(1, 1, 64, 64, 1.0)

	vals, stats, err := gridder.Degrid(g, vis, allRows(vis), newCache(t), 0.0)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Dropped)
	require.Equal(t, complex(0, 0), vals[0][0][0])
}

func TestGridSupportTooLarge(t *testing.T) {
	vis := sampleVis([][3]float64{{0, 0, 0}})
	g := gridder.NewUVGrid(1, 1, 2, 2, 1.0)

	_, _, err := gridder.Grid(g, vis, allRows(vis), newCache(t), false, 0.0)
	require.ErrorIs(t, err, gridder.ErrSupportTooLarge)
}
