package gridder

import (
	"math"

	"github.com/radiokit/aperture/geometry"
	"github.com/radiokit/aperture/visibility"
)

// UVGrid is the Fourier-domain reciprocal of an image: one complex plane per
// (channel, polarisation), with a parallel real plane accumulating gridded
// weights. CellUV is the cell size in wavelengths; the plane centre is the
// uv origin. Grids are transient, produced and consumed within one
// predict/invert call.
type UVGrid struct {
	Data    [][][][]complex128 // [chan][pol][v][u]
	Weights [][][][]float64
	NChan   int
	NPol    int
	NY, NX  int
	CellUV  float64
}

// NewUVGrid allocates a zeroed grid.
func NewUVGrid(nchan, npol, ny, nx int, cellUV float64) *UVGrid {
	g := &UVGrid{NChan: nchan, NPol: npol, NY: ny, NX: nx, CellUV: cellUV}
	g.Data = make([][][][]complex128, nchan)
	g.Weights = make([][][][]float64, nchan)
	for c := 0; c < nchan; c++ {
		g.Data[c] = make([][][]complex128, npol)
		g.Weights[c] = make([][][]float64, npol)
		for p := 0; p < npol; p++ {
			g.Data[c][p] = MakePlane(ny, nx)
			g.Weights[c][p] = MakeRealPlane(ny, nx)
		}
	}
	return g
}

// GridStats counts the fate of samples during one grid or degrid pass.
// Samples whose kernel support would fall outside the grid are dropped, not
// errors; the count lets callers notice when edge loss stops being
// occasional.
type GridStats struct {
	Gridded int
	Dropped int
}

// Add accumulates another pass's counts.
func (s *GridStats) Add(o GridStats) {
	s.Gridded += o.Gridded
	s.Dropped += o.Dropped
}

// Grid accumulates the selected visibility rows onto the grid. Each
// unflagged, non-zero-weight sample contributes value*weight*tap to the data
// plane and weight*tap to the weight plane over its kernel neighbourhood,
// using the conjugate kernel for its w plane. With dopsf set the sample
// amplitude is replaced by unity (weight preserved), producing the
// point-spread function. wOffsetMetres is subtracted from each sample's w
// before kernel selection, so a w-stacked caller grids each bin against the
// residual w only.
//
// Returns the per-(channel, polarisation) sum of gridded weights.
func Grid(g *UVGrid, vis *visibility.Visibility, rows []int, cache *KernelCache,
	dopsf bool, wOffsetMetres float64) ([][]float64, GridStats, error) {

	if cache.Support > g.NX || cache.Support > g.NY {
		return nil, GridStats{}, ErrSupportTooLarge
	}

	sumwt := make([][]float64, g.NChan)
	for c := range sumwt {
		sumwt[c] = make([]float64, g.NPol)
	}
	var stats GridStats

	cx := float64(g.NX / 2)
	cy := float64(g.NY / 2)

	for _, r := range rows {
		for c := 0; c < g.NChan; c++ {
			uvw := vis.UVWLambda(r, c)
			x := cx + uvw[0]/g.CellUV
			y := cy + uvw[1]/g.CellUV
			ix := int(math.Round(x))
			iy := int(math.Round(y))

			wResidual := uvw[2] - wOffsetMetres*vis.Frequency[c]/geometry.SpeedOfLight
			k := cache.Lookup(wResidual)
			half := k.halfSupport()
			if ix-half < 0 || ix+half >= g.NX || iy-half < 0 || iy+half >= g.NY {
				stats.Dropped++
				continue
			}
			stats.Gridded++

			taps := k.Taps[k.offsetIndex(y-float64(iy))][k.offsetIndex(x-float64(ix))]
			for p := 0; p < g.NPol; p++ {
				wt := vis.FlaggedWeight(r, c, p)
				if wt == 0.0 {
					continue
				}
				value := vis.Vis[r][c][p]
				if dopsf {
					// PSF: unit amplitude, weight preserved.
					value = complex(1, 0)
				}
				value *= complex(wt, 0)
				for j := 0; j < k.Support; j++ {
					gy := iy + j - half
					for i := 0; i < k.Support; i++ {
						gx := ix + i - half
						tap := taps[j][i]
						ctap := complex(real(tap), -imag(tap))
						g.Data[c][p][gy][gx] += value * ctap
						g.Weights[c][p][gy][gx] += wt * real(tap)
					}
				}
				sumwt[c][p] += wt
			}
		}
	}
	return sumwt, stats, nil
}

// Degrid resamples the grid back onto the uvw positions of the selected
// rows, returning predicted values indexed [row-in-selection][chan][pol].
// All rows are predicted, flagged or not, so prediction can restore flagged
// samples in place. Rows whose support falls outside the grid predict zero
// and are counted as dropped.
func Degrid(g *UVGrid, vis *visibility.Visibility, rows []int, cache *KernelCache,
	wOffsetMetres float64) ([][][]complex128, GridStats, error) {

	if cache.Support > g.NX || cache.Support > g.NY {
		return nil, GridStats{}, ErrSupportTooLarge
	}

	out := make([][][]complex128, len(rows))
	var stats GridStats

	cx := float64(g.NX / 2)
	cy := float64(g.NY / 2)

	for ri, r := range rows {
		out[ri] = make([][]complex128, g.NChan)
		for c := 0; c < g.NChan; c++ {
			out[ri][c] = make([]complex128, g.NPol)
			uvw := vis.UVWLambda(r, c)
			x := cx + uvw[0]/g.CellUV
			y := cy + uvw[1]/g.CellUV
			ix := int(math.Round(x))
			iy := int(math.Round(y))

			wResidual := uvw[2] - wOffsetMetres*vis.Frequency[c]/geometry.SpeedOfLight
			k := cache.Lookup(wResidual)
			half := k.halfSupport()
			if ix-half < 0 || ix+half >= g.NX || iy-half < 0 || iy+half >= g.NY {
				stats.Dropped++
				continue
			}
			stats.Gridded++

			taps := k.Taps[k.offsetIndex(y-float64(iy))][k.offsetIndex(x-float64(ix))]
			for p := 0; p < g.NPol; p++ {
				var acc complex128
				for j := 0; j < k.Support; j++ {
					gy := iy + j - half
					for i := 0; i < k.Support; i++ {
						gx := ix + i - half
						acc += taps[j][i] * g.Data[c][p][gy][gx]
					}
				}
				out[ri][c][p] = acc
			}
		}
	}
	return out, stats, nil
}
