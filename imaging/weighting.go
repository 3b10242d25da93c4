package imaging

import (
	"fmt"
	"math"

	"github.com/radiokit/aperture/skyimage"
	"github.com/radiokit/aperture/visibility"
)

// Weighting scheme names.
const (
	WeightNatural = "natural"
	WeightUniform = "uniform"
)

// Weight computes imaging weights for vis in place, using the uv geometry
// implied by the model image. Natural weighting copies the sample weights
// unchanged. Uniform weighting divides each sample's weight by the summed
// weight of its uv cell, flattening the effective uv coverage at the cost
// of sensitivity. Returns the per-(row, channel) cell density that was
// divided out; natural weighting returns nil.
func Weight(vis *visibility.Visibility, model *skyimage.Image, scheme string, p Params) ([][]float64, error) {
	p = p.fillDefaults()

	switch scheme {
	case WeightNatural:
		for r := range vis.ImagingWeight {
			for c := range vis.ImagingWeight[r] {
				copy(vis.ImagingWeight[r][c], vis.Weight[r][c])
			}
		}
		return nil, nil
	case WeightUniform:
	default:
		return nil, &ConfigurationError{
			Context:  scheme,
			Problems: []string{fmt.Sprintf("unknown weighting scheme %q", scheme)},
		}
	}

	nchan, npol, npixel, _ := model.Shape()
	if nchan != vis.NumChan() || npol != vis.NumPol() {
		return nil, &ConfigurationError{
			Context: scheme,
			Problems: []string{fmt.Sprintf("model shape (%d chan, %d pol) does not match visibility (%d chan, %d pol)",
				nchan, npol, vis.NumChan(), vis.NumPol())},
		}
	}

	padN := p.Padding * npixel
	cellUV := 1.0 / (float64(padN) * model.Cellsize)
	cx := float64(padN / 2)

	// Nearest-cell weight density, per channel and polarisation.
	grid := make([][][][]float64, nchan)
	for c := 0; c < nchan; c++ {
		grid[c] = make([][][]float64, npol)
		for pp := 0; pp < npol; pp++ {
			grid[c][pp] = make([][]float64, padN)
			for y := range grid[c][pp] {
				grid[c][pp][y] = make([]float64, padN)
			}
		}
	}

	cellOf := func(r, c int) (ix, iy int, ok bool) {
		uvw := vis.UVWLambda(r, c)
		ix = int(math.Round(cx + uvw[0]/cellUV))
		iy = int(math.Round(cx + uvw[1]/cellUV))
		return ix, iy, ix >= 0 && ix < padN && iy >= 0 && iy < padN
	}

	for r := 0; r < vis.NumRows(); r++ {
		for c := 0; c < nchan; c++ {
			ix, iy, ok := cellOf(r, c)
			if !ok {
				continue
			}
			for pp := 0; pp < npol; pp++ {
				if vis.Flag[r][c][pp] {
					continue
				}
				grid[c][pp][iy][ix] += vis.Weight[r][c][pp]
			}
		}
	}

	density := make([][]float64, vis.NumRows())
	for r := 0; r < vis.NumRows(); r++ {
		density[r] = make([]float64, nchan)
		for c := 0; c < nchan; c++ {
			ix, iy, ok := cellOf(r, c)
			if !ok {
				for pp := 0; pp < npol; pp++ {
					vis.ImagingWeight[r][c][pp] = vis.Weight[r][c][pp]
				}
				continue
			}
			// Record the first polarisation's density as representative.
			density[r][c] = grid[c][0][iy][ix]
			for pp := 0; pp < npol; pp++ {
				d := grid[c][pp][iy][ix]
				if d > 0.0 {
					vis.ImagingWeight[r][c][pp] = vis.Weight[r][c][pp] / d
				} else {
					vis.ImagingWeight[r][c][pp] = vis.Weight[r][c][pp]
				}
			}
		}
	}
	return density, nil
}
