// Package imaging dispatches visibility prediction and image inversion
// over composable partition strategies. A context tag selects how the work
// is cut up: "2d" transforms everything at once, "facets" splits the image,
// "timeslice" and "wstack" split the visibility rows, and the combined tags
// apply both axes. Every context produces the same answer for a flat sky;
// the partitioned ones trade transform size against approximation of the
// w term.
package imaging

import (
	"fmt"
	"math"

	"github.com/radiokit/aperture/geometry"
	"github.com/radiokit/aperture/gridder"
	"github.com/radiokit/aperture/skyimage"
	"github.com/radiokit/aperture/visibility"
)

// PredictContext fills a copy of vis with model visibilities for the given
// model image, partitioned according to the context tag. The returned
// visibility shares coordinates, weights and flags with vis but carries the
// predicted values; row ordering is preserved exactly. Facet contributions
// are summed per row, so the facet contexts agree with "2d" up to floating
// point.
func PredictContext(vis *visibility.Visibility, model *skyimage.Image,
	context string, p Params) (*visibility.Visibility, gridder.GridStats, error) {

	p = p.fillDefaults()
	if err := validate(vis, model, context, p); err != nil {
		return nil, gridder.GridStats{}, err
	}

	nchan, npol, npixel, _ := model.Shape()
	padN := p.Padding * npixel
	cellUV := 1.0 / (float64(padN) * model.Cellsize)
	corr := gridder.GridCorrection(padN)

	cache, err := newCache(p, padN, model.Cellsize)
	if err != nil {
		return nil, gridder.GridStats{}, err
	}

	out := vis.CopyShape()
	var stats gridder.GridStats

	for _, part := range buildPartitions(vis, model, context, p) {
		grid := gridder.NewUVGrid(nchan, npol, padN, padN, cellUV)
		for c := 0; c < nchan; c++ {
			wl := part.wCentre * vis.Frequency[c] / geometry.SpeedOfLight
			for pp := 0; pp < npol; pp++ {
				plane := embedFacet(model, part.facet, c, pp, padN, corr, wl)
				grid.Data[c][pp] = gridder.ImageToGrid(plane)
			}
		}

		vals, s, err := gridder.Degrid(grid, vis, part.rows, cache, part.wCentre)
		if err != nil {
			return nil, gridder.GridStats{}, err
		}
		if len(vals) != len(part.rows) {
			return nil, gridder.GridStats{}, &AssemblyError{
				Stage:  "predict",
				Detail: fmt.Sprintf("degrid returned %d rows for a partition of %d", len(vals), len(part.rows)),
			}
		}
		if part.facetID == 0 {
			stats.Add(s)
		}

		for ri, r := range part.rows {
			for c := 0; c < nchan; c++ {
				for pp := 0; pp < npol; pp++ {
					out.Vis[r][c][pp] += vals[ri][c][pp]
				}
			}
		}
	}
	return out, stats, nil
}

// InvertContext transforms vis into a dirty image (or, with dopsf, the
// point-spread function) shaped like model, partitioned according to the
// context tag. It returns the image and the per-(channel, polarisation) sum
// of gridded weights. With normalize set each slice is divided by its sum of
// weights; slices whose sum is zero are left at zero and flagged in
// SliceFlags. The sum of weights is accumulated once per row group, never
// per facet.
func InvertContext(vis *visibility.Visibility, model *skyimage.Image,
	dopsf, normalize bool, context string, p Params) (*skyimage.Image, [][]float64, gridder.GridStats, error) {

	p = p.fillDefaults()
	if err := validate(vis, model, context, p); err != nil {
		return nil, nil, gridder.GridStats{}, err
	}

	nchan, npol, npixel, _ := model.Shape()
	padN := p.Padding * npixel
	off := padN/2 - npixel/2
	cellUV := 1.0 / (float64(padN) * model.Cellsize)
	corr := gridder.GridCorrection(padN)

	cache, err := newCache(p, padN, model.Cellsize)
	if err != nil {
		return nil, nil, gridder.GridStats{}, err
	}

	out := model.EmptyLike()
	sumwt := make([][]float64, nchan)
	for c := range sumwt {
		sumwt[c] = make([]float64, npol)
	}
	var stats gridder.GridStats

	// Facets of one group share the gridded rows; transform the full frame
	// once per group and crop per facet.
	curGroup := -1
	var frame [][][][]float64 // [chan][pol][y][x], padded

	for _, part := range buildPartitions(vis, model, context, p) {
		if part.group != curGroup {
			grid := gridder.NewUVGrid(nchan, npol, padN, padN, cellUV)
			wt, s, err := gridder.Grid(grid, vis, part.rows, cache, dopsf, part.wCentre)
			if err != nil {
				return nil, nil, gridder.GridStats{}, err
			}
			stats.Add(s)
			for c := 0; c < nchan; c++ {
				for pp := 0; pp < npol; pp++ {
					sumwt[c][pp] += wt[c][pp]
				}
			}

			frame = make([][][][]float64, nchan)
			for c := 0; c < nchan; c++ {
				wl := part.wCentre * vis.Frequency[c] / geometry.SpeedOfLight
				frame[c] = make([][][]float64, npol)
				for pp := 0; pp < npol; pp++ {
					img := gridder.GridToImage(grid.Data[c][pp])
					frame[c][pp] = correctFrame(img, corr, padN, model.Cellsize, wl)
				}
			}
			curGroup = part.group
		}

		fc := part.facet
		for c := 0; c < nchan; c++ {
			for pp := 0; pp < npol; pp++ {
				for y := 0; y < fc.ny; y++ {
					src := frame[c][pp][off+fc.y0+y]
					dst := out.Data[c][pp][fc.y0+y]
					for x := 0; x < fc.nx; x++ {
						dst[fc.x0+x] += src[off+fc.x0+x]
					}
				}
			}
		}
	}

	if normalize {
		for c := 0; c < nchan; c++ {
			for pp := 0; pp < npol; pp++ {
				if sumwt[c][pp] <= 0.0 {
					out.SliceFlags[c][pp] = true
					continue
				}
				scale := 1.0 / sumwt[c][pp]
				for _, row := range out.Data[c][pp] {
					for x := range row {
						row[x] *= scale
					}
				}
			}
		}
	}
	return out, sumwt, stats, nil
}

// newCache builds the kernel cache for one context invocation: a plain
// anti-aliasing kernel for "2d", bucketed w-projection kernels otherwise.
func newCache(p Params, padN int, cellsize float64) (*gridder.KernelCache, error) {
	wstep := 0.0
	if p.Kernel == KernelWProjection {
		wstep = p.WStep
	}
	return gridder.NewKernelCache(p.Support, p.Oversampling, wstep, float64(padN)*cellsize)
}

// embedFacet places one facet of the model slice into a zeroed padded
// complex frame, applying the grid correction and, when wLambda is nonzero,
// the w phase screen. The rest of the frame stays zero, so summing the
// predictions of all facets reproduces the full-image prediction.
func embedFacet(model *skyimage.Image, fc facetExtent, c, p, padN int,
	corr []float64, wLambda float64) [][]complex128 {

	_, _, npixel, _ := model.Shape()
	off := padN/2 - npixel/2
	centre := padN / 2
	cellsize := model.Cellsize

	plane := gridder.MakePlane(padN, padN)
	for y := fc.y0; y < fc.y0+fc.ny; y++ {
		gy := off + y
		m := float64(gy-centre) * cellsize
		for x := fc.x0; x < fc.x0+fc.nx; x++ {
			v := model.Data[c][p][y][x]
			if v == 0.0 {
				continue
			}
			gx := off + x
			v *= corr[gy] * corr[gx]
			if wLambda == 0.0 {
				plane[gy][gx] = complex(v, 0)
				continue
			}
			l := float64(gx-centre) * cellsize
			plane[gy][gx] = complex(v, 0) * wScreen(l, m, wLambda, false)
		}
	}
	return plane
}

// correctFrame converts a transformed grid plane into a corrected real
// frame: the conjugate w screen undoes the phase applied at prediction time
// and the grid correction undoes the anti-aliasing taper.
func correctFrame(img [][]complex128, corr []float64, padN int,
	cellsize float64, wLambda float64) [][]float64 {

	centre := padN / 2
	out := make([][]float64, padN)
	for y := 0; y < padN; y++ {
		out[y] = make([]float64, padN)
		m := float64(y-centre) * cellsize
		for x := 0; x < padN; x++ {
			v := img[y][x]
			if wLambda != 0.0 {
				l := float64(x-centre) * cellsize
				v *= wScreen(l, m, wLambda, true)
			}
			out[y][x] = real(v) * corr[y] * corr[x]
		}
	}
	return out
}

// wScreen returns exp(-2*pi*i*w*(n-1)) at image position (l, m), the phase
// a source there picks up from the representative w of a partition. Outside
// the unit sphere the screen is zero.
func wScreen(l, m, wLambda float64, conjugate bool) complex128 {
	r2 := l*l + m*m
	if r2 >= 1.0 {
		return 0
	}
	phase := -2.0 * math.Pi * wLambda * (math.Sqrt(1.0-r2) - 1.0)
	if conjugate {
		phase = -phase
	}
	return complex(math.Cos(phase), math.Sin(phase))
}
