package visibility

import (
	"fmt"
	"math"

	"github.com/radiokit/aperture/geometry"
)

// Component is a point source with a per-(channel, polarisation) flux.
type Component struct {
	Direction geometry.Direction
	Flux      [][]float64 // [chan][pol], Jy
}

// phasor returns exp(-2*pi*i*(u*l + v*m + w*(n-1))) for one sample.
func phasor(uvw [3]float64, l, m, n float64) complex128 {
	arg := -2.0 * math.Pi * (uvw[0]*l + uvw[1]*m + uvw[2]*(n-1.0))
	return complex(math.Cos(arg), math.Sin(arg))
}

// PredictComponents adds the exact DFT response of the components to the
// visibility values in place. This is the reference transform the gridded
// predict is checked against.
func PredictComponents(vis *Visibility, comps []*Component) error {
	for _, comp := range comps {
		if len(comp.Flux) != vis.NumChan() {
			return fmt.Errorf("visibility: component has %d channels, visibility has %d",
				len(comp.Flux), vis.NumChan())
		}
		l, m, n := geometry.DirectionToLMN(comp.Direction, vis.PhaseCentre)
		for r := 0; r < vis.NumRows(); r++ {
			for c := 0; c < vis.NumChan(); c++ {
				ph := phasor(vis.UVWLambda(r, c), l, m, n)
				for p := 0; p < vis.NumPol(); p++ {
					vis.Vis[r][c][p] += complex(comp.Flux[c][p], 0) * ph
				}
			}
		}
	}
	return nil
}

// SumAtDirection back-projects the visibilities onto a single direction,
// returning the weighted mean flux per (channel, polarisation) and the sum
// of weights used. It is the adjoint of PredictComponents for one source.
func SumAtDirection(vis *Visibility, d geometry.Direction) (flux [][]float64, sumWeight [][]float64) {
	l, m, n := geometry.DirectionToLMN(d, vis.PhaseCentre)
	nchan, npol := vis.NumChan(), vis.NumPol()
	flux = make([][]float64, nchan)
	sumWeight = make([][]float64, nchan)
	for c := 0; c < nchan; c++ {
		flux[c] = make([]float64, npol)
		sumWeight[c] = make([]float64, npol)
	}
	for r := 0; r < vis.NumRows(); r++ {
		for c := 0; c < nchan; c++ {
			// Conjugate phasor rotates the sample back to the source.
			ph := phasor(vis.UVWLambda(r, c), l, m, n)
			for p := 0; p < npol; p++ {
				wt := vis.FlaggedWeight(r, c, p)
				if wt == 0.0 {
					continue
				}
				rotated := vis.Vis[r][c][p] * complex(real(ph), -imag(ph))
				flux[c][p] += wt * real(rotated)
				sumWeight[c][p] += wt
			}
		}
	}
	for c := 0; c < nchan; c++ {
		for p := 0; p < npol; p++ {
			if sumWeight[c][p] > 0.0 {
				flux[c][p] /= sumWeight[c][p]
			}
		}
	}
	return flux, sumWeight
}
