// Package fitting solves for the flux and position of a single point
// component directly against the visibility data, without imaging. The cost
// is the weighted squared residual between the observed visibilities and a
// unit component at trial position (l, m); its analytic gradient makes
// quasi-Newton methods practical even for large visibility sets.
package fitting

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/radiokit/aperture/geometry"
	"github.com/radiokit/aperture/visibility"
)

// ErrStokesIOnly indicates a fit attempted on a multi-polarisation
// visibility set.
var ErrStokesIOnly = errors.New("fitting: component fitting requires stokesI visibilities")

// Options tunes the minimizer. Zero values select the defaults.
type Options struct {
	// Tolerance is the gradient norm at which the fit is converged.
	// Default 1e-6.
	Tolerance float64
	// MaxIterations bounds the major iterations. Default 20.
	MaxIterations int
	// GradientFree selects Nelder-Mead instead of BFGS, for costs whose
	// gradient is unreliable near the boundary of the field.
	GradientFree bool
}

// Result reports the fitted component and the minimizer's stopping state.
type Result struct {
	Component   *visibility.Component
	Cost        float64
	Iterations  int
	Evaluations int
	Converged   bool
}

func (o Options) withDefaults() Options {
	if o.Tolerance == 0.0 {
		o.Tolerance = 1e-6
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = 20
	}
	return o
}

// FitComponent fits flux and position of a single point component to the
// visibilities, starting from the given initial component. The fit runs
// over (S, l, m); w is ignored, which is exact for a coplanar array and a
// good approximation near the phase centre otherwise.
func FitComponent(vis *visibility.Visibility, initial *visibility.Component, opts Options) (*Result, error) {
	if vis.NumPol() != 1 {
		return nil, ErrStokesIOnly
	}
	if len(initial.Flux) != vis.NumChan() {
		return nil, fmt.Errorf("fitting: component has %d channels, visibility has %d",
			len(initial.Flux), vis.NumChan())
	}

	obj := &objective{vis: vis}

	l0, m0, _ := geometry.DirectionToLMN(initial.Direction, vis.PhaseCentre)
	x0 := []float64{initial.Flux[0][0], l0, m0}

	o := opts.withDefaults()
	problem := optimize.Problem{Func: obj.cost, Grad: obj.grad}
	settings := &optimize.Settings{
		GradientThreshold: o.Tolerance,
		MajorIterations:   o.MaxIterations,
	}
	var method optimize.Method = &optimize.BFGS{}
	if o.GradientFree {
		method = &optimize.NelderMead{}
	}

	res, err := optimize.Minimize(problem, x0, settings, method)
	if err != nil && res == nil {
		return nil, fmt.Errorf("fitting: minimize: %w", err)
	}

	flux := make([][]float64, vis.NumChan())
	for c := range flux {
		flux[c] = []float64{res.X[0]}
	}
	comp := &visibility.Component{
		Direction: geometry.LMNToDirection(res.X[1], res.X[2], vis.PhaseCentre),
		Flux:      flux,
	}
	return &Result{
		Component:   comp,
		Cost:        res.F,
		Iterations:  res.Stats.MajorIterations,
		Evaluations: res.Stats.FuncEvaluations,
		Converged:   res.Status == optimize.GradientThreshold || res.Status == optimize.FunctionConvergence,
	}, nil
}

// objective evaluates the weighted residual cost and its analytic gradient
// for parameters x = (S, l, m).
type objective struct {
	vis *visibility.Visibility
}

func (o *objective) cost(x []float64) float64 {
	j, _, _, _ := o.sums(x)
	return j
}

func (o *objective) grad(grad, x []float64) {
	_, sumRe, sumUIm, sumVIm := o.sums(x)
	s := x[0]
	grad[0] = -2.0 * sumRe
	grad[1] = 4.0 * math.Pi * s * sumUIm
	grad[2] = 4.0 * math.Pi * s * sumVIm
}

// sums accumulates, over all unflagged samples, the cost and the three
// weighted residual sums the gradient is assembled from.
func (o *objective) sums(x []float64) (j, sumRe, sumUIm, sumVIm float64) {
	s, l, m := x[0], x[1], x[2]
	v := o.vis
	for r := 0; r < v.NumRows(); r++ {
		for c := 0; c < v.NumChan(); c++ {
			wt := v.FlaggedWeight(r, c, 0)
			if wt == 0.0 {
				continue
			}
			uvw := v.UVWLambda(r, c)
			phase := -2.0 * math.Pi * (uvw[0]*l + uvw[1]*m)
			p := complex(math.Cos(phase), math.Sin(phase))
			vres := v.Vis[r][c][0] - complex(s, 0)*p
			j += wt * (real(vres)*real(vres) + imag(vres)*imag(vres))

			vrp := vres * complex(real(p), -imag(p))
			sumRe += wt * real(vrp)
			sumUIm += wt * uvw[0] * imag(vrp)
			sumVIm += wt * uvw[1] * imag(vrp)
		}
	}
	return j, sumRe, sumUIm, sumVIm
}
