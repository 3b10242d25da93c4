package imaging

import (
	"fmt"

	"github.com/radiokit/aperture/gridder"
	"github.com/radiokit/aperture/skyimage"
	"github.com/radiokit/aperture/visibility"
)

// Kernel selection names.
const (
	Kernel2D          = "2d"
	KernelWProjection = "wprojection"
)

// Params carries the options recognized by the imaging contexts. Zero
// values mean "not set"; DefaultParams fills the stencil geometry every
// context needs.
type Params struct {
	// Facets is the number of facets per spatial axis for faceted contexts.
	Facets int
	// Timeslice is the time-window width for timeslice contexts, in the
	// units of Visibility.Time. TimesliceAuto groups rows by distinct
	// integration timestamp instead.
	Timeslice     float64
	TimesliceAuto bool
	// WStack is the w-bin width in metres for wstack contexts.
	WStack float64
	// Kernel selects the gridding kernel: Kernel2D (default) or
	// KernelWProjection. WStep is the w-plane bucket width in wavelengths
	// for w-projection.
	Kernel string
	WStep  float64
	// Stencil geometry.
	Oversampling int
	Support      int
	// Padding multiplies the grid size relative to the image.
	Padding int
}

// DefaultParams returns the stencil geometry used when the caller does not
// override it: support 3, oversampling 8, padding 2, plain 2-D kernel.
func DefaultParams() Params {
	return Params{
		Kernel:       Kernel2D,
		Oversampling: 8,
		Support:      3,
		Padding:      2,
	}
}

// fillDefaults replaces unset stencil fields with the defaults so callers
// can specify only what they care about.
func (p Params) fillDefaults() Params {
	d := DefaultParams()
	if p.Kernel == "" {
		p.Kernel = d.Kernel
	}
	if p.Oversampling == 0 {
		p.Oversampling = d.Oversampling
	}
	if p.Support == 0 {
		p.Support = d.Support
	}
	if p.Padding == 0 {
		p.Padding = d.Padding
	}
	return p
}

// contextUsesFacets reports whether the context tag includes a facet axis.
func contextUsesFacets(context string) bool {
	return context == "facets" || context == "facets_timeslice" || context == "facets_wstack"
}

func contextUsesTimeslice(context string) bool {
	return context == "timeslice" || context == "facets_timeslice"
}

func contextUsesWStack(context string) bool {
	return context == "wstack" || context == "facets_wstack"
}

func knownContext(context string) bool {
	switch context {
	case "2d", "facets", "timeslice", "wstack", "facets_timeslice", "facets_wstack":
		return true
	}
	return false
}

// validate checks the params against the chosen context and the shapes of
// the visibility and model, collecting every problem rather than stopping
// at the first.
func validate(vis *visibility.Visibility, model *skyimage.Image, context string, p Params) error {
	var problems []string

	if !knownContext(context) {
		problems = append(problems, fmt.Sprintf("unknown context %q", context))
		return &ConfigurationError{Context: context, Problems: problems}
	}

	nchan, npol, ny, nx := model.Shape()
	if ny != nx {
		problems = append(problems, fmt.Sprintf("image must be square, got %dx%d", ny, nx))
	}
	if nchan != vis.NumChan() {
		problems = append(problems, fmt.Sprintf("image has %d channels, visibility has %d", nchan, vis.NumChan()))
	}
	if npol != vis.NumPol() {
		problems = append(problems, fmt.Sprintf("image has %d polarisations, visibility has %d", npol, vis.NumPol()))
	}

	if contextUsesFacets(context) {
		if p.Facets < 1 {
			problems = append(problems, "facets: must be >= 1")
		} else if ny%p.Facets != 0 || nx%p.Facets != 0 {
			problems = append(problems, fmt.Sprintf("facets: %d does not evenly divide image dimensions %dx%d", p.Facets, ny, nx))
		}
	}
	if contextUsesTimeslice(context) && !p.TimesliceAuto && p.Timeslice <= 0.0 {
		problems = append(problems, "timeslice: must be > 0 or auto")
	}
	if contextUsesWStack(context) && p.WStack <= 0.0 {
		problems = append(problems, "wstack: must be > 0")
	}

	switch p.Kernel {
	case Kernel2D:
	case KernelWProjection:
		if p.WStep <= 0.0 {
			problems = append(problems, "wstep: must be > 0 for wprojection")
		}
		if p.Support > gridder.MaxWKernelSupport {
			problems = append(problems, fmt.Sprintf("support: %d exceeds the w-kernel limit %d", p.Support, gridder.MaxWKernelSupport))
		}
	default:
		problems = append(problems, fmt.Sprintf("kernel: unknown kernel %q", p.Kernel))
	}

	if p.Support <= 0 || p.Support%2 == 0 {
		problems = append(problems, fmt.Sprintf("support: must be positive and odd, got %d", p.Support))
	}
	if p.Oversampling <= 0 || p.Oversampling%2 != 0 {
		problems = append(problems, fmt.Sprintf("oversampling: must be positive and even, got %d", p.Oversampling))
	}
	if p.Padding < 1 {
		problems = append(problems, fmt.Sprintf("padding: must be >= 1, got %d", p.Padding))
	}
	if p.Padding >= 1 && p.Support > p.Padding*nx {
		problems = append(problems, fmt.Sprintf("support: %d exceeds padded grid size %d", p.Support, p.Padding*nx))
	}

	if len(problems) > 0 {
		return &ConfigurationError{Context: context, Problems: problems}
	}
	return nil
}
