package visibility

import "fmt"

// PolarisationFrame tags the polarisation basis of a visibility set or image.
type PolarisationFrame int

const (
	// StokesI is a single total-intensity product.
	StokesI PolarisationFrame = iota
	// StokesIQUV carries the four Stokes products.
	StokesIQUV
	// Linear carries XX, XY, YX, YY.
	Linear
	// Circular carries RR, RL, LR, LL.
	Circular
)

// NumPol returns the number of polarisation products in the frame.
func (p PolarisationFrame) NumPol() int {
	if p == StokesI {
		return 1
	}
	return 4
}

func (p PolarisationFrame) String() string {
	switch p {
	case StokesI:
		return "stokesI"
	case StokesIQUV:
		return "stokesIQUV"
	case Linear:
		return "linear"
	case Circular:
		return "circular"
	}
	return fmt.Sprintf("PolarisationFrame(%d)", int(p))
}

// ParsePolarisationFrame maps a frame name to its tag.
func ParsePolarisationFrame(name string) (PolarisationFrame, error) {
	switch name {
	case "stokesI":
		return StokesI, nil
	case "stokesIQUV":
		return StokesIQUV, nil
	case "linear":
		return Linear, nil
	case "circular":
		return Circular, nil
	}
	return StokesI, fmt.Errorf("unknown polarisation frame %q", name)
}
