package visibility

import (
	"fmt"
	"math"
)

// Configuration is a named antenna layout. Station positions are in a local
// equatorial frame in metres, the frame BaselineToUVW expects.
type Configuration struct {
	Name   string
	AntXYZ [][3]float64
}

// NumAntennas returns the number of stations in the layout.
func (c *Configuration) NumAntennas() int { return len(c.AntXYZ) }

// NumBaselines returns the number of baselines including autocorrelations.
func (c *Configuration) NumBaselines() int {
	n := len(c.AntXYZ)
	return n * (n + 1) / 2
}

// Baselines enumerates antenna pairs in a fixed order, autocorrelations
// included, since real measurement sets may carry them.
func (c *Configuration) Baselines() [][2]int {
	pairs := make([][2]int, 0, c.NumBaselines())
	for a1 := 0; a1 < len(c.AntXYZ); a1++ {
		for a2 := a1; a2 < len(c.AntXYZ); a2++ {
			pairs = append(pairs, [2]int{a1, a2})
		}
	}
	return pairs
}

// RingConfiguration places n stations evenly on a circle of the given radius
// in metres. Deterministic; intended for tests and simulations.
func RingConfiguration(n int, radius float64) *Configuration {
	c := &Configuration{Name: fmt.Sprintf("RING%d", n)}
	for i := 0; i < n; i++ {
		theta := 2.0 * math.Pi * float64(i) / float64(n)
		c.AntXYZ = append(c.AntXYZ, [3]float64{radius * math.Cos(theta), radius * math.Sin(theta), 0.0})
	}
	return c
}

// GridConfiguration places n by n stations on a square grid with the given
// spacing in metres, centred on the origin.
func GridConfiguration(n int, spacing float64) *Configuration {
	c := &Configuration{Name: fmt.Sprintf("GRID%dx%d", n, n)}
	half := float64(n-1) / 2.0
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			c.AntXYZ = append(c.AntXYZ, [3]float64{(float64(ix) - half) * spacing, (float64(iy) - half) * spacing, 0.0})
		}
	}
	return c
}

// NamedConfiguration returns one of the built-in layouts: "RING5", "RING12",
// "GRID5x5". Layout scales are chosen to give a dense core at 100 MHz.
func NamedConfiguration(name string) (*Configuration, error) {
	switch name {
	case "RING5":
		return RingConfiguration(5, 300.0), nil
	case "RING12":
		return RingConfiguration(12, 600.0), nil
	case "GRID5x5":
		return GridConfiguration(5, 120.0), nil
	}
	return nil, fmt.Errorf("unknown configuration %q", name)
}
