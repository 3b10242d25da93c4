// Package visibility defines the in-memory visibility table: per-baseline
// complex samples over time, frequency and polarisation, each tagged with a
// uvw baseline vector in metres. It also provides deterministic antenna
// configurations for simulation and the exact (DFT) point-source operations
// used to validate the gridded transforms.
package visibility

import (
	"errors"
	"fmt"

	"github.com/radiokit/aperture/geometry"
)

// Sentinel errors for visibility construction.
var (
	// ErrNoChannels indicates an empty frequency axis.
	ErrNoChannels = errors.New("visibility: at least one frequency channel is required")
	// ErrBandwidthMismatch indicates the bandwidth axis does not parallel the frequency axis.
	ErrBandwidthMismatch = errors.New("visibility: channel bandwidth axis must match frequency axis")
)

// Visibility is an ordered table of samples over (time, baseline) rows and
// (channel, polarisation) columns. The row ordering is fixed at creation:
// time-major, then baseline in Configuration.Baselines order. Predict
// operations must return their output in exactly this ordering.
type Visibility struct {
	Config      *Configuration
	PhaseCentre geometry.Direction
	PolFrame    PolarisationFrame

	Frequency        []float64 // Hz, per channel
	ChannelBandwidth []float64 // Hz, per channel

	Time     []float64 // per row; hour angle of the integration, radians
	Antenna1 []int
	Antenna2 []int
	UVW      [][3]float64 // per row, metres

	Vis           [][][]complex128 // [row][chan][pol]
	Weight        [][][]float64
	ImagingWeight [][][]float64 // starts equal to Weight; reweighting updates it
	Flag          [][][]bool
}

// New builds a visibility table for the configuration observed at the given
// hour angles (radians). The table is filled with zero visibilities, the
// supplied uniform weight, and no flags.
func New(config *Configuration, hourAngles, frequency, channelBandwidth []float64,
	phaseCentre geometry.Direction, weight float64, frame PolarisationFrame) (*Visibility, error) {

	if len(frequency) == 0 {
		return nil, ErrNoChannels
	}
	if len(channelBandwidth) != len(frequency) {
		return nil, ErrBandwidthMismatch
	}

	nchan := len(frequency)
	npol := frame.NumPol()
	pairs := config.Baselines()
	nrows := len(hourAngles) * len(pairs)

	v := &Visibility{
		Config:           config,
		PhaseCentre:      phaseCentre,
		PolFrame:         frame,
		Frequency:        append([]float64(nil), frequency...),
		ChannelBandwidth: append([]float64(nil), channelBandwidth...),
		Time:             make([]float64, 0, nrows),
		Antenna1:         make([]int, 0, nrows),
		Antenna2:         make([]int, 0, nrows),
		UVW:              make([][3]float64, 0, nrows),
	}

	for _, ha := range hourAngles {
		for _, pair := range pairs {
			a1, a2 := pair[0], pair[1]
			bl := [3]float64{
				config.AntXYZ[a2][0] - config.AntXYZ[a1][0],
				config.AntXYZ[a2][1] - config.AntXYZ[a1][1],
				config.AntXYZ[a2][2] - config.AntXYZ[a1][2],
			}
			v.Time = append(v.Time, ha)
			v.Antenna1 = append(v.Antenna1, a1)
			v.Antenna2 = append(v.Antenna2, a2)
			v.UVW = append(v.UVW, geometry.BaselineToUVW(bl, ha, phaseCentre.Dec))
		}
	}

	v.Vis = make([][][]complex128, nrows)
	v.Weight = make([][][]float64, nrows)
	v.ImagingWeight = make([][][]float64, nrows)
	v.Flag = make([][][]bool, nrows)
	for r := 0; r < nrows; r++ {
		v.Vis[r] = make([][]complex128, nchan)
		v.Weight[r] = make([][]float64, nchan)
		v.ImagingWeight[r] = make([][]float64, nchan)
		v.Flag[r] = make([][]bool, nchan)
		for c := 0; c < nchan; c++ {
			v.Vis[r][c] = make([]complex128, npol)
			v.Weight[r][c] = make([]float64, npol)
			v.ImagingWeight[r][c] = make([]float64, npol)
			v.Flag[r][c] = make([]bool, npol)
			for p := 0; p < npol; p++ {
				v.Weight[r][c][p] = weight
				v.ImagingWeight[r][c][p] = weight
			}
		}
	}
	return v, nil
}

// NumRows returns the number of (time, baseline) rows.
func (v *Visibility) NumRows() int { return len(v.Time) }

// NumChan returns the number of frequency channels.
func (v *Visibility) NumChan() int { return len(v.Frequency) }

// NumPol returns the number of polarisation products.
func (v *Visibility) NumPol() int { return v.PolFrame.NumPol() }

// UVWLambda returns the uvw vector of a row in wavelengths for one channel.
func (v *Visibility) UVWLambda(row, channel int) [3]float64 {
	return geometry.MetresToWavelengths(v.UVW[row], v.Frequency[channel])
}

// FlaggedWeight returns the imaging weight of a sample, or zero when the
// sample is flagged. Flagged samples contribute nothing to gridding sums but
// keep their place in the table.
func (v *Visibility) FlaggedWeight(row, channel, pol int) float64 {
	if v.Flag[row][channel][pol] {
		return 0.0
	}
	return v.ImagingWeight[row][channel][pol]
}

// ZeroVis clears all visibility values in place, leaving weights and flags.
func (v *Visibility) ZeroVis() {
	for r := range v.Vis {
		for c := range v.Vis[r] {
			for p := range v.Vis[r][c] {
				v.Vis[r][c][p] = 0
			}
		}
	}
}

// ZeroW clears the w component of every row. Used by tests that compare the
// two-dimensional transform against the exact component transform.
func (v *Visibility) ZeroW() {
	for r := range v.UVW {
		v.UVW[r][2] = 0.0
	}
}

// CopyShape returns a new visibility with the same coordinates, weights and
// flags but zeroed visibility values. Predict operations write into such a
// copy rather than mutating their input.
func (v *Visibility) CopyShape() *Visibility {
	out := &Visibility{
		Config:           v.Config,
		PhaseCentre:      v.PhaseCentre,
		PolFrame:         v.PolFrame,
		Frequency:        append([]float64(nil), v.Frequency...),
		ChannelBandwidth: append([]float64(nil), v.ChannelBandwidth...),
		Time:             append([]float64(nil), v.Time...),
		Antenna1:         append([]int(nil), v.Antenna1...),
		Antenna2:         append([]int(nil), v.Antenna2...),
		UVW:              append([][3]float64(nil), v.UVW...),
	}
	nrows, nchan, npol := v.NumRows(), v.NumChan(), v.NumPol()
	out.Vis = make([][][]complex128, nrows)
	out.Weight = make([][][]float64, nrows)
	out.ImagingWeight = make([][][]float64, nrows)
	out.Flag = make([][][]bool, nrows)
	for r := 0; r < nrows; r++ {
		out.Vis[r] = make([][]complex128, nchan)
		out.Weight[r] = make([][]float64, nchan)
		out.ImagingWeight[r] = make([][]float64, nchan)
		out.Flag[r] = make([][]bool, nchan)
		for c := 0; c < nchan; c++ {
			out.Vis[r][c] = make([]complex128, npol)
			out.Weight[r][c] = append([]float64(nil), v.Weight[r][c]...)
			out.ImagingWeight[r][c] = append([]float64(nil), v.ImagingWeight[r][c]...)
			out.Flag[r][c] = append([]bool(nil), v.Flag[r][c]...)
		}
	}
	return out
}

// Subtract computes v - other element-wise into a new visibility with v's
// coordinates. The two tables must have identical shape.
func (v *Visibility) Subtract(other *Visibility) (*Visibility, error) {
	if v.NumRows() != other.NumRows() || v.NumChan() != other.NumChan() || v.NumPol() != other.NumPol() {
		return nil, fmt.Errorf("visibility: shape mismatch (%d,%d,%d) vs (%d,%d,%d)",
			v.NumRows(), v.NumChan(), v.NumPol(), other.NumRows(), other.NumChan(), other.NumPol())
	}
	out := v.CopyShape()
	for r := range v.Vis {
		for c := range v.Vis[r] {
			for p := range v.Vis[r][c] {
				out.Vis[r][c][p] = v.Vis[r][c][p] - other.Vis[r][c][p]
			}
		}
	}
	return out, nil
}
