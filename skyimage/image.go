// Package skyimage defines the sky-brightness image: a regular pixel array
// over (channel, polarisation, y, x) with an invertible pixel-to-direction
// mapping on the tangent plane at the phase centre. It also provides
// point-component insertion, Gaussian smoothing, and grayscale PNG export
// for eyeballing dirty images and PSFs.
package skyimage

import (
	"errors"
	"fmt"
	"math"

	"github.com/radiokit/aperture/geometry"
	"github.com/radiokit/aperture/visibility"
)

// Sentinel errors for image construction.
var (
	// ErrBadShape indicates non-positive image dimensions.
	ErrBadShape = errors.New("skyimage: image dimensions must be positive")
	// ErrBadCellsize indicates a non-positive cell size.
	ErrBadCellsize = errors.New("skyimage: cell size must be positive")
)

// Image is a sky-brightness array. Data is indexed [chan][pol][y][x]. The
// tangent-plane mapping is fixed at creation: pixel (nx/2, ny/2) is the
// phase centre, l increases with x and m with y, Cellsize radians per pixel.
// SliceFlags marks (channel, polarisation) slices whose values are
// undefined, e.g. after normalizing with a zero sum of weights.
type Image struct {
	Data        [][][][]float64
	Cellsize    float64 // radians per pixel
	PhaseCentre geometry.Direction
	Frequency   []float64
	PolFrame    visibility.PolarisationFrame
	SliceFlags  [][]bool
}

// New allocates a zeroed image.
func New(nchan, npol, ny, nx int, cellsize float64, centre geometry.Direction,
	frequency []float64, frame visibility.PolarisationFrame) (*Image, error) {

	if nchan <= 0 || npol <= 0 || ny <= 0 || nx <= 0 {
		return nil, ErrBadShape
	}
	if cellsize <= 0.0 {
		return nil, ErrBadCellsize
	}
	im := &Image{
		Cellsize:    cellsize,
		PhaseCentre: centre,
		Frequency:   append([]float64(nil), frequency...),
		PolFrame:    frame,
	}
	im.Data = make([][][][]float64, nchan)
	im.SliceFlags = make([][]bool, nchan)
	for c := 0; c < nchan; c++ {
		im.Data[c] = make([][][]float64, npol)
		im.SliceFlags[c] = make([]bool, npol)
		for p := 0; p < npol; p++ {
			im.Data[c][p] = make([][]float64, ny)
			for y := 0; y < ny; y++ {
				im.Data[c][p][y] = make([]float64, nx)
			}
		}
	}
	return im, nil
}

// NewFromVisibility creates an empty model image matched to a visibility
// set: same phase centre and polarisation frame, one image channel per
// visibility channel unless nchan requests fewer (then the frequency axis is
// averaged down, following the usual model-image convention).
func NewFromVisibility(vis *visibility.Visibility, npixel int, cellsize float64, nchan int) (*Image, error) {
	if nchan <= 0 || nchan > vis.NumChan() {
		nchan = vis.NumChan()
	}
	freq := make([]float64, nchan)
	if nchan == vis.NumChan() {
		copy(freq, vis.Frequency)
	} else {
		// Collapse the frequency axis to nchan bands by averaging.
		per := vis.NumChan() / nchan
		for c := 0; c < nchan; c++ {
			sum := 0.0
			for i := c * per; i < (c+1)*per; i++ {
				sum += vis.Frequency[i]
			}
			freq[c] = sum / float64(per)
		}
	}
	return New(nchan, vis.NumPol(), npixel, npixel, cellsize, vis.PhaseCentre, freq, vis.PolFrame)
}

// Shape returns (nchan, npol, ny, nx).
func (im *Image) Shape() (nchan, npol, ny, nx int) {
	nchan = len(im.Data)
	npol = len(im.Data[0])
	ny = len(im.Data[0][0])
	nx = len(im.Data[0][0][0])
	return
}

// EmptyLike returns a zeroed image with the same geometry.
func (im *Image) EmptyLike() *Image {
	nchan, npol, ny, nx := im.Shape()
	out, _ := New(nchan, npol, ny, nx, im.Cellsize, im.PhaseCentre, im.Frequency, im.PolFrame)
	return out
}

// PixelToDirection maps fractional pixel coordinates to a sky direction.
func (im *Image) PixelToDirection(x, y float64) geometry.Direction {
	_, _, ny, nx := im.Shape()
	l := (x - float64(nx/2)) * im.Cellsize
	m := (y - float64(ny/2)) * im.Cellsize
	return geometry.LMNToDirection(l, m, im.PhaseCentre)
}

// DirectionToPixel maps a sky direction to fractional pixel coordinates.
func (im *Image) DirectionToPixel(d geometry.Direction) (x, y float64) {
	_, _, ny, nx := im.Shape()
	l, m, _ := geometry.DirectionToLMN(d, im.PhaseCentre)
	x = float64(nx/2) + l/im.Cellsize
	y = float64(ny/2) + m/im.Cellsize
	return x, y
}

// InsertComponents adds point components to the image at their nearest
// pixel. Components falling outside the image are skipped.
func (im *Image) InsertComponents(comps []*visibility.Component) error {
	nchan, npol, ny, nx := im.Shape()
	for _, comp := range comps {
		if len(comp.Flux) != nchan {
			return fmt.Errorf("skyimage: component has %d channels, image has %d", len(comp.Flux), nchan)
		}
		fx, fy := im.DirectionToPixel(comp.Direction)
		x := int(math.Round(fx))
		y := int(math.Round(fy))
		if x < 0 || x >= nx || y < 0 || y >= ny {
			continue
		}
		for c := 0; c < nchan; c++ {
			for p := 0; p < npol && p < len(comp.Flux[c]); p++ {
				im.Data[c][p][y][x] += comp.Flux[c][p]
			}
		}
	}
	return nil
}

// MaxAbs returns the largest absolute pixel value across all slices.
func (im *Image) MaxAbs() float64 {
	maxAbs := 0.0
	for _, chp := range im.Data {
		for _, plane := range chp {
			for _, row := range plane {
				for _, v := range row {
					if a := math.Abs(v); a > maxAbs {
						maxAbs = a
					}
				}
			}
		}
	}
	return maxAbs
}
