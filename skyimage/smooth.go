package skyimage

import (
	"math"

	"github.com/radiokit/aperture/gridder"
)

// Smooth convolves every (channel, polarisation) plane with a circular
// Gaussian of the given FWHM in pixels, returning a new image. The
// convolution runs in the Fourier domain: transform the plane, multiply by
// the transformed beam, transform back. The beam is normalized to unit sum
// so fluxes are preserved.
func Smooth(im *Image, fwhmPixels float64) *Image {
	nchan, npol, ny, nx := im.Shape()
	out := im.EmptyLike()

	// Gaussian beam, centred, unit sum.
	sigma := fwhmPixels / (2.0 * math.Sqrt(2.0*math.Log(2.0)))
	beam := gridder.MakePlane(ny, nx)
	sum := 0.0
	for y := 0; y < ny; y++ {
		dy := float64(y - ny/2)
		for x := 0; x < nx; x++ {
			dx := float64(x - nx/2)
			v := math.Exp(-(dx*dx + dy*dy) / (2.0 * sigma * sigma))
			beam[y][x] = complex(v, 0)
			sum += v
		}
	}
	for y := range beam {
		for x := range beam[y] {
			beam[y][x] /= complex(sum, 0)
		}
	}
	beamUV := gridder.ImageToGrid(beam)

	for c := 0; c < nchan; c++ {
		for p := 0; p < npol; p++ {
			plane := gridder.MakePlane(ny, nx)
			for y := 0; y < ny; y++ {
				for x := 0; x < nx; x++ {
					plane[y][x] = complex(im.Data[c][p][y][x], 0)
				}
			}
			uv := gridder.ImageToGrid(plane)
			for y := 0; y < ny; y++ {
				for x := 0; x < nx; x++ {
					uv[y][x] *= beamUV[y][x]
				}
			}
			smoothed := gridder.GridToImage(uv)
			// Forward then inverse is unnormalized; undo the ny*nx factor.
			scale := 1.0 / float64(ny*nx)
			for y := 0; y < ny; y++ {
				for x := 0; x < nx; x++ {
					out.Data[c][p][y][x] = real(smoothed[y][x]) * scale
				}
			}
		}
	}
	return out
}
