// Package gridder implements the convolutional resampling machinery of the
// imaging engine: the anti-aliasing (prolate-spheroidal) gridding kernel, the
// w-projection kernel cache, the gridder/degridder that move visibility
// samples on and off a regular uv grid, and the 2-D FFT helpers that carry a
// grid to the image domain and back.
package gridder

import (
	"errors"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Sentinel errors for grid construction.
var (
	// ErrSupportTooLarge indicates the kernel support exceeds the grid extent.
	ErrSupportTooLarge = errors.New("gridder: kernel support exceeds grid size")
	// ErrBadSupport indicates an even or non-positive kernel support.
	ErrBadSupport = errors.New("gridder: kernel support must be positive and odd")
	// ErrBadOversampling indicates a non-positive or odd oversampling factor.
	ErrBadOversampling = errors.New("gridder: oversampling must be positive and even")
)

// FFT2 performs an in-place unnormalized forward 2-D FFT, rows then columns.
func FFT2(a [][]complex128) { fft2InPlace(a, true) }

// IFFT2 performs an in-place unnormalized inverse 2-D FFT. A forward
// transform followed by an inverse multiplies the data by len(a)*len(a[0]).
func IFFT2(a [][]complex128) { fft2InPlace(a, false) }

func fft2InPlace(a [][]complex128, forward bool) {
	h := len(a)
	w := len(a[0])

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	tmp := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(tmp, a[y])
		if forward {
			rowFFT.Coefficients(tmp, tmp)
		} else {
			rowFFT.Sequence(tmp, tmp)
		}
		copy(a[y], tmp)
	}

	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}

// FFTShift moves the zero-frequency sample of a plane to the centre.
func FFTShift(x [][]complex128) [][]complex128 {
	h := len(x)
	w := len(x[0])
	out := MakePlane(h, w)
	shY := (h + 1) / 2
	shX := (w + 1) / 2
	for y := 0; y < h; y++ {
		yy := (y + shY) % h
		for x0 := 0; x0 < w; x0++ {
			xx := (x0 + shX) % w
			out[yy][xx] = x[y][x0]
		}
	}
	return out
}

// IFFTShift moves the centre sample of a plane to (0,0); for even dimensions
// it is identical to FFTShift.
func IFFTShift(x [][]complex128) [][]complex128 {
	h := len(x)
	w := len(x[0])
	out := MakePlane(h, w)
	shY := h / 2
	shX := w / 2
	for y := 0; y < h; y++ {
		yy := (y + shY) % h
		for x0 := 0; x0 < w; x0++ {
			xx := (x0 + shX) % w
			out[y][x0] = x[yy][xx]
		}
	}
	return out
}

// GridToImage transforms a centred uv plane to a centred image plane. The
// transform is unnormalized: the centre image pixel equals the plain sum of
// the grid, which keeps sum-of-weights normalization exact.
func GridToImage(grid [][]complex128) [][]complex128 {
	b := IFFTShift(grid)
	IFFT2(b)
	return FFTShift(b)
}

// ImageToGrid transforms a centred image plane to a centred uv plane. A
// point source of unit flux at pixel (px,py) yields grid samples
// exp(-2*pi*i*(u*l + v*m)) with l,m measured from the image centre.
func ImageToGrid(img [][]complex128) [][]complex128 {
	b := IFFTShift(img)
	FFT2(b)
	return FFTShift(b)
}

// MakePlane allocates an h by w complex plane.
func MakePlane(h, w int) [][]complex128 {
	m := make([][]complex128, h)
	for i := range m {
		m[i] = make([]complex128, w)
	}
	return m
}

// MakeRealPlane allocates an h by w real plane.
func MakeRealPlane(h, w int) [][]float64 {
	m := make([][]float64, h)
	for i := range m {
		m[i] = make([]float64, w)
	}
	return m
}
