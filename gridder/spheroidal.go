package gridder

import "math"

// Rational approximation to the 0th order prolate spheroidal wave function
// after F. Schwab, for support 6 and alpha 1. Two sets of coefficients cover
// |nu| below and above 0.75.
var (
	spheroidalP = [2][5]float64{
		{8.203343e-2, -3.644705e-1, 6.278660e-1, -5.335581e-1, 2.312756e-1},
		{4.028559e-3, -3.697768e-2, 1.021332e-1, -1.201436e-1, 6.412774e-2},
	}
	spheroidalQ = [2][3]float64{
		{1.0000000, 8.212018e-1, 2.078043e-1},
		{1.0000000, 9.599102e-1, 2.918724e-1},
	}
)

// spheroidal evaluates the rational part of the spheroidal function at
// nu in [-1, 1]. This is the image-domain taper the gridding kernel imposes,
// so dividing an image by it undoes the kernel's roll-off.
func spheroidal(nu float64) float64 {
	nu = math.Abs(nu)
	if nu > 1.0 {
		return 0.0
	}
	part := 0
	nuend := 0.75
	if nu > 0.75 {
		part = 1
		nuend = 1.0
	}
	delnusq := nu*nu - nuend*nuend
	top := 0.0
	dd := 1.0
	for _, p := range spheroidalP[part] {
		top += p * dd
		dd *= delnusq
	}
	bot := 0.0
	dd = 1.0
	for _, q := range spheroidalQ[part] {
		bot += q * dd
		dd *= delnusq
	}
	if bot == 0.0 {
		return 0.0
	}
	return top / bot
}

// spheroidalKernel is the uv-domain gridding function, the rational part
// multiplied by (1 - nu^2).
func spheroidalKernel(nu float64) float64 {
	if math.Abs(nu) > 1.0 {
		return 0.0
	}
	return (1.0 - nu*nu) * spheroidal(nu)
}

// GridCorrection returns a 1-D correction curve of length n for an image
// axis: the reciprocal spheroidal taper, normalized to 1 at the centre
// pixel. Multiplying an image row/column by this curve undoes the
// anti-aliasing roll-off without touching the centre-pixel normalization.
func GridCorrection(n int) []float64 {
	centre := n / 2
	c0 := spheroidal(0.0)
	out := make([]float64, n)
	for i := range out {
		nu := float64(i-centre) / float64(centre)
		s := spheroidal(nu)
		if s <= 0.0 {
			// Edge pixels sit where the taper vanishes; leave them untouched
			// rather than dividing by zero.
			out[i] = 1.0
			continue
		}
		out[i] = c0 / s
	}
	return out
}
