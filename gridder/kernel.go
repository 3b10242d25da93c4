package gridder

import (
	"math"
	"sync"
)

// farFieldSize is the image-plane resolution used when transforming a
// w-screen into a uv kernel. It bounds the kernel FFT to
// (farFieldSize*oversampling)^2 regardless of the grid size.
const farFieldSize = 128

// MaxWKernelSupport is the widest stencil a w-projection kernel can carry.
// Tap extraction reaches (Support-1)/2 cells plus half an oversampling step
// either side of the oversampled plane centre, so the support must stay
// strictly inside the farFieldSize far-field plane.
const MaxWKernelSupport = farFieldSize - 1

// Kernel is an oversampled convolution stencil of odd support. Taps are
// indexed by the quantized fractional offset of the sample within its home
// cell, then by the cell offset within the support. Each offset block is
// normalized so its taps sum to one, which makes the sum-of-weights
// accumulated through the kernel exact. Kernels are immutable once built and
// owned by the cache; callers look them up, never copy them.
type Kernel struct {
	Support      int
	Oversampling int
	// Taps[qy][qx][j][i] with qy,qx in [0, Oversampling] and j,i in
	// [0, Support). The quantized offset q maps to index q+Oversampling/2.
	Taps [][][][]complex128
}

// halfSupport returns (Support-1)/2, the reach of the stencil in cells.
func (k *Kernel) halfSupport() int { return (k.Support - 1) / 2 }

// offsetIndex quantizes a fractional offset in [-0.5, 0.5) to a tap block.
func (k *Kernel) offsetIndex(frac float64) int {
	q := int(math.Round(frac * float64(k.Oversampling)))
	return q + k.Oversampling/2
}

// KernelCache builds and memoises gridding kernels. With WStep zero a single
// shared anti-aliasing kernel serves every sample; with WStep positive,
// w-values are bucketed into planes and a chirp-modulated kernel is built
// once per distinct plane. Construction is deterministic and side-effect
// free, so the mutex only prevents concurrent partitions from doing the same
// build twice.
type KernelCache struct {
	Support      int
	Oversampling int
	WStep        float64 // plane width in wavelengths; 0 disables w-projection
	FOV          float64 // padded field of view in radians, for w screens

	mu     sync.Mutex
	aa     *Kernel
	planes map[int]*Kernel
}

// NewKernelCache validates the stencil geometry and returns an empty cache.
func NewKernelCache(support, oversampling int, wstep, fov float64) (*KernelCache, error) {
	if support <= 0 || support%2 == 0 {
		return nil, ErrBadSupport
	}
	if oversampling <= 0 || oversampling%2 != 0 {
		return nil, ErrBadOversampling
	}
	if wstep > 0.0 && support > MaxWKernelSupport {
		return nil, ErrSupportTooLarge
	}
	return &KernelCache{
		Support:      support,
		Oversampling: oversampling,
		WStep:        wstep,
		FOV:          fov,
		planes:       make(map[int]*Kernel),
	}, nil
}

// PlaneIndex buckets a w value (wavelengths) into its kernel plane. Ties
// round half away from zero so the bucketing is symmetric about w=0.
func (c *KernelCache) PlaneIndex(w float64) int {
	if c.WStep <= 0.0 {
		return 0
	}
	r := w / c.WStep
	if r >= 0 {
		return int(math.Floor(r + 0.5))
	}
	return -int(math.Floor(-r + 0.5))
}

// Lookup returns the kernel for a sample at the given w (wavelengths),
// building and caching it on first use.
func (c *KernelCache) Lookup(w float64) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WStep <= 0.0 {
		if c.aa == nil {
			c.aa = buildAntiAliasingKernel(c.Support, c.Oversampling)
		}
		return c.aa
	}
	plane := c.PlaneIndex(w)
	if k, ok := c.planes[plane]; ok {
		return k
	}
	k := buildWKernel(c.Support, c.Oversampling, float64(plane)*c.WStep, c.FOV)
	c.planes[plane] = k
	return k
}

// buildAntiAliasingKernel constructs the separable prolate-spheroidal
// stencil. The 1-D taps for each fractional offset are the uv-domain
// spheroidal function sampled at the tap positions, normalized to unit sum.
func buildAntiAliasingKernel(support, oversampling int) *Kernel {
	k := &Kernel{Support: support, Oversampling: oversampling}
	half := (support - 1) / 2
	nOffsets := oversampling + 1

	taps1d := make([][]float64, nOffsets)
	for q := 0; q < nOffsets; q++ {
		frac := float64(q-oversampling/2) / float64(oversampling)
		row := make([]float64, support)
		sum := 0.0
		for j := 0; j < support; j++ {
			nu := (float64(j-half) - frac) / (float64(support) / 2.0)
			row[j] = spheroidalKernel(nu)
			sum += row[j]
		}
		for j := range row {
			row[j] /= sum
		}
		taps1d[q] = row
	}

	k.Taps = make([][][][]complex128, nOffsets)
	for qy := 0; qy < nOffsets; qy++ {
		k.Taps[qy] = make([][][]complex128, nOffsets)
		for qx := 0; qx < nOffsets; qx++ {
			block := MakePlane(support, support)
			for j := 0; j < support; j++ {
				for i := 0; i < support; i++ {
					block[j][i] = complex(taps1d[qy][j]*taps1d[qx][i], 0)
				}
			}
			k.Taps[qy][qx] = block
		}
	}
	return k
}

// buildWKernel constructs a w-projection stencil: the anti-aliasing taper
// multiplied by the w-dependent chirp exp(-2*pi*i*w*(sqrt(1-l^2-m^2)-1))
// over the field of view, transformed to the uv domain, and sampled at
// oversampled tap positions. At w=0 this reduces to the anti-aliasing
// kernel. The same build-a-complex-plane-then-transform shape as the plain
// kernel, just with the phase screen folded in.
func buildWKernel(support, oversampling int, w, fov float64) *Kernel {
	nf := farFieldSize
	centre := nf / 2

	screen := MakePlane(nf, nf)
	for y := 0; y < nf; y++ {
		m := float64(y-centre) * fov / float64(nf)
		nuY := float64(y-centre) / float64(centre)
		for x := 0; x < nf; x++ {
			l := float64(x-centre) * fov / float64(nf)
			nuX := float64(x-centre) / float64(centre)
			r2 := l*l + m*m
			if r2 >= 1.0 {
				continue
			}
			taper := spheroidal(nuY) * spheroidal(nuX)
			phase := -2.0 * math.Pi * w * (math.Sqrt(1.0-r2) - 1.0)
			screen[y][x] = complex(taper*math.Cos(phase), taper*math.Sin(phase))
		}
	}

	// Zero-pad in the image domain to oversample the uv-domain taps.
	nq := nf * oversampling
	padded := MakePlane(nq, nq)
	off := nq/2 - centre
	for y := 0; y < nf; y++ {
		copy(padded[y+off][off:off+nf], screen[y])
	}
	af := ImageToGrid(padded)

	k := &Kernel{Support: support, Oversampling: oversampling}
	half := (support - 1) / 2
	nOffsets := oversampling + 1
	cq := nq / 2

	k.Taps = make([][][][]complex128, nOffsets)
	for qy := 0; qy < nOffsets; qy++ {
		fy := qy - oversampling/2
		k.Taps[qy] = make([][][]complex128, nOffsets)
		for qx := 0; qx < nOffsets; qx++ {
			fx := qx - oversampling/2
			block := MakePlane(support, support)
			var sum complex128
			for j := 0; j < support; j++ {
				ay := cq + (j-half)*oversampling - fy
				for i := 0; i < support; i++ {
					ax := cq + (i-half)*oversampling - fx
					block[j][i] = af[ay][ax]
					sum += block[j][i]
				}
			}
			if sum != 0 {
				for j := 0; j < support; j++ {
					for i := 0; i < support; i++ {
						block[j][i] /= sum
					}
				}
			}
			k.Taps[qy][qx] = block
		}
	}
	return k
}
