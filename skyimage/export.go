package skyimage

import (
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"sort"
)

// SliceToGray16 renders one (channel, polarisation) slice as a 16-bit
// grayscale image with fixed physical scaling: Y16 = round(v*scale), clamped
// to [0, 65535]. Non-finite pixels render as zero.
func (im *Image) SliceToGray16(channel, pol int, scale float64) (*image.Gray16, error) {
	if scale <= 0 {
		return nil, errors.New("skyimage: scale must be > 0")
	}
	_, _, ny, nx := im.Shape()
	img := image.NewGray16(image.Rect(0, 0, nx, ny))
	for y := 0; y < ny; y++ {
		row := y * img.Stride
		for x := 0; x < nx; x++ {
			v := im.Data[channel][pol][y][x]
			i := row + 2*x
			if math.IsNaN(v) || math.IsInf(v, 0) {
				img.Pix[i], img.Pix[i+1] = 0, 0
				continue
			}
			u := math.Round(v * scale)
			if u < 0 {
				u = 0
			} else if u > 65535 {
				u = 65535
			}
			y16 := uint16(u)
			// Gray16 Pix is big-endian per pixel: high then low.
			img.Pix[i] = uint8(y16 >> 8)
			img.Pix[i+1] = uint8(y16)
		}
	}
	return img, nil
}

// SliceToGrayPercentile renders one slice as an 8-bit grayscale view with a
// percentile stretch: values from the pLow to the pHigh percentile map to
// 0..255 and clamp. Robust to the bright-point-source outliers dirty images
// tend to have.
func (im *Image) SliceToGrayPercentile(channel, pol int, pLow, pHigh float64) (*image.Gray, error) {
	if !(0 <= pLow && pLow < pHigh && pHigh <= 100) {
		return nil, errors.New("skyimage: percentiles must satisfy 0 <= pLow < pHigh <= 100")
	}
	_, _, ny, nx := im.Shape()

	vals := make([]float64, 0, ny*nx)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			v := im.Data[channel][pol][y][x]
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return nil, errors.New("skyimage: slice has no finite values")
	}
	sort.Float64s(vals)

	percentile := func(p float64) float64 {
		if p <= 0 {
			return vals[0]
		}
		if p >= 100 {
			return vals[len(vals)-1]
		}
		pos := (p / 100.0) * float64(len(vals)-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i >= len(vals)-1 {
			return vals[len(vals)-1]
		}
		return vals[i]*(1-f) + vals[i+1]*f
	}

	lo := percentile(pLow)
	hi := percentile(pHigh)
	if hi == lo {
		hi = lo + 1 // avoid divide-by-zero; image becomes mostly constant
	}

	img := image.NewGray(image.Rect(0, 0, nx, ny))
	for y := 0; y < ny; y++ {
		row := y * img.Stride
		for x := 0; x < nx; x++ {
			v := im.Data[channel][pol][y][x]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				img.Pix[row+x] = 0
				continue
			}
			t := (v - lo) / (hi - lo)
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			img.Pix[row+x] = uint8(math.Round(t * 255.0))
		}
	}
	return img, nil
}

// SavePNG writes any image to a PNG file.
func SavePNG(filename string, img image.Image) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
