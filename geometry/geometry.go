// Package geometry provides the coordinate conversions used throughout the
// imaging code: sky direction to tangent-plane (l,m,n) direction cosines,
// station coordinates to baseline (u,v,w) for a given hour angle and
// declination, and the metres-to-wavelengths scaling applied per channel.
package geometry

import "math"

// SpeedOfLight in metres per second.
const SpeedOfLight = 299792458.0

// Direction is a sky position. RA and Dec are in radians.
type Direction struct {
	RA  float64
	Dec float64
}

// DirectionToLMN converts a direction to (l,m,n) direction cosines relative
// to the phase centre. n is the full direction cosine, so n=1 at the centre;
// the w-term phase uses n-1.
func DirectionToLMN(d, centre Direction) (l, m, n float64) {
	dra := d.RA - centre.RA
	l = math.Cos(d.Dec) * math.Sin(dra)
	m = math.Sin(d.Dec)*math.Cos(centre.Dec) - math.Cos(d.Dec)*math.Sin(centre.Dec)*math.Cos(dra)
	n = math.Sin(d.Dec)*math.Sin(centre.Dec) + math.Cos(d.Dec)*math.Cos(centre.Dec)*math.Cos(dra)
	return l, m, n
}

// LMNToDirection is the inverse of DirectionToLMN. It reconstructs the sky
// direction from tangent-plane coordinates, taking n = sqrt(1 - l^2 - m^2).
func LMNToDirection(l, m float64, centre Direction) Direction {
	n := math.Sqrt(1.0 - l*l - m*m)
	dec := math.Asin(m*math.Cos(centre.Dec) + n*math.Sin(centre.Dec))
	ra := centre.RA + math.Atan2(l, n*math.Cos(centre.Dec)-m*math.Sin(centre.Dec))
	return Direction{RA: ra, Dec: dec}
}

// BaselineToUVW rotates a baseline vector (in station coordinates, metres)
// into the (u,v,w) frame for hour angle ha and declination dec, both in
// radians. u points east, v north, and w toward the phase centre.
func BaselineToUVW(xyz [3]float64, ha, dec float64) [3]float64 {
	x, y, z := xyz[0], xyz[1], xyz[2]
	u := math.Sin(ha)*x + math.Cos(ha)*y
	v0 := -math.Cos(ha)*x + math.Sin(ha)*y
	v := math.Cos(dec)*z + math.Sin(dec)*v0
	w := math.Sin(dec)*z - math.Cos(dec)*v0
	return [3]float64{u, v, w}
}

// MetresToWavelengths scales a uvw vector in metres to wavelengths for the
// given frequency in Hz.
func MetresToWavelengths(uvw [3]float64, frequency float64) [3]float64 {
	s := frequency / SpeedOfLight
	return [3]float64{uvw[0] * s, uvw[1] * s, uvw[2] * s}
}

// Linspace returns n evenly spaced values from start to end inclusive.
func Linspace(start, end float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
