package astro

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// obliquityRad is the J2000 obliquity of the ecliptic.
const obliquityRad = 23.439291 * math.Pi / 180

// EquatorialToEcliptic rotates an equatorial (ICRF) vector into the J2000
// ecliptic frame. Units are preserved.
func EquatorialToEcliptic(eq r3.Vec) r3.Vec {
	cosE := math.Cos(obliquityRad)
	sinE := math.Sin(obliquityRad)
	return r3.Vec{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}

// EclipticToEquatorial is the inverse of EquatorialToEcliptic.
func EclipticToEquatorial(ecl r3.Vec) r3.Vec {
	cosE := math.Cos(obliquityRad)
	sinE := math.Sin(obliquityRad)
	return r3.Vec{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// EclipticLongitude returns the longitude of an ecliptic vector in degrees, 0-360.
func EclipticLongitude(ecl r3.Vec) float64 {
	return normalizeAngle360(radToDeg(math.Atan2(ecl.Y, ecl.X)))
}

// EclipticLatitude returns the latitude of an ecliptic vector in degrees.
func EclipticLatitude(ecl r3.Vec) float64 {
	r := r3.Norm(ecl)
	if r == 0 {
		return 0
	}
	return radToDeg(math.Asin(ecl.Z / r))
}

// KmToAU converts kilometers to astronomical units.
func (c Constants) KmToAU(km float64) float64 {
	return km / c.AUKm
}
