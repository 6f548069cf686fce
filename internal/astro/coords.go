// Package astro combines ephemeris series into Earth, Moon and Sun states
// and provides the sky math built on them.
package astro

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (ICRF)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation in degrees (0=horizon, 90=zenith)

	RangeKm float64
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg float64 // Latitude in degrees (north positive)
	LonDeg float64 // Longitude in degrees (east positive)
	Name   string
}

// EquatorialFromVector converts a geocentric equatorial vector in km to
// RA/Dec and range. Az/El are left zero.
func EquatorialFromVector(v r3.Vec) SkyCoord {
	r := r3.Norm(v)
	if r == 0 {
		return SkyCoord{}
	}
	return SkyCoord{
		RAdeg:   normalizeAngle360(radToDeg(math.Atan2(v.Y, v.X))),
		DecDeg:  radToDeg(math.Asin(v.Z / r)),
		RangeKm: r,
	}
}

// EquatorialToHorizontal fills in Az/El for an observer at Julian Date jd.
// Parallax is ignored, so Moon elevations are off by up to a degree.
func EquatorialToHorizontal(eq SkyCoord, obs Observer, jd float64) SkyCoord {
	lat := degToRad(obs.LatDeg)
	dec := degToRad(eq.DecDeg)
	ha := degToRad(localSiderealTime(jd, obs.LonDeg) - eq.RAdeg)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(math.Max(-1, math.Min(1, sinAlt)))

	cosAz := (math.Sin(dec) - math.Sin(alt)*math.Sin(lat)) / (math.Cos(alt) * math.Cos(lat))
	// Clamp for floating point error
	if cosAz > 1 {
		cosAz = 1
	} else if cosAz < -1 {
		cosAz = -1
	}
	az := math.Acos(cosAz)

	// Positive hour angle means the object is west of the meridian.
	if math.Sin(ha) > 0 {
		az = 2*math.Pi - az
	}

	out := eq
	out.AzDeg = radToDeg(az)
	out.ElDeg = radToDeg(alt)
	return out
}

// localSiderealTime returns LST in degrees for a UT Julian Date.
func localSiderealTime(jd, lonDeg float64) float64 {
	return normalizeAngle360(greenwichMeanSiderealTime(jd) + lonDeg)
}

// greenwichMeanSiderealTime returns GMST in degrees (IAU 1982).
func greenwichMeanSiderealTime(jd float64) float64 {
	T := (jd - J2000) / 36525.0
	gmst := 280.46061837 +
		360.98564736629*(jd-J2000) +
		0.000387933*T*T -
		T*T*T/38710000.0
	return normalizeAngle360(gmst)
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
