package astro

import (
	"math"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// LightTimePerAU is the light travel time across one AU, in days.
const LightTimePerAU = 0.0057755183

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Spherical holds ecliptic (or equatorial) spherical coordinates.
type Spherical struct {
	LonDeg float64 // longitude / right ascension, [0, 360)
	LatDeg float64 // latitude / declination, [-90, 90]
	Dist   float64 // radius, same unit as the source vector
}

// ToSpherical converts a rectangular vector to spherical coordinates.
func ToSpherical(v Vec3) Spherical {
	r := v.Norm()
	if r == 0 {
		return Spherical{}
	}
	return Spherical{
		LonDeg: NormalizeDegree(radToDeg(math.Atan2(v.Y, v.X))),
		LatDeg: radToDeg(math.Asin(v.Z / r)),
		Dist:   r,
	}
}

// FromSpherical converts spherical coordinates to a rectangular vector.
func FromSpherical(s Spherical) Vec3 {
	lon := degToRad(s.LonDeg)
	lat := degToRad(s.LatDeg)
	return Vec3{
		X: s.Dist * math.Cos(lat) * math.Cos(lon),
		Y: s.Dist * math.Cos(lat) * math.Sin(lon),
		Z: s.Dist * math.Sin(lat),
	}
}

// EclipticLatitude returns the ecliptic latitude in degrees for a vector.
func EclipticLatitude(v Vec3) float64 {
	return ToSpherical(v).LatDeg
}

// EclipticLongitude returns the ecliptic longitude in degrees for a vector.
func EclipticLongitude(v Vec3) float64 {
	return ToSpherical(v).LonDeg
}

// EquatorialToEcliptic rotates equatorial XYZ into the ecliptic frame for the
// given obliquity in degrees. Output is in the input units.
func EquatorialToEcliptic(eq Vec3, epsDeg float64) Vec3 {
	cosE := math.Cos(degToRad(epsDeg))
	sinE := math.Sin(degToRad(epsDeg))

	return Vec3{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}

// EclipticToEquatorial rotates ecliptic XYZ into the equatorial frame for the
// given obliquity in degrees.
func EclipticToEquatorial(ecl Vec3, epsDeg float64) Vec3 {
	cosE := math.Cos(degToRad(epsDeg))
	sinE := math.Sin(degToRad(epsDeg))

	return Vec3{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// MeanObliquity returns the mean obliquity of the ecliptic in degrees (IAU 1980)
// for T Julian centuries from J2000.0.
func MeanObliquity(T float64) float64 {
	return 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
}

// TrueObliquity returns the mean obliquity corrected for nutation, in degrees.
func TrueObliquity(T float64) float64 {
	_, deps := Nutation(T)
	return MeanObliquity(T) + deps
}

// Nutation returns the nutation in longitude and in obliquity, in degrees,
// from the four leading terms of the IAU 1980 series (accuracy ~0.5").
func Nutation(T float64) (dpsi, deps float64) {
	omega := degToRad(125.04452 - 1934.136261*T)
	lSun := degToRad(280.4665 + 36000.7698*T)
	lMoon := degToRad(218.3165 + 481267.8813*T)

	dpsiArcsec := -17.20*math.Sin(omega) - 1.32*math.Sin(2*lSun) -
		0.23*math.Sin(2*lMoon) + 0.21*math.Sin(2*omega)
	depsArcsec := 9.20*math.Cos(omega) + 0.57*math.Cos(2*lSun) +
		0.10*math.Cos(2*lMoon) - 0.09*math.Cos(2*omega)

	return dpsiArcsec / 3600, depsArcsec / 3600
}

// GeneralPrecession returns the accumulated general precession in ecliptic
// longitude, in degrees, from J2000.0 to T Julian centuries (IAU 2006).
func GeneralPrecession(T float64) float64 {
	return (5028.796195*T + 1.1054348*T*T + 0.00007964*T*T*T) / 3600
}

// LightTimeFromAU returns the one-way light time in days for a distance in AU.
func LightTimeFromAU(au float64) float64 {
	return au * LightTimePerAU
}
