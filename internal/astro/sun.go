package astro

import (
	"math"
	"time"
)

// SunEcliptic returns the Sun's apparent geocentric ecliptic longitude and
// latitude (degrees, ecliptic of date) and distance in AU.
// Uses the low-precision solar theory from the Astronomical Almanac / Meeus ch. 25.
// Accuracy: ~0.01 degrees.
func SunEcliptic(t time.Time) Spherical {
	T := JulianCenturies(JulianEphemerisDate(t))

	// Mean longitude of the Sun (degrees)
	L0 := NormalizeDegree(280.46646 + 36000.76983*T + 0.0003032*T*T)

	// Mean anomaly of the Sun (degrees)
	M := NormalizeDegree(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	e := 0.016708634 - 0.000042037*T - 0.0000001267*T*T

	// Equation of center
	C := (1.914602 - 0.004817*T - 0.000014*T*T) * math.Sin(Mrad)
	C += (0.019993 - 0.000101*T) * math.Sin(2*Mrad)
	C += 0.000289 * math.Sin(3*Mrad)

	trueLon := L0 + C
	v := degToRad(M + C)
	R := 1.000001018 * (1 - e*e) / (1 + e*math.Cos(v))

	// Aberration (-20.4898"/R) and nutation in longitude
	dpsi, _ := Nutation(T)
	apparent := trueLon - 0.0056916/R + dpsi

	return Spherical{LonDeg: NormalizeDegree(apparent), LatDeg: 0, Dist: R}
}

// SunPosition calculates the apparent equatorial coordinates of the Sun.
// Accuracy: ~0.01 degrees for RA, ~0.001 degrees for Dec.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	T := JulianCenturies(JulianEphemerisDate(t))
	ecl := SunEcliptic(t)

	eq := ToSpherical(EclipticToEquatorial(FromSpherical(Spherical{LonDeg: ecl.LonDeg, Dist: 1}), TrueObliquity(T)))
	return eq.LonDeg, eq.LatDeg
}
