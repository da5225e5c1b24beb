// Package ayanamsa implements the sidereal correction models used to turn
// tropical ecliptic longitudes into sidereal ones.
//
// Every model is evaluated at date resolution: the instant is reduced to its
// UTC civil date, and the elapsed Julian centuries T are measured from J2000.0
// to 0h UT of that date. Precision degrades for dates many millennia from
// J2000.0.
package ayanamsa

import (
	"time"

	"github.com/litescript/ndastro/internal/astro"
)

// ElapsedCenturies returns the Julian centuries from J2000.0 to 0h UT of the
// given civil date. Negative before the epoch.
func ElapsedCenturies(year int, month time.Month, day int) float64 {
	return astro.JulianCenturies(astro.JulianDay0(year, month, day))
}

// PrecessionRateFactor returns the dimensionless factor B6 = 1 + T² for the
// given civil date. It is exactly 1 at J2000.0 and grows with |T| in both
// directions of time.
func PrecessionRateFactor(year int, month time.Month, day int) float64 {
	return rateFactor(ElapsedCenturies(year, month, day))
}

func rateFactor(T float64) float64 {
	return 1 + T*T
}
