package astro

import (
	"fmt"
	"math"
)

// NormalizeDegree folds an angle into [0, 360).
func NormalizeDegree(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod(-1e-15, 360) + 360 rounds to 360
	if a >= 360 {
		a = 0
	}
	return a
}

// AngleDiff returns the signed shortest rotation from a to b in degrees, in (-180, 180].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// FormatDMS renders decimal degrees as D°MM'SS".
func FormatDMS(deg float64) string {
	sign := ""
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	totalSec := math.Round(deg * 3600)
	d := int(totalSec / 3600)
	m := int(math.Mod(totalSec, 3600) / 60)
	s := int(math.Mod(totalSec, 60))
	return fmt.Sprintf("%s%d°%02d'%02d\"", sign, d, m, s)
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return degToRad(deg) }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return radToDeg(rad) }
