package ephem

import (
	"math"
	"time"

	"github.com/litescript/ndastro/internal/astro"
)

// lunarTerm is one periodic term of the lunar theory: multipliers of the
// arguments D, M, M', F and the sine (longitude/latitude, 1e-6 degrees) and
// cosine (distance, 1e-3 km) coefficients.
type lunarTerm struct {
	D, M, Mp, F int
	Sin, Cos    float64
}

// Leading terms of Meeus, Astronomical Algorithms, tables 47.A and 47.B.
var lunarLonDist = []lunarTerm{
	{0, 0, 1, 0, 6288774, -20905355},
	{2, 0, -1, 0, 1274027, -3699111},
	{2, 0, 0, 0, 658314, -2955968},
	{0, 0, 2, 0, 213618, -569925},
	{0, 1, 0, 0, -185116, 48888},
	{0, 0, 0, 2, -114332, -3149},
	{2, 0, -2, 0, 58793, 246158},
	{2, -1, -1, 0, 57066, -152138},
	{2, 0, 1, 0, 53322, -170733},
	{2, -1, 0, 0, 45758, -204586},
	{0, 1, -1, 0, -40923, -129620},
	{1, 0, 0, 0, -34720, 108743},
	{0, 1, 1, 0, -30383, 104755},
	{2, 0, 0, -2, 15327, 10321},
	{0, 0, 1, 2, -12528, 0},
	{0, 0, 1, -2, 10980, 79661},
	{4, 0, -1, 0, 10675, -34782},
	{0, 0, 3, 0, 10034, -23210},
	{4, 0, -2, 0, 8548, -21636},
	{2, 1, -1, 0, -7888, 24208},
	{2, 1, 0, 0, -6766, 30824},
	{1, 0, -1, 0, -5163, -8379},
	{1, 1, 0, 0, 4987, -16675},
	{2, -1, 1, 0, 4036, -12831},
	{2, 0, 2, 0, 3994, -10445},
	{4, 0, 0, 0, 3861, -11650},
	{2, 0, -3, 0, 3665, 14403},
	{0, 1, -2, 0, -2689, -7003},
	{2, 0, -1, 2, -2602, 0},
	{2, -1, -2, 0, 2390, 10056},
	{1, 0, 1, 0, -2348, 6322},
	{2, -2, 0, 0, 2236, -9884},
}

var lunarLat = []lunarTerm{
	{0, 0, 0, 1, 5128122, 0},
	{0, 0, 1, 1, 280602, 0},
	{0, 0, 1, -1, 277693, 0},
	{2, 0, 0, -1, 173237, 0},
	{2, 0, -1, 1, 55413, 0},
	{2, 0, -1, -1, 46271, 0},
	{2, 0, 0, 1, 32573, 0},
	{0, 0, 2, 1, 17198, 0},
	{2, 0, 1, -1, 9266, 0},
	{0, 0, 2, -1, 8822, 0},
	{2, -1, 0, -1, 8216, 0},
	{2, 0, -2, -1, 4324, 0},
	{2, 0, 1, 1, 4200, 0},
	{2, 1, 0, -1, -3359, 0},
	{2, -1, -1, 1, 2463, 0},
	{2, -1, 0, 1, 2211, 0},
	{2, -1, -1, -1, 2065, 0},
	{0, 1, -1, -1, -1870, 0},
	{4, 0, -1, -1, 1828, 0},
	{0, 1, 0, 1, -1794, 0},
}

// MoonEcliptic returns the apparent geocentric ecliptic position of the Moon
// referred to the true equinox of date. Dist is in AU.
func MoonEcliptic(t time.Time) astro.Spherical {
	T := astro.JulianCenturies(astro.JulianEphemerisDate(t))
	T2, T3, T4 := T*T, T*T*T, T*T*T*T

	Lp := astro.NormalizeDegree(218.3164477 + 481267.88123421*T - 0.0015786*T2 + T3/538841 - T4/65194000)
	D := astro.NormalizeDegree(297.8501921 + 445267.1114034*T - 0.0018819*T2 + T3/545868 - T4/113065000)
	M := astro.NormalizeDegree(357.5291092 + 35999.0502909*T - 0.0001536*T2 + T3/24490000)
	Mp := astro.NormalizeDegree(134.9633964 + 477198.8675055*T + 0.0087414*T2 + T3/69699 - T4/14712000)
	F := astro.NormalizeDegree(93.2720950 + 483202.0175233*T - 0.0036539*T2 - T3/3526000 + T4/863310000)

	A1 := astro.DegToRad(119.75 + 131.849*T)
	A2 := astro.DegToRad(53.09 + 479264.290*T)
	A3 := astro.DegToRad(313.45 + 481266.484*T)
	E := 1 - 0.002516*T - 0.0000074*T2

	arg := func(term lunarTerm) (angle, scale float64) {
		angle = astro.DegToRad(float64(term.D)*D + float64(term.M)*M + float64(term.Mp)*Mp + float64(term.F)*F)
		scale = 1
		switch term.M {
		case 1, -1:
			scale = E
		case 2, -2:
			scale = E * E
		}
		return angle, scale
	}

	var sumL, sumR, sumB float64
	for _, term := range lunarLonDist {
		a, s := arg(term)
		sumL += term.Sin * s * math.Sin(a)
		sumR += term.Cos * s * math.Cos(a)
	}
	for _, term := range lunarLat {
		a, s := arg(term)
		sumB += term.Sin * s * math.Sin(a)
	}

	LpR := astro.DegToRad(Lp)
	MpR := astro.DegToRad(Mp)
	FR := astro.DegToRad(F)

	sumL += 3958*math.Sin(A1) + 1962*math.Sin(LpR-FR) + 318*math.Sin(A2)
	sumB += -2235*math.Sin(LpR) + 382*math.Sin(A3) + 175*math.Sin(A1-FR) +
		175*math.Sin(A1+FR) + 127*math.Sin(LpR-MpR) - 115*math.Sin(LpR+MpR)

	dpsi, _ := astro.Nutation(T)
	distKm := 385000.56 + sumR/1000

	return astro.Spherical{
		LonDeg: astro.NormalizeDegree(Lp + sumL/1e6 + dpsi),
		LatDeg: sumB / 1e6,
		Dist:   distKm / astro.AU,
	}
}
