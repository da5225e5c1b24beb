package ephem

import (
	"math"

	"github.com/litescript/ndastro/internal/astro"
)

// orbitalElements are mean Keplerian elements referred to the J2000 ecliptic
// and equinox, with linear rates per Julian century (Standish, JPL
// "Approximate Positions of the Planets", valid 1800-2050 AD).
type orbitalElements struct {
	A, ADot       float64 // semi-major axis, AU
	E, EDot       float64 // eccentricity
	I, IDot       float64 // inclination, degrees
	L, LDot       float64 // mean longitude, degrees
	Peri, PeriDot float64 // longitude of perihelion, degrees
	Node, NodeDot float64 // longitude of the ascending node, degrees
}

var earthMoonBarycenter = orbitalElements{
	A: 1.00000261, ADot: 0.00000562,
	E: 0.01671123, EDot: -0.00004392,
	I: -0.00001531, IDot: -0.01294668,
	L: 100.46457166, LDot: 35999.37244981,
	Peri: 102.93768193, PeriDot: 0.32327364,
	Node: 0, NodeDot: 0,
}

var planetElements = map[Body]orbitalElements{
	Mercury: {
		A: 0.38709927, ADot: 0.00000037,
		E: 0.20563593, EDot: 0.00001906,
		I: 7.00497902, IDot: -0.00594749,
		L: 252.25032350, LDot: 149472.67411175,
		Peri: 77.45779628, PeriDot: 0.16047689,
		Node: 48.33076593, NodeDot: -0.12534081,
	},
	Venus: {
		A: 0.72333566, ADot: 0.00000390,
		E: 0.00677672, EDot: -0.00004107,
		I: 3.39467605, IDot: -0.00078890,
		L: 181.97909950, LDot: 58517.81538729,
		Peri: 131.60246718, PeriDot: 0.00268329,
		Node: 76.67984255, NodeDot: -0.27769418,
	},
	Mars: {
		A: 1.52371034, ADot: 0.00001847,
		E: 0.09339410, EDot: 0.00007882,
		I: 1.84969142, IDot: -0.00813131,
		L: -4.55343205, LDot: 19140.30268499,
		Peri: -23.94362959, PeriDot: 0.44441088,
		Node: 49.55953891, NodeDot: -0.29257343,
	},
	Jupiter: {
		A: 5.20288700, ADot: -0.00011607,
		E: 0.04838624, EDot: -0.00013253,
		I: 1.30439695, IDot: -0.00183714,
		L: 34.39644051, LDot: 3034.74612775,
		Peri: 14.72847983, PeriDot: 0.21252668,
		Node: 100.47390909, NodeDot: 0.20469106,
	},
	Saturn: {
		A: 9.53667594, ADot: -0.00125060,
		E: 0.05386179, EDot: -0.00050991,
		I: 2.48599187, IDot: 0.00193609,
		L: 49.95424423, LDot: 1222.49362201,
		Peri: 92.59887831, PeriDot: -0.41897216,
		Node: 113.66242448, NodeDot: -0.28867794,
	},
}

// heliocentricJ2000 returns the heliocentric position in AU on the J2000
// ecliptic at Julian Ephemeris Date jde.
func heliocentricJ2000(el orbitalElements, jde float64) astro.Vec3 {
	T := astro.JulianCenturies(jde)

	a := el.A + el.ADot*T
	e := el.E + el.EDot*T
	inc := astro.DegToRad(el.I + el.IDot*T)
	L := el.L + el.LDot*T
	peri := el.Peri + el.PeriDot*T
	node := el.Node + el.NodeDot*T

	M := astro.DegToRad(astro.NormalizeDegree(L - peri))
	omega := astro.DegToRad(peri - node)
	bigOmega := astro.DegToRad(node)

	E := solveKepler(M, e)
	xp := a * (math.Cos(E) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(E)

	cw, sw := math.Cos(omega), math.Sin(omega)
	cO, sO := math.Cos(bigOmega), math.Sin(bigOmega)
	ci, si := math.Cos(inc), math.Sin(inc)

	return astro.Vec3{
		X: (cw*cO-sw*sO*ci)*xp + (-sw*cO-cw*sO*ci)*yp,
		Y: (cw*sO+sw*cO*ci)*xp + (-sw*sO+cw*cO*ci)*yp,
		Z: (sw*si)*xp + (cw*si)*yp,
	}
}

// solveKepler returns the eccentric anomaly for mean anomaly M (radians).
func solveKepler(M, e float64) float64 {
	E := M + e*math.Sin(M)
	for i := 0; i < 20; i++ {
		dE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= dE
		if math.Abs(dE) < 1e-12 {
			break
		}
	}
	return E
}
