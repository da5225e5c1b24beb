package ephem

import (
	"strings"

	engerrors "github.com/litescript/ndastro/internal/errors"
)

// Body identifies a chart point: a physical body, a lunar node, or the ascendant.
type Body int

const (
	Empty     Body = -1
	Ascendant Body = 0
	Sun       Body = 1
	Moon      Body = 2
	Mars      Body = 3
	Mercury   Body = 4
	Jupiter   Body = 5
	Venus     Body = 6
	Saturn    Body = 7
	Rahu      Body = 8
	Kethu     Body = 9
)

// BodyInfo contains the identity data for a body.
type BodyInfo struct {
	Body   Body
	Code   string // ephemeris lookup code (e.g. "mars barycenter")
	Name   string // display name (e.g. "MARS")
	Color  string // #RRGGBB used by chart renderers
	NAIFID int    // NAIF SPICE ID, 0 for computed points
}

// Bodies is the identity table, ordered by Body value.
var Bodies = []BodyInfo{
	{Body: Empty, Code: "empty", Name: "EMPTY", Color: "#000000"},
	{Body: Ascendant, Code: "ascendant", Name: "ASCENDANT", Color: "#FFFFFF"},
	{Body: Sun, Code: "sun", Name: "SUN", Color: "#FFD700", NAIFID: 10},
	{Body: Moon, Code: "moon", Name: "MOON", Color: "#C0C0C0", NAIFID: 301},
	{Body: Mars, Code: "mars barycenter", Name: "MARS", Color: "#FF0000", NAIFID: 4},
	{Body: Mercury, Code: "mercury", Name: "MERCURY", Color: "#008000", NAIFID: 199},
	{Body: Jupiter, Code: "jupiter barycenter", Name: "JUPITER", Color: "#FFFF00", NAIFID: 5},
	{Body: Venus, Code: "venus", Name: "VENUS", Color: "#FF69B4", NAIFID: 299},
	{Body: Saturn, Code: "saturn barycenter", Name: "SATURN", Color: "#00008B", NAIFID: 6},
	{Body: Rahu, Code: "rahu", Name: "RAHU", Color: "#8A2BE2"},
	{Body: Kethu, Code: "kethu", Name: "KETHU", Color: "#8B0000"},
}

// BodiesByCode maps ephemeris codes to body info.
var BodiesByCode = func() map[string]BodyInfo {
	m := make(map[string]BodyInfo, len(Bodies))
	for _, b := range Bodies {
		m[b.Code] = b
	}
	return m
}()

// bodiesByName maps lowercase display names, codes and common aliases to body info.
var bodiesByName = func() map[string]BodyInfo {
	m := make(map[string]BodyInfo, len(Bodies)*2)
	for _, b := range Bodies {
		m[normalizeName(b.Name)] = b
		m[normalizeName(b.Code)] = b
	}
	addVariation := func(variation string, body Body) {
		m[normalizeName(variation)] = body.Info()
	}
	addVariation("ketu", Kethu)
	addVariation("lagna", Ascendant)
	addVariation("asc", Ascendant)
	addVariation("north node", Rahu)
	addVariation("south node", Kethu)
	delete(m, "empty")
	return m
}()

// normalizeName lowercases and collapses whitespace for lookups.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Info returns the identity data for b. Unknown values map to Empty.
func (b Body) Info() BodyInfo {
	if !b.Valid() {
		return Bodies[0]
	}
	return Bodies[int(b)+1]
}

// Valid reports whether b is a member of the enumeration, Empty included.
func (b Body) Valid() bool {
	return b >= Empty && b <= Kethu
}

// Code returns the ephemeris lookup code.
func (b Body) Code() string { return b.Info().Code }

// Color returns the display color as #RRGGBB.
func (b Body) Color() string { return b.Info().Color }

// NAIFID returns the NAIF SPICE ID, or 0 for computed points.
func (b Body) NAIFID() int { return b.Info().NAIFID }

// String returns the upper-case display name. Values outside the
// enumeration render as "empty".
func (b Body) String() string {
	if !b.Valid() {
		return "empty"
	}
	return b.Info().Name
}

// IsNode reports whether b is one of the lunar nodes.
func (b Body) IsNode() bool { return b == Rahu || b == Kethu }

// IsLuminary reports whether b is the Sun or the Moon.
func (b Body) IsLuminary() bool { return b == Sun || b == Moon }

// IsPhysical reports whether b has an ephemeris of its own.
func (b Body) IsPhysical() bool { return b.NAIFID() != 0 }

// FromCode maps an ephemeris code to its body. Unknown codes return Empty.
func FromCode(code string) Body {
	if info, ok := BodiesByCode[code]; ok {
		return info.Body
	}
	return Empty
}

// ParseBody resolves a code, display name or alias, ignoring case.
// Unlike FromCode it rejects unknown identifiers and Empty.
func ParseBody(s string) (Body, error) {
	if info, ok := bodiesByName[normalizeName(s)]; ok {
		return info.Body, nil
	}
	return Empty, engerrors.NewUnknownBody(s)
}

// KnownBodies returns every chart point in Body order, Empty excluded.
func KnownBodies() []Body {
	out := make([]Body, 0, len(Bodies)-1)
	for _, b := range Bodies {
		if b.Body != Empty {
			out = append(out, b.Body)
		}
	}
	return out
}

// Names returns the display names of every body, Empty included.
func Names() []string {
	out := make([]string, len(Bodies))
	for i, b := range Bodies {
		out[i] = b.Name
	}
	return out
}
