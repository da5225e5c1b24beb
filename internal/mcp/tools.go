package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/litescript/ndastro/internal/ayanamsa"
	"github.com/litescript/ndastro/internal/ephem"
)

var bodyHelp = "Body code or name: " + strings.Join(bodyCodes(), ", ")

func bodyCodes() []string {
	out := make([]string, 0, len(ephem.Bodies))
	for _, b := range ephem.KnownBodies() {
		out = append(out, strings.ToLower(b.String()))
	}
	return out
}

func systemKeys() []string {
	out := make([]string, 0, len(ayanamsa.Systems())+1)
	for _, s := range ayanamsa.Systems() {
		out = append(out, s.String())
	}
	return append(out, "tropical")
}

var (
	timeParam = mcp.WithString("time",
		mcp.Description("Instant in RFC 3339 or YYYY-MM-DD[THH:MM[:SS]] (UTC); defaults to now"))
	latParam = mcp.WithNumber("lat",
		mcp.Description("Observer latitude in degrees, north positive; defaults to the configured observer"))
	lonParam = mcp.WithNumber("lon",
		mcp.Description("Observer longitude in degrees, east positive; defaults to the configured observer"))
	ayanamsaParam = mcp.WithString("ayanamsa",
		mcp.Description("Ayanamsa system for sidereal longitudes, or \"tropical\"; defaults to the configured system"),
		mcp.Enum(systemKeys()...))
)

var ayanamsaGetToolDef = mcp.NewTool("ayanamsa_get",
	mcp.WithDescription("Ayanamsa (sidereal offset) in degrees for one system at a date. Time of day is ignored."),
	mcp.WithString("system",
		mcp.Description("Ayanamsa system, e.g. lahiri, raman, krishnamurti, fagan_bradley"),
		mcp.Enum(systemKeys()[:len(ayanamsa.Systems())]...)),
	timeParam,
)

var ayanamsaListToolDef = mcp.NewTool("ayanamsa_list",
	mcp.WithDescription("Ayanamsa values of every supported system at a date."),
	timeParam,
)

var positionGetToolDef = mcp.NewTool("position_get",
	mcp.WithDescription("Apparent ecliptic position and daily speeds of one body for an observer. Nodes and the ascendant report latitude and distance 0."),
	mcp.WithString("body",
		mcp.Required(),
		mcp.Description(bodyHelp)),
	latParam,
	lonParam,
	timeParam,
	ayanamsaParam,
)

var positionsGetToolDef = mcp.NewTool("positions_get",
	mcp.WithDescription("Positions of several bodies at once. An empty or missing list returns every known body."),
	mcp.WithArray("bodies",
		mcp.Description("Body codes or names; see position_get"),
		mcp.Items(map[string]any{"type": "string"})),
	latParam,
	lonParam,
	timeParam,
	ayanamsaParam,
)

var retrogradeWindowToolDef = mcp.NewTool("retrograde_window",
	mcp.WithDescription("Whether a body is retrograde at an instant and, if so, when the retrograde arc started and ends. The Sun and Moon are never retrograde."),
	mcp.WithString("body",
		mcp.Required(),
		mcp.Description(bodyHelp)),
	latParam,
	lonParam,
	timeParam,
)

var ascendantGetToolDef = mcp.NewTool("ascendant_get",
	mcp.WithDescription("Ecliptic longitude rising on the eastern horizon."),
	latParam,
	lonParam,
	timeParam,
	ayanamsaParam,
)

var sunriseSunsetToolDef = mcp.NewTool("sunrise_sunset",
	mcp.WithDescription("Sunrise and sunset of the local day containing the given UTC date."),
	latParam,
	lonParam,
	timeParam,
)
