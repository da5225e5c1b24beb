package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/litescript/ndastro/internal/astro"
	"github.com/litescript/ndastro/internal/ayanamsa"
	"github.com/litescript/ndastro/internal/config"
	"github.com/litescript/ndastro/internal/ephem"
	engerrors "github.com/litescript/ndastro/internal/errors"
	"github.com/litescript/ndastro/internal/position"
	"github.com/litescript/ndastro/internal/retrograde"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	positions *position.Service
	detector  *retrograde.Detector
	cfg       *config.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance. cfg supplies the default
// observer and ayanamsa system.
func NewHandlers(positions *position.Service, detector *retrograde.Detector, cfg *config.Config, logger *zap.Logger) *Handlers {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		positions: positions,
		detector:  detector,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Request types for each tool

// Location is the observer and instant shared by most tools.
type Location struct {
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
	Time string   `json:"time,omitempty"`
}

// AyanamsaRequest represents the arguments for ayanamsa_get.
type AyanamsaRequest struct {
	System string `json:"system,omitempty"`
	Time   string `json:"time,omitempty"`
}

// AyanamsaListRequest represents the arguments for ayanamsa_list.
type AyanamsaListRequest struct {
	Time string `json:"time,omitempty"`
}

// PositionRequest represents the arguments for position_get.
type PositionRequest struct {
	Location
	Body     string `json:"body"`
	Ayanamsa string `json:"ayanamsa,omitempty"`
}

// PositionsRequest represents the arguments for positions_get.
type PositionsRequest struct {
	Location
	Bodies   []string `json:"bodies,omitempty"`
	Ayanamsa string   `json:"ayanamsa,omitempty"`
}

// RetrogradeRequest represents the arguments for retrograde_window.
type RetrogradeRequest struct {
	Location
	Body string `json:"body"`
}

// AscendantRequest represents the arguments for ascendant_get.
type AscendantRequest struct {
	Location
	Ayanamsa string `json:"ayanamsa,omitempty"`
}

// SunriseRequest represents the arguments for sunrise_sunset.
type SunriseRequest struct {
	Location
}

// Response types

// AyanamsaResult is one system's value at a date.
type AyanamsaResult struct {
	System      string  `json:"system"`
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Degrees     float64 `json:"degrees"`
	DMS         string  `json:"dms"`
	RatePerYear float64 `json:"rate_per_year"`
}

// BodyPosition is a position tagged with its body and frame.
type BodyPosition struct {
	Body string `json:"body"`
	position.Position
	Retrograde bool `json:"retrograde"`
}

// PositionsResult is the payload of position_get and positions_get.
type PositionsResult struct {
	Time      time.Time      `json:"time"`
	Lat       float64        `json:"lat"`
	Lon       float64        `json:"lon"`
	Ayanamsa  string         `json:"ayanamsa"`
	Offset    *float64       `json:"ayanamsa_degrees,omitempty"`
	Positions []BodyPosition `json:"positions"`
}

// RetrogradeResult is the payload of retrograde_window.
type RetrogradeResult struct {
	Body         string     `json:"body"`
	Time         time.Time  `json:"time"`
	IsRetrograde bool       `json:"is_retrograde"`
	Motion       string     `json:"motion"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	DurationDays float64    `json:"duration_days,omitempty"`
}

// AscendantResult is the payload of ascendant_get.
type AscendantResult struct {
	Time     time.Time `json:"time"`
	Degrees  float64   `json:"degrees"`
	DMS      string    `json:"dms"`
	Ayanamsa string    `json:"ayanamsa"`
}

// SunriseResult is the payload of sunrise_sunset.
type SunriseResult struct {
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`
}

// Handler implementations

// HandleAyanamsaGet handles the ayanamsa_get tool call.
func (h *Handlers) HandleAyanamsaGet(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	input, err := decode[AyanamsaRequest](req)
	if err != nil {
		return nil, err
	}
	t, err := astro.ParseInstant(input.Time, h.now())
	if err != nil {
		return nil, err
	}

	name := input.System
	if name == "" {
		name = h.defaultSystem()
	}
	sys, err := ayanamsa.ParseSystem(name)
	if err != nil {
		return nil, err
	}
	return NewAyanamsaResult(sys, t), nil
}

// HandleAyanamsaList handles the ayanamsa_list tool call.
func (h *Handlers) HandleAyanamsaList(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	input, err := decode[AyanamsaListRequest](req)
	if err != nil {
		return nil, err
	}
	t, err := astro.ParseInstant(input.Time, h.now())
	if err != nil {
		return nil, err
	}

	out := make([]AyanamsaResult, 0, len(ayanamsa.Systems()))
	for _, s := range ayanamsa.Systems() {
		out = append(out, NewAyanamsaResult(s, t))
	}
	return map[string]any{"systems": out}, nil
}

// HandlePositionGet handles the position_get tool call.
func (h *Handlers) HandlePositionGet(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	input, err := decode[PositionRequest](req)
	if err != nil {
		return nil, err
	}
	body, err := ephem.ParseBody(input.Body)
	if err != nil {
		return nil, err
	}
	lat, lon, t, err := h.resolve(input.Location)
	if err != nil {
		return nil, err
	}
	system, offset, err := h.sidereal(input.Ayanamsa, t)
	if err != nil {
		return nil, err
	}

	p, err := h.positions.Position(ctx, body, lat, lon, t, offset)
	if err != nil {
		return nil, err
	}
	return PositionsResult{
		Time:      t,
		Lat:       lat,
		Lon:       lon,
		Ayanamsa:  system,
		Offset:    offset,
		Positions: []BodyPosition{NewBodyPosition(body, p)},
	}, nil
}

// HandlePositionsGet handles the positions_get tool call.
func (h *Handlers) HandlePositionsGet(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	input, err := decode[PositionsRequest](req)
	if err != nil {
		return nil, err
	}
	bodies := make([]ephem.Body, 0, len(input.Bodies))
	for _, name := range input.Bodies {
		b, err := ephem.ParseBody(name)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	lat, lon, t, err := h.resolve(input.Location)
	if err != nil {
		return nil, err
	}
	system, offset, err := h.sidereal(input.Ayanamsa, t)
	if err != nil {
		return nil, err
	}

	got, err := h.positions.PositionsFor(ctx, bodies, lat, lon, t, offset)
	if err != nil {
		return nil, err
	}
	out := PositionsResult{Time: t, Lat: lat, Lon: lon, Ayanamsa: system, Offset: offset}
	for _, b := range ephem.KnownBodies() {
		if p, ok := got[b]; ok {
			out.Positions = append(out.Positions, NewBodyPosition(b, p))
		}
	}
	return out, nil
}

// HandleRetrogradeWindow handles the retrograde_window tool call.
func (h *Handlers) HandleRetrogradeWindow(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	input, err := decode[RetrogradeRequest](req)
	if err != nil {
		return nil, err
	}
	body, err := ephem.ParseBody(input.Body)
	if err != nil {
		return nil, err
	}
	lat, lon, t, err := h.resolve(input.Location)
	if err != nil {
		return nil, err
	}

	w, err := h.detector.Detect(ctx, t, body, lat, lon)
	if err != nil {
		return nil, err
	}
	return NewRetrogradeResult(body, t, w), nil
}

// HandleAscendantGet handles the ascendant_get tool call.
func (h *Handlers) HandleAscendantGet(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	input, err := decode[AscendantRequest](req)
	if err != nil {
		return nil, err
	}
	lat, lon, t, err := h.resolve(input.Location)
	if err != nil {
		return nil, err
	}
	system, offset, err := h.sidereal(input.Ayanamsa, t)
	if err != nil {
		return nil, err
	}

	asc, err := h.positions.AscendantPosition(ctx, lat, lon, t)
	if err != nil {
		return nil, err
	}
	if offset != nil {
		asc = astro.NormalizeDegree(asc - *offset)
	}
	return AscendantResult{Time: t, Degrees: asc, DMS: astro.FormatDMS(asc), Ayanamsa: system}, nil
}

// HandleSunriseSunset handles the sunrise_sunset tool call.
func (h *Handlers) HandleSunriseSunset(ctx context.Context, req mcp.CallToolRequest) (any, error) {
	input, err := decode[SunriseRequest](req)
	if err != nil {
		return nil, err
	}
	lat, lon, t, err := h.resolve(input.Location)
	if err != nil {
		return nil, err
	}

	rise, set, err := h.positions.SunriseSunset(ctx, lat, lon, t)
	if err != nil {
		return nil, err
	}
	return SunriseResult{Sunrise: rise, Sunset: set}, nil
}

// resolve fills the location from the configured observer and parses the time.
func (h *Handlers) resolve(loc Location) (lat, lon float64, t time.Time, err error) {
	latp, lonp := loc.Lat, loc.Lon
	if latp == nil {
		latp = h.cfg.Observer.Lat
	}
	if lonp == nil {
		lonp = h.cfg.Observer.Lon
	}
	if latp == nil || lonp == nil {
		return 0, 0, time.Time{}, engerrors.NewInvalidInput("lat and lon are required when no observer is configured", nil)
	}
	t, err = astro.ParseInstant(loc.Time, h.now())
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	return *latp, *lonp, t, nil
}

func (h *Handlers) defaultSystem() string {
	if _, err := ayanamsa.ParseSystem(h.cfg.Ayanamsa); err == nil {
		return h.cfg.Ayanamsa
	}
	return ayanamsa.Lahiri.String()
}

// sidereal resolves the requested system, falling back to the configured one.
// It returns the system key ("tropical" when none applies) and the offset.
func (h *Handlers) sidereal(name string, t time.Time) (string, *float64, error) {
	if name == "" {
		name = h.cfg.Ayanamsa
	}
	offset, err := ayanamsa.Sidereal(name, t)
	if err != nil {
		return "", nil, err
	}
	if offset == nil {
		return "tropical", nil, nil
	}
	sys, _ := ayanamsa.ParseSystem(name)
	return sys.String(), offset, nil
}

// NewAyanamsaResult evaluates s at the civil date of t.
func NewAyanamsaResult(s ayanamsa.System, t time.Time) AyanamsaResult {
	v := s.At(t)
	return AyanamsaResult{
		System:      s.String(),
		Name:        s.DisplayName(),
		Date:        t.UTC().Format(time.DateOnly),
		Degrees:     v,
		DMS:         astro.FormatDMS(v),
		RatePerYear: s.RatePerYear(t),
	}
}

// NewBodyPosition tags p with its body and motion.
func NewBodyPosition(b ephem.Body, p position.Position) BodyPosition {
	return BodyPosition{
		Body:       strings.ToLower(b.String()),
		Position:   p,
		Retrograde: p.Retrograde(),
	}
}

// NewRetrogradeResult describes w as seen from t.
func NewRetrogradeResult(body ephem.Body, t time.Time, w retrograde.Window) RetrogradeResult {
	out := RetrogradeResult{
		Body:         strings.ToLower(body.String()),
		Time:         t,
		IsRetrograde: w.Retrograde,
		Motion:       w.Motion().String(),
	}
	if w.Retrograde {
		start, end := w.Start, w.End
		out.Start, out.End = &start, &end
		out.DurationDays = w.Duration().Hours() / 24
	}
	return out
}

// errorResult creates an MCP error result from an error.
func errorResult(err error, callID string) *mcp.CallToolResult {
	var payload map[string]any

	var engErr *engerrors.Error
	if asEngineError(err, &engErr) {
		errorObj := map[string]any{
			"code":    engErr.Code,
			"message": engErr.Message,
			"call_id": callID,
		}
		// Internal details may carry paths or URLs
		if engErr.Code != engerrors.CodeInternal && engErr.Details != nil {
			errorObj["details"] = engErr.Details
		}
		if engErr.Err != nil && engErr.Code == engerrors.CodeEphemeris {
			errorObj["cause"] = engErr.Err.Error()
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    engerrors.CodeInternal,
				"message": "an internal error occurred",
				"call_id": callID,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
