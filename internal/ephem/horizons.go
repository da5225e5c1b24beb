package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/litescript/ndastro/internal/astro"
	engerrors "github.com/litescript/ndastro/internal/errors"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// RequestTimeout is the default HTTP request timeout.
	RequestTimeout = 30 * time.Second
)

// HorizonsProvider queries JPL Horizons for apparent positions. Lunar nodes
// and the ascendant are computed locally.
type HorizonsProvider struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

// NewHorizonsProvider creates a new Horizons API client.
func NewHorizonsProvider(client *http.Client, baseURL string, logger *zap.Logger) *HorizonsProvider {
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}
	if baseURL == "" {
		baseURL = HorizonsAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HorizonsProvider{client: client, baseURL: baseURL, logger: logger}
}

// Name implements Provider.
func (p *HorizonsProvider) Name() string {
	return "horizons"
}

// ApparentPosition implements Provider.
// Queries observer-centred ecliptic longitude/latitude of date and range at
// t-6h, t and t+6h; speeds are taken by central difference.
func (p *HorizonsProvider) ApparentPosition(ctx context.Context, body Body, obs astro.Observer, t time.Time) (Sample, error) {
	if err := checkRequest(ctx, obs); err != nil {
		return Sample{}, err
	}

	if body == Rahu {
		s, err := sampleWithSpeed(ctx, func(_ context.Context, t time.Time) (astro.Spherical, error) {
			return astro.Spherical{LonDeg: MeanLunarNode(t)}, nil
		}, t)
		s.LatDeg, s.DistAU, s.SpeedLat, s.SpeedDist = 0, 0, 0, 0
		return s, err
	}
	if !body.IsPhysical() {
		return Sample{}, engerrors.NewUnknownBody(body.Code())
	}

	epochs := []time.Time{t.Add(-speedStep), t, t.Add(speedStep)}
	jds := make([]string, len(epochs))
	for i, e := range epochs {
		jds[i] = strconv.FormatFloat(astro.JulianDate(e), 'f', 9, 64)
	}

	params := p.observerParams(body, obs)
	params.Set("TLIST_TYPE", "JD")
	params.Set("TLIST", fmt.Sprintf("'%s'", strings.Join(jds, " ")))
	params.Set("QUANTITIES", "'20,31'") // 20=range, 31=observer ecliptic lon/lat

	rows, err := p.queryTable(ctx, params, 4)
	if err != nil {
		return Sample{}, err
	}
	if len(rows) != len(epochs) {
		return Sample{}, fmt.Errorf("horizons returned %d rows for %s, want %d", len(rows), body.Code(), len(epochs))
	}

	sph := make([]astro.Spherical, len(rows))
	for i, r := range rows {
		// delta, deldot, ObsEcLon, ObsEcLat
		sph[i] = astro.Spherical{LonDeg: r.Values[2], LatDeg: r.Values[3], Dist: r.Values[0]}
	}
	return speedSample(sph[0], sph[1], sph[2], 2*speedStep), nil
}

// SunriseSunset implements Provider.
// Samples the apparent RA/Dec of the Sun over the observer's local day.
func (p *HorizonsProvider) SunriseSunset(ctx context.Context, obs astro.Observer, date time.Time) (time.Time, time.Time, error) {
	if err := checkRequest(ctx, obs); err != nil {
		return time.Time{}, time.Time{}, err
	}

	times := astro.SampleDay(date, obs.LonDeg, SunriseStep)
	start, stop := times[0], times[len(times)-1]

	params := p.observerParams(Sun, obs)
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(start)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(stop)))
	params.Set("STEP_SIZE", fmt.Sprintf("'%s'", formatStepSize(SunriseStep)))
	params.Set("QUANTITIES", "'2'") // 2=apparent RA/Dec

	rows, err := p.queryTable(ctx, params, 2)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	samples := make([]astro.RADecAtTime, len(rows))
	for i, r := range rows {
		samples[i] = astro.RADecAtTime{Time: r.Time, RAdeg: r.Values[0], DecDeg: r.Values[1]}
	}
	return riseSetFromSamples(obs, samples)
}

// Ascendant implements Provider.
func (p *HorizonsProvider) Ascendant(ctx context.Context, obs astro.Observer, t time.Time) (float64, error) {
	if err := checkRequest(ctx, obs); err != nil {
		return 0, err
	}
	return astro.Ascendant(t, obs), nil
}

// Close implements Provider.
func (p *HorizonsProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// observerParams builds the request parameters shared by every observer
// table query. Values must be quoted with single quotes.
func (p *HorizonsProvider) observerParams(body Body, obs astro.Observer) url.Values {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", body.NAIFID()))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("CENTER", "'coord@399'")
	params.Set("COORD_TYPE", "GEODETIC")
	params.Set("SITE_COORD", fmt.Sprintf("'%.6f,%.6f,%.4f'", obs.LonDeg, obs.LatDeg, obs.ElevationM/1000))
	params.Set("ANG_FORMAT", "DEG")
	params.Set("CAL_FORMAT", "JD")
	params.Set("TIME_TYPE", "UT")
	params.Set("CSV_FORMAT", "NO")
	return params
}

// queryTable makes a request to the Horizons API and parses the ephemeris
// table, keeping rows with at least minValues numeric columns.
func (p *HorizonsProvider) queryTable(ctx context.Context, params url.Values, minValues int) ([]tableRow, error) {
	reqURL := p.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build horizons request: %w", err)
	}

	started := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	rows, err := parseHorizonsResponse(body, minValues)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("horizons query",
		zap.String("command", params.Get("COMMAND")),
		zap.String("quantities", params.Get("QUANTITIES")),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(started)))
	return rows, nil
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// tableRow is one line of an observer table: its epoch and numeric columns.
type tableRow struct {
	Time   time.Time
	Values []float64
}

// parseHorizonsResponse parses the Horizons JSON response.
func parseHorizonsResponse(body []byte, minValues int) ([]tableRow, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("horizons error: %s", strings.TrimSpace(resp.Error))
	}

	// The actual ephemeris data is in resp.Result as a text blob
	return parseEphemerisTable(resp.Result, minValues)
}

// parseEphemerisTable extracts rows from the Horizons text output.
func parseEphemerisTable(result string, minValues int) ([]tableRow, error) {
	// Find the data section between $$SOE and $$EOE markers
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("could not find ephemeris data markers")
	}

	var rows []tableRow
	for _, line := range strings.Split(result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		row, err := parseEphemerisLine(line)
		if err != nil || len(row.Values) < minValues {
			continue // Skip unparseable lines
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no ephemeris rows with %d values", minValues)
	}
	return rows, nil
}

// parseEphemerisLine parses a single ephemeris data line with a Julian Date
// epoch (CAL_FORMAT=JD):
// 2460310.500000000 *m  0.983362805 -0.0000471  279.8051877   0.0006220
// Fields: JD, optional solar/lunar presence flags, numeric quantities.
func parseEphemerisLine(line string) (tableRow, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return tableRow{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	jd, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return tableRow{}, fmt.Errorf("unable to parse epoch %q: %w", fields[0], err)
	}

	// Skip any flag fields (like *, *m, Cm, Nm, Am, etc.)
	var values []float64
	for _, f := range fields[1:] {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			values = append(values, v)
		}
	}

	return tableRow{Time: astro.TimeFromJulianDate(jd), Values: values}, nil
}

// formatHorizonsTime formats a time for the Horizons API as a Julian Date.
func formatHorizonsTime(t time.Time) string {
	return "JD " + strconv.FormatFloat(astro.JulianDate(t), 'f', 9, 64)
}

// formatStepSize formats a duration as a Horizons step size.
func formatStepSize(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes >= 60 && minutes%60 == 0 {
		return fmt.Sprintf("%d h", minutes/60)
	}
	return fmt.Sprintf("%d m", minutes)
}
