package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ndastro/internal/ayanamsa"
	"github.com/litescript/ndastro/internal/mcp"
)

// runCLI runs the app with a config path inside a temp dir and returns
// stdout, stderr and the error.
func runCLI(t *testing.T, configYAML string, args ...string) (string, string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if configYAML != "" {
		if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	var stdout, stderr bytes.Buffer
	app := newCLIApp(&stdout, &stderr)
	argv := append([]string{"ndastro", "--config", path}, args...)
	err := app.Run(argv)
	return stdout.String(), stderr.String(), err
}

func TestAyanamsa_JSON(t *testing.T) {
	out, _, err := runCLI(t, "", "--time", "2000-01-01", "--json", "ayanamsa")
	if err != nil {
		t.Fatalf("ayanamsa failed: %v", err)
	}

	var got mcp.AyanamsaResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if got.System != "lahiri" {
		t.Errorf("system = %q, want lahiri", got.System)
	}
	if math.Abs(got.Degrees-23.8564406708) > 1e-6 {
		t.Errorf("degrees = %v, want 23.8564406708", got.Degrees)
	}
}

func TestAyanamsa_SystemFlagAndAlias(t *testing.T) {
	out, _, err := runCLI(t, "", "--time", "2024-01-01", "--json", "ayanamsa", "--system", "kp")
	if err != nil {
		t.Fatalf("ayanamsa failed: %v", err)
	}
	var got mcp.AyanamsaResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := ayanamsa.Krishnamurti.At(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if got.System != "krishnamurti" || math.Abs(got.Degrees-want) > 1e-9 {
		t.Errorf("got %+v, want krishnamurti %v", got, want)
	}
}

func TestAyanamsa_AllTable(t *testing.T) {
	out, _, err := runCLI(t, "", "--time", "2024-01-01", "ayanamsa", "--all")
	if err != nil {
		t.Fatalf("ayanamsa --all failed: %v", err)
	}
	for _, s := range ayanamsa.Systems() {
		if !strings.Contains(out, s.String()) {
			t.Errorf("output missing %s:\n%s", s, out)
		}
	}
	// Writers other than a terminal get no escape codes
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected ANSI escapes in output:\n%s", out)
	}
}

func TestAyanamsa_UnknownSystem(t *testing.T) {
	_, _, err := runCLI(t, "", "ayanamsa", "--system", "babylonian")
	if err == nil || !strings.Contains(err.Error(), "UNKNOWN_SYSTEM") {
		t.Fatalf("err = %v, want UNKNOWN_SYSTEM", err)
	}
}

func TestPosition_RequiresObserver(t *testing.T) {
	_, _, err := runCLI(t, "", "position", "sun")
	if err == nil || !strings.Contains(err.Error(), "INVALID_INPUT") {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestPosition_JSON(t *testing.T) {
	out, _, err := runCLI(t, "",
		"--lat", "12.97", "--lon", "77.59", "--time", "2023-12-31T18:30:00Z", "--ayanamsa", "lahiri", "--json",
		"position", "sun")
	if err != nil {
		t.Fatalf("position failed: %v", err)
	}

	var got mcp.PositionsResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Ayanamsa != "lahiri" || got.Offset == nil {
		t.Fatalf("ayanamsa = %q offset = %v", got.Ayanamsa, got.Offset)
	}
	if len(got.Positions) != 1 || got.Positions[0].Body != "sun" {
		t.Fatalf("positions = %+v", got.Positions)
	}
	if lon := got.Positions[0].LonDeg; math.Abs(lon-255.61) > 0.05 {
		t.Errorf("sidereal sun = %v, want about 255.61", lon)
	}
}

func TestPosition_ObserverFromConfig(t *testing.T) {
	cfg := `
ayanamsa: tropical
observer:
  lat: 12.97
  lon: 77.59
`
	out, _, err := runCLI(t, cfg, "--time", "2023-12-31T18:30:00Z", "--json", "position", "moon")
	if err != nil {
		t.Fatalf("position failed: %v", err)
	}
	var got mcp.PositionsResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Lat != 12.97 || got.Lon != 77.59 || got.Ayanamsa != "tropical" {
		t.Errorf("got lat %v lon %v ayanamsa %q", got.Lat, got.Lon, got.Ayanamsa)
	}
}

func TestPosition_ArgErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no body", []string{"--lat", "0", "--lon", "0", "position"}, "INVALID_INPUT"},
		{"two bodies", []string{"--lat", "0", "--lon", "0", "position", "sun", "moon"}, "INVALID_INPUT"},
		{"unknown body", []string{"--lat", "0", "--lon", "0", "position", "pluto"}, "UNKNOWN_BODY"},
		{"bad time", []string{"--lat", "0", "--lon", "0", "--time", "later", "position", "sun"}, "INVALID_INPUT"},
		{"bad latitude", []string{"--lat", "95", "--lon", "0", "position", "sun"}, "CONFIG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestPositions_Table(t *testing.T) {
	out, _, err := runCLI(t, "", "--lat", "12.97", "--lon", "77.59", "--time", "2024-01-01", "positions")
	if err != nil {
		t.Fatalf("positions failed: %v", err)
	}
	for _, name := range []string{"ascendant", "sun", "moon", "mars", "mercury", "jupiter", "venus", "saturn", "rahu", "kethu"} {
		if !strings.Contains(out, name) {
			t.Errorf("table missing %s:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "retrograde") {
		t.Errorf("nodes should be marked retrograde:\n%s", out)
	}
}

func TestPositions_Subset(t *testing.T) {
	out, _, err := runCLI(t, "", "--lat", "0", "--lon", "0", "--json", "positions", "venus", "ketu")
	if err != nil {
		t.Fatalf("positions failed: %v", err)
	}
	var got mcp.PositionsResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Positions) != 2 || got.Positions[0].Body != "venus" || got.Positions[1].Body != "kethu" {
		t.Errorf("positions = %+v", got.Positions)
	}
}

func TestRetrograde(t *testing.T) {
	out, _, err := runCLI(t, "", "--lat", "12.97", "--lon", "77.59", "--time", "2023-12-20T12:00", "--json", "retrograde", "mercury")
	if err != nil {
		t.Fatalf("retrograde failed: %v", err)
	}
	var got mcp.RetrogradeResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.IsRetrograde || got.Start == nil || got.End == nil {
		t.Fatalf("got %+v, want a retrograde window", got)
	}
	if d := got.End.Sub(*got.Start); d < 18*24*time.Hour || d > 22*24*time.Hour {
		t.Errorf("window length = %v, want about 20 days", d)
	}
	if got.DurationDays < 18 || got.DurationDays > 22 {
		t.Errorf("duration_days = %v, want about 20", got.DurationDays)
	}

	out, _, err = runCLI(t, "", "--lat", "12.97", "--lon", "77.59", "--time", "2023-12-20T12:00", "retrograde", "mercury")
	if err != nil {
		t.Fatalf("retrograde table failed: %v", err)
	}
	if !strings.Contains(out, fmt.Sprintf("%.1f days", got.DurationDays)) {
		t.Errorf("table output missing duration %.1f days:\n%s", got.DurationDays, out)
	}

	out, _, err = runCLI(t, "", "--lat", "0", "--lon", "0", "retrograde", "sun")
	if err != nil {
		t.Fatalf("retrograde sun failed: %v", err)
	}
	if !strings.Contains(out, "direct") {
		t.Errorf("sun output = %q, want direct", out)
	}
}

func TestAscendantAndSunrise(t *testing.T) {
	out, _, err := runCLI(t, "", "--lat", "12.97", "--lon", "77.59", "--time", "2024-01-01T06:00", "--json", "ascendant")
	if err != nil {
		t.Fatalf("ascendant failed: %v", err)
	}
	var asc mcp.AscendantResult
	if err := json.Unmarshal([]byte(out), &asc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if asc.Degrees < 0 || asc.Degrees >= 360 || asc.Ayanamsa != "tropical" {
		t.Errorf("ascendant = %+v", asc)
	}

	out, _, err = runCLI(t, "", "--lat", "12.97", "--lon", "77.59", "--time", "2024-01-01", "sunrise")
	if err != nil {
		t.Fatalf("sunrise failed: %v", err)
	}
	if !strings.Contains(out, "sunrise 2024-01-01") || !strings.Contains(out, "sunset  2024-01-01") {
		t.Errorf("sunrise output:\n%s", out)
	}
}

func TestConfig_PrintsEffectiveConfig(t *testing.T) {
	out, _, err := runCLI(t, "log_level: warn\n", "--ephemeris", "horizons", "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"log_level: warn", "mode: horizons", "elevation_m: 914"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestConfig_ZeroElevationFlagOverridesFile(t *testing.T) {
	cfg := "observer:\n  elevation_m: 500\n"

	out, _, err := runCLI(t, cfg, "--elevation", "0", "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(out, "elevation_m: 0") {
		t.Errorf("--elevation 0 should win over the file:\n%s", out)
	}

	out, _, err = runCLI(t, cfg, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(out, "elevation_m: 500") {
		t.Errorf("file elevation should apply without the flag:\n%s", out)
	}
}

func TestConfig_InvalidFile(t *testing.T) {
	_, _, err := runCLI(t, "colour: blue\n", "ayanamsa")
	if err == nil || !strings.Contains(err.Error(), "CONFIG") {
		t.Fatalf("err = %v, want CONFIG", err)
	}
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := newCLIApp(&stdout, &stderr).Run([]string{"ndastro", "--version"}); err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "0.3.0") {
		t.Errorf("version output = %q", stdout.String())
	}
}
