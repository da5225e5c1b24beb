// Package config loads the engine configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ndastro/internal/ayanamsa"
	"github.com/litescript/ndastro/internal/ephem"
	engerrors "github.com/litescript/ndastro/internal/errors"
	"github.com/litescript/ndastro/internal/position"
	"github.com/litescript/ndastro/internal/retrograde"
)

// AppName names the data directory and the default config file location.
const AppName = "ndastro"

// Config holds application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Ayanamsa is the default sidereal system, e.g. "lahiri".
	// Empty means tropical output.
	Ayanamsa string `yaml:"ayanamsa,omitempty"`

	Ephemeris  Ephemeris  `yaml:"ephemeris"`
	Observer   Observer   `yaml:"observer"`
	Retrograde Retrograde `yaml:"retrograde"`
}

// Ephemeris selects and configures the ephemeris provider.
type Ephemeris struct {
	Mode        string        `yaml:"mode"`
	HorizonsURL string        `yaml:"horizons_url,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// Observer is the default location. Fields are pointers so that 0 can be
// configured explicitly.
type Observer struct {
	Lat        *float64 `yaml:"lat,omitempty"`
	Lon        *float64 `yaml:"lon,omitempty"`
	ElevationM *float64 `yaml:"elevation_m,omitempty"`
}

// Elevation returns the configured elevation in meters, or the default.
func (o Observer) Elevation() float64 {
	if o.ElevationM == nil {
		return position.DefaultElevationM
	}
	return *o.ElevationM
}

// Retrograde tunes the retrograde window search.
type Retrograde struct {
	Step          time.Duration `yaml:"step,omitempty"`
	Horizon       time.Duration `yaml:"horizon,omitempty"`
	Tolerance     time.Duration `yaml:"tolerance,omitempty"`
	MaxIterations int           `yaml:"max_iterations,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	elevation := position.DefaultElevationM
	return &Config{
		LogLevel: "info",
		Ephemeris: Ephemeris{
			Mode:        ephem.ModeAnalytic.String(),
			HorizonsURL: ephem.HorizonsAPIURL,
			Timeout:     ephem.RequestTimeout,
		},
		Observer: Observer{
			ElevationM: &elevation,
		},
		Retrograde: Retrograde{
			Step:          retrograde.DefaultStep,
			Horizon:       retrograde.DefaultHorizon,
			Tolerance:     retrograde.DefaultTolerance,
			MaxIterations: retrograde.DefaultMaxIterations,
		},
	}
}

// Load reads the YAML file at path over the defaults.
// Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, engerrors.NewConfig(fmt.Sprintf("read %s", path), err)
	}

	overlay, err := Parse(data)
	if err != nil {
		return nil, engerrors.NewConfig(fmt.Sprintf("parse %s", path), err)
	}
	return Merge(DefaultConfig(), overlay), nil
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Merge combines base and overlay configs.
// Overlay values take precedence when set.
func Merge(base, overlay *Config) *Config {
	result := *base

	if overlay.LogLevel != "" {
		result.LogLevel = overlay.LogLevel
	}
	if overlay.Ayanamsa != "" {
		result.Ayanamsa = overlay.Ayanamsa
	}

	if overlay.Ephemeris.Mode != "" {
		result.Ephemeris.Mode = overlay.Ephemeris.Mode
	}
	if overlay.Ephemeris.HorizonsURL != "" {
		result.Ephemeris.HorizonsURL = overlay.Ephemeris.HorizonsURL
	}
	if overlay.Ephemeris.Timeout != 0 {
		result.Ephemeris.Timeout = overlay.Ephemeris.Timeout
	}

	if overlay.Observer.Lat != nil {
		lat := *overlay.Observer.Lat
		result.Observer.Lat = &lat
	}
	if overlay.Observer.Lon != nil {
		lon := *overlay.Observer.Lon
		result.Observer.Lon = &lon
	}
	if overlay.Observer.ElevationM != nil {
		elevation := *overlay.Observer.ElevationM
		result.Observer.ElevationM = &elevation
	}

	if overlay.Retrograde.Step != 0 {
		result.Retrograde.Step = overlay.Retrograde.Step
	}
	if overlay.Retrograde.Horizon != 0 {
		result.Retrograde.Horizon = overlay.Retrograde.Horizon
	}
	if overlay.Retrograde.Tolerance != 0 {
		result.Retrograde.Tolerance = overlay.Retrograde.Tolerance
	}
	if overlay.Retrograde.MaxIterations != 0 {
		result.Retrograde.MaxIterations = overlay.Retrograde.MaxIterations
	}

	return &result
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that every field is usable.
func (c *Config) Validate() error {
	var problems []string

	if !logLevels[strings.ToLower(c.LogLevel)] {
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.Ayanamsa != "" {
		if _, err := ayanamsa.Sidereal(c.Ayanamsa, time.Time{}); err != nil {
			problems = append(problems, fmt.Sprintf("ayanamsa %q is not supported", c.Ayanamsa))
		}
	}
	if _, err := ephem.ParseMode(c.Ephemeris.Mode); err != nil {
		problems = append(problems, fmt.Sprintf("ephemeris.mode %q is not supported", c.Ephemeris.Mode))
	}
	if c.Ephemeris.Timeout < 0 {
		problems = append(problems, "ephemeris.timeout must not be negative")
	}
	if lat := c.Observer.Lat; lat != nil && (math.IsNaN(*lat) || *lat < -90 || *lat > 90) {
		problems = append(problems, fmt.Sprintf("observer.lat %v is outside [-90, 90]", *lat))
	}
	if lon := c.Observer.Lon; lon != nil && (math.IsNaN(*lon) || *lon < -180 || *lon > 180) {
		problems = append(problems, fmt.Sprintf("observer.lon %v is outside [-180, 180]", *lon))
	}
	if elev := c.Observer.ElevationM; elev != nil && (math.IsNaN(*elev) || math.IsInf(*elev, 0)) {
		problems = append(problems, fmt.Sprintf("observer.elevation_m %v is not a finite number", *elev))
	}
	if c.Retrograde.Step <= 0 || c.Retrograde.Horizon <= 0 || c.Retrograde.Tolerance <= 0 {
		problems = append(problems, "retrograde step, horizon and tolerance must be positive")
	}
	if c.Retrograde.Step > c.Retrograde.Horizon {
		problems = append(problems, "retrograde.step must not exceed retrograde.horizon")
	}
	if c.Retrograde.MaxIterations <= 0 {
		problems = append(problems, "retrograde.max_iterations must be positive")
	}

	if len(problems) > 0 {
		return engerrors.NewConfig(strings.Join(problems, "; "), nil)
	}
	return nil
}

// DataDir returns the per-user data directory for app.
func DataDir(app string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", engerrors.NewConfig("cannot resolve home directory", err)
	}
	return dataDirFor(runtime.GOOS, home, os.Getenv("XDG_DATA_HOME"), app), nil
}

func dataDirFor(goos, home, xdgDataHome, app string) string {
	switch goos {
	case "windows":
		return filepath.Join(home, "AppData", "Local", app)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", app)
	default:
		if xdgDataHome != "" && filepath.IsAbs(xdgDataHome) {
			return filepath.Join(xdgDataHome, app)
		}
		return filepath.Join(home, ".local", "share", app)
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DataDir(AppName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
