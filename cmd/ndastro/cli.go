package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/litescript/ndastro/internal/astro"
	"github.com/litescript/ndastro/internal/ayanamsa"
	"github.com/litescript/ndastro/internal/config"
	"github.com/litescript/ndastro/internal/ephem"
	engerrors "github.com/litescript/ndastro/internal/errors"
	"github.com/litescript/ndastro/internal/logging"
	"github.com/litescript/ndastro/internal/mcp"
	"github.com/litescript/ndastro/internal/position"
	"github.com/litescript/ndastro/internal/retrograde"
	"github.com/litescript/ndastro/internal/version"
)

// engine holds the state shared by every command. The provider is opened
// on first use so that commands which do not need it stay offline.
type engine struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	cfg       *config.Config
	logger    *zap.Logger
	provider  ephem.Provider
	positions *position.Service
	detector  *retrograde.Detector
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(stdout, stderr io.Writer) *cli.App {
	e := &engine{stdout: stdout, stderr: stderr, now: time.Now}

	app := &cli.App{
		Name:      config.AppName,
		Usage:     "Ayanamsa, sidereal positions and retrograde windows",
		Version:   version.Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file (default: data dir config.yaml)", EnvVars: []string{"NDASTRO_CONFIG"}},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error"},
			&cli.StringFlag{Name: "ephemeris", Aliases: []string{"e"}, Usage: "Ephemeris source: analytic or horizons"},
			&cli.StringFlag{Name: "horizons-url", Usage: "JPL Horizons API endpoint"},
			&cli.Float64Flag{Name: "lat", Usage: "Observer latitude, degrees north"},
			&cli.Float64Flag{Name: "lon", Usage: "Observer longitude, degrees east"},
			&cli.Float64Flag{Name: "elevation", Usage: "Observer elevation, meters"},
			&cli.StringFlag{Name: "time", Aliases: []string{"t"}, Usage: "UTC instant, RFC 3339 or YYYY-MM-DD[THH:MM[:SS]] (default: now)"},
			&cli.StringFlag{Name: "ayanamsa", Aliases: []string{"a"}, Usage: "Sidereal system, or \"tropical\""},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Before: e.setup,
		After:  e.close,
		Commands: []*cli.Command{
			ayanamsaCmd(e),
			positionCmd(e),
			positionsCmd(e),
			retrogradeCmd(e),
			ascendantCmd(e),
			sunriseCmd(e),
			serveCmd(e),
			configCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// setup loads the config file and overlays global flags.
func (e *engine) setup(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return outputError(err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return outputError(err)
	}

	overlay := &config.Config{
		LogLevel: c.String("log-level"),
		Ayanamsa: c.String("ayanamsa"),
	}
	overlay.Ephemeris.Mode = c.String("ephemeris")
	overlay.Ephemeris.HorizonsURL = c.String("horizons-url")
	if c.IsSet("lat") {
		lat := c.Float64("lat")
		overlay.Observer.Lat = &lat
	}
	if c.IsSet("lon") {
		lon := c.Float64("lon")
		overlay.Observer.Lon = &lon
	}
	if c.IsSet("elevation") {
		elevation := c.Float64("elevation")
		overlay.Observer.ElevationM = &elevation
	}

	cfg = config.Merge(cfg, overlay)
	if strings.EqualFold(cfg.Ayanamsa, "tropical") || strings.EqualFold(cfg.Ayanamsa, "none") {
		cfg.Ayanamsa = ""
	}
	if err := cfg.Validate(); err != nil {
		return outputError(err)
	}

	e.cfg = cfg
	e.logger = logging.NewWithOutput(logging.ParseLevel(cfg.LogLevel), e.stderr).Named(config.AppName)
	e.logger.Debug("config loaded", zap.String("path", path), zap.String("ephemeris", cfg.Ephemeris.Mode))
	return nil
}

// open creates the provider and the services built on it.
func (e *engine) open() error {
	if e.provider != nil {
		return nil
	}
	mode, err := ephem.ParseMode(e.cfg.Ephemeris.Mode)
	if err != nil {
		return err
	}
	provider, err := ephem.Open(ephem.Options{
		Mode:        mode,
		HorizonsURL: e.cfg.Ephemeris.HorizonsURL,
		Timeout:     e.cfg.Ephemeris.Timeout,
		Logger:      e.logger,
	})
	if err != nil {
		return err
	}

	e.provider = provider
	e.positions = position.New(provider,
		position.WithElevation(e.cfg.Observer.Elevation()),
		position.WithLogger(e.logger),
	)
	e.detector = retrograde.New(e.positions,
		retrograde.WithStep(e.cfg.Retrograde.Step),
		retrograde.WithHorizon(e.cfg.Retrograde.Horizon),
		retrograde.WithTolerance(e.cfg.Retrograde.Tolerance),
		retrograde.WithMaxIterations(e.cfg.Retrograde.MaxIterations),
		retrograde.WithLogger(e.logger),
	)
	return nil
}

func (e *engine) close(_ *cli.Context) error {
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	if e.provider == nil {
		return nil
	}
	err := e.provider.Close()
	e.provider = nil
	return err
}

// instant parses the global --time flag.
func (e *engine) instant(c *cli.Context) (time.Time, error) {
	return astro.ParseInstant(c.String("time"), e.now())
}

// observer returns the configured location or an error naming the missing flag.
func (e *engine) observer() (lat, lon float64, err error) {
	if e.cfg.Observer.Lat == nil || e.cfg.Observer.Lon == nil {
		return 0, 0, engerrors.NewInvalidInput("observer location required: pass --lat and --lon or set observer in the config file", nil)
	}
	return *e.cfg.Observer.Lat, *e.cfg.Observer.Lon, nil
}

// sidereal resolves the configured system into its key and offset at t.
func (e *engine) sidereal(t time.Time) (string, *float64, error) {
	offset, err := ayanamsa.Sidereal(e.cfg.Ayanamsa, t)
	if err != nil || offset == nil {
		return "tropical", nil, err
	}
	sys, _ := ayanamsa.ParseSystem(e.cfg.Ayanamsa)
	return sys.String(), offset, nil
}

func (e *engine) printer() *printer {
	return newPrinter(e.stdout)
}

// ayanamsaCmd creates the ayanamsa command.
func ayanamsaCmd(e *engine) *cli.Command {
	return &cli.Command{
		Name:  "ayanamsa",
		Usage: "Print the ayanamsa of one system, or of all systems with --all",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "system", Aliases: []string{"s"}, Usage: "System key (default: configured system, else lahiri)"},
			&cli.BoolFlag{Name: "all", Usage: "Print every supported system"},
		},
		Action: func(c *cli.Context) error {
			t, err := e.instant(c)
			if err != nil {
				return outputError(err)
			}

			var systems []ayanamsa.System
			if c.Bool("all") {
				systems = ayanamsa.Systems()
			} else {
				name := c.String("system")
				if name == "" {
					name = e.cfg.Ayanamsa
				}
				if name == "" {
					name = ayanamsa.Lahiri.String()
				}
				s, err := ayanamsa.ParseSystem(name)
				if err != nil {
					return outputError(err)
				}
				systems = []ayanamsa.System{s}
			}

			rows := make([]mcp.AyanamsaResult, 0, len(systems))
			for _, s := range systems {
				rows = append(rows, mcp.NewAyanamsaResult(s, t))
			}

			if c.Bool("json") {
				if c.Bool("all") {
					return outputJSON(e.stdout, map[string]any{"systems": rows})
				}
				return outputJSON(e.stdout, rows[0])
			}
			e.printer().ayanamsa(rows)
			return nil
		},
	}
}

// positionCmd creates the position command.
func positionCmd(e *engine) *cli.Command {
	return &cli.Command{
		Name:      "position",
		Usage:     "Print the position of one body",
		ArgsUsage: "BODY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(engerrors.NewInvalidInput("position takes exactly one BODY argument", nil))
			}
			body, err := ephem.ParseBody(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return e.printPositions(c, []ephem.Body{body}, true)
		},
	}
}

// positionsCmd creates the positions command.
func positionsCmd(e *engine) *cli.Command {
	return &cli.Command{
		Name:      "positions",
		Usage:     "Print the positions of several bodies (default: all)",
		ArgsUsage: "[BODY...]",
		Action: func(c *cli.Context) error {
			bodies := make([]ephem.Body, 0, c.NArg())
			for _, arg := range c.Args().Slice() {
				b, err := ephem.ParseBody(arg)
				if err != nil {
					return outputError(err)
				}
				bodies = append(bodies, b)
			}
			return e.printPositions(c, bodies, false)
		},
	}
}

func (e *engine) printPositions(c *cli.Context, bodies []ephem.Body, single bool) error {
	lat, lon, err := e.observer()
	if err != nil {
		return outputError(err)
	}
	t, err := e.instant(c)
	if err != nil {
		return outputError(err)
	}
	system, offset, err := e.sidereal(t)
	if err != nil {
		return outputError(err)
	}
	if err := e.open(); err != nil {
		return outputError(err)
	}

	out := mcp.PositionsResult{Time: t, Lat: lat, Lon: lon, Ayanamsa: system, Offset: offset}
	if single {
		p, err := e.positions.Position(c.Context, bodies[0], lat, lon, t, offset)
		if err != nil {
			return outputError(err)
		}
		out.Positions = append(out.Positions, mcp.NewBodyPosition(bodies[0], p))
	} else {
		got, err := e.positions.PositionsFor(c.Context, bodies, lat, lon, t, offset)
		if err != nil {
			return outputError(err)
		}
		for _, b := range ephem.KnownBodies() {
			if p, ok := got[b]; ok {
				out.Positions = append(out.Positions, mcp.NewBodyPosition(b, p))
			}
		}
	}

	if c.Bool("json") {
		return outputJSON(e.stdout, out)
	}
	e.printer().positions(out)
	return nil
}

// retrogradeCmd creates the retrograde command.
func retrogradeCmd(e *engine) *cli.Command {
	return &cli.Command{
		Name:      "retrograde",
		Usage:     "Report whether a body is retrograde and the bounds of its retrograde arc",
		ArgsUsage: "BODY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(engerrors.NewInvalidInput("retrograde takes exactly one BODY argument", nil))
			}
			body, err := ephem.ParseBody(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			lat, lon, err := e.observer()
			if err != nil {
				return outputError(err)
			}
			t, err := e.instant(c)
			if err != nil {
				return outputError(err)
			}
			if err := e.open(); err != nil {
				return outputError(err)
			}

			w, err := e.detector.Detect(c.Context, t, body, lat, lon)
			if err != nil {
				return outputError(err)
			}
			out := mcp.NewRetrogradeResult(body, t, w)
			if c.Bool("json") {
				return outputJSON(e.stdout, out)
			}
			e.printer().retrograde(body, out)
			return nil
		},
	}
}

// ascendantCmd creates the ascendant command.
func ascendantCmd(e *engine) *cli.Command {
	return &cli.Command{
		Name:  "ascendant",
		Usage: "Print the rising ecliptic longitude",
		Action: func(c *cli.Context) error {
			lat, lon, err := e.observer()
			if err != nil {
				return outputError(err)
			}
			t, err := e.instant(c)
			if err != nil {
				return outputError(err)
			}
			system, offset, err := e.sidereal(t)
			if err != nil {
				return outputError(err)
			}
			if err := e.open(); err != nil {
				return outputError(err)
			}

			asc, err := e.positions.AscendantPosition(c.Context, lat, lon, t)
			if err != nil {
				return outputError(err)
			}
			if offset != nil {
				asc = astro.NormalizeDegree(asc - *offset)
			}
			out := mcp.AscendantResult{Time: t, Degrees: asc, DMS: astro.FormatDMS(asc), Ayanamsa: system}
			if c.Bool("json") {
				return outputJSON(e.stdout, out)
			}
			e.printer().ascendant(out)
			return nil
		},
	}
}

// sunriseCmd creates the sunrise command.
func sunriseCmd(e *engine) *cli.Command {
	return &cli.Command{
		Name:  "sunrise",
		Usage: "Print sunrise and sunset for the local day of --time",
		Action: func(c *cli.Context) error {
			lat, lon, err := e.observer()
			if err != nil {
				return outputError(err)
			}
			t, err := e.instant(c)
			if err != nil {
				return outputError(err)
			}
			if err := e.open(); err != nil {
				return outputError(err)
			}

			rise, set, err := e.positions.SunriseSunset(c.Context, lat, lon, t)
			if err != nil {
				return outputError(err)
			}
			out := mcp.SunriseResult{Sunrise: rise, Sunset: set}
			if c.Bool("json") {
				return outputJSON(e.stdout, out)
			}
			e.printer().sunrise(out)
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *engine) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the engine as MCP tools over stdio",
		Action: func(c *cli.Context) error {
			if err := e.open(); err != nil {
				return outputError(err)
			}
			h := mcp.NewHandlers(e.positions, e.detector, e.cfg, e.logger)
			e.logger.Info("mcp server starting",
				zap.String("version", version.Version),
				zap.String("ephemeris", e.provider.Name()),
				zap.Float64("elevation_m", e.positions.ElevationM()),
				zap.Strings("tools", mcp.AllToolNames()),
			)
			return mcp.Run(h, version.Version)
		},
	}
}

// configCmd creates the config command.
func configCmd(e *engine) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration as YAML",
		Action: func(c *cli.Context) error {
			data, err := config.Marshal(e.cfg)
			if err != nil {
				return outputError(engerrors.NewInternal(err))
			}
			_, err = e.stdout.Write(data)
			return err
		},
	}
}

// Helper functions

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var engErr *engerrors.Error
	if errors.As(err, &engErr) {
		msg := fmt.Sprintf("[%s] %s", engErr.Code, engErr.Message)
		if engErr.Err != nil {
			msg += ": " + engErr.Err.Error()
		}
		return cli.Exit(msg, 1)
	}
	return cli.Exit(err.Error(), 1)
}
