package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/litescript/ndastro/internal/astro"
	"github.com/litescript/ndastro/internal/ephem"
	"github.com/litescript/ndastro/internal/mcp"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	retroStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27")).Bold(true)
	directStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2A9D8F"))
)

// printer writes human-readable tables. Styling is applied only when the
// destination is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer) *printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &printer{w: w, styled: styled}
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// body renders a padded body name in its chart color.
func (p *printer) body(b ephem.Body, width int) string {
	name := fmt.Sprintf("%-*s", width, strings.ToLower(b.String()))
	return p.style(lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color())).Bold(true), name)
}

func (p *printer) header(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(headerStyle, fmt.Sprintf(format, args...)))
}

func (p *printer) ayanamsa(rows []mcp.AyanamsaResult) {
	if len(rows) == 0 {
		return
	}
	p.header("%-16s %12s %14s %10s", "SYSTEM", "DEGREES", "DMS", "\"/YEAR")
	for _, r := range rows {
		fmt.Fprintf(p.w, "%-16s %12.6f %14s %10.2f\n", r.System, r.Degrees, r.DMS, r.RatePerYear*3600)
	}
	fmt.Fprintln(p.w, p.style(dimStyle, "date "+rows[0].Date))
}

func (p *printer) positions(r mcp.PositionsResult) {
	frame := r.Ayanamsa
	if r.Offset != nil {
		frame = fmt.Sprintf("%s (%s)", r.Ayanamsa, astro.FormatDMS(*r.Offset))
	}
	fmt.Fprintln(p.w, p.style(dimStyle, fmt.Sprintf("%s  lat %.4f lon %.4f  %s",
		r.Time.UTC().Format(time.RFC3339), r.Lat, r.Lon, frame)))

	p.header("%-10s %13s %10s %12s %10s  %s", "BODY", "LONGITUDE", "LATITUDE", "DIST AU", "°/DAY", "MOTION")
	for _, bp := range r.Positions {
		b, err := ephem.ParseBody(bp.Body)
		if err != nil {
			continue
		}
		motion := p.style(directStyle, "direct")
		if bp.Retrograde {
			motion = p.style(retroStyle, "retrograde")
		}
		fmt.Fprintf(p.w, "%s %13s %10.4f %12.6f %10.4f  %s\n",
			p.body(b, 10), astro.FormatDMS(bp.LonDeg), bp.LatDeg, bp.DistAU, bp.SpeedLon, motion)
	}
}

func (p *printer) retrograde(b ephem.Body, r mcp.RetrogradeResult) {
	if !r.IsRetrograde {
		fmt.Fprintf(p.w, "%s %s at %s\n", p.body(b, 0), p.style(directStyle, "direct"), r.Time.UTC().Format(time.RFC3339))
		return
	}
	fmt.Fprintf(p.w, "%s %s at %s\n", p.body(b, 0), p.style(retroStyle, "retrograde"), r.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(p.w, "  start %s\n", r.Start.UTC().Format(time.RFC3339))
	fmt.Fprintf(p.w, "  end   %s\n", r.End.UTC().Format(time.RFC3339))
	fmt.Fprintln(p.w, p.style(dimStyle, fmt.Sprintf("  %.1f days", r.DurationDays)))
}

func (p *printer) ascendant(r mcp.AscendantResult) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.body(ephem.Ascendant, 0),
		astro.FormatDMS(r.Degrees),
		p.style(dimStyle, fmt.Sprintf("(%.6f°, %s, %s)", r.Degrees, r.Ayanamsa, r.Time.UTC().Format(time.RFC3339))))
}

func (p *printer) sunrise(r mcp.SunriseResult) {
	fmt.Fprintf(p.w, "sunrise %s\n", r.Sunrise.UTC().Format(time.RFC3339))
	fmt.Fprintf(p.w, "sunset  %s\n", r.Sunset.UTC().Format(time.RFC3339))
	fmt.Fprintln(p.w, p.style(dimStyle, fmt.Sprintf("daylight %s", r.Sunset.Sub(r.Sunrise).Round(time.Minute))))
}
