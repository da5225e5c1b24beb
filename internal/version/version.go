// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - MCP tool server, YAML config, JPL Horizons provider
// 0.2.0 - Retrograde window detector, batch positions, sunrise/sunset
// 0.1.0 - Initial release: sixteen ayanamsa systems, analytic ephemeris
