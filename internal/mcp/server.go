// Package mcp exposes the engine as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// toolFunc computes the payload of a tool call.
type toolFunc func(ctx context.Context, req mcp.CallToolRequest) (any, error)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) toolFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"ayanamsa_get": {
		def:     ayanamsaGetToolDef,
		handler: func(h *Handlers) toolFunc { return h.HandleAyanamsaGet },
	},
	"ayanamsa_list": {
		def:     ayanamsaListToolDef,
		handler: func(h *Handlers) toolFunc { return h.HandleAyanamsaList },
	},
	"position_get": {
		def:     positionGetToolDef,
		handler: func(h *Handlers) toolFunc { return h.HandlePositionGet },
	},
	"positions_get": {
		def:     positionsGetToolDef,
		handler: func(h *Handlers) toolFunc { return h.HandlePositionsGet },
	},
	"retrograde_window": {
		def:     retrogradeWindowToolDef,
		handler: func(h *Handlers) toolFunc { return h.HandleRetrogradeWindow },
	},
	"ascendant_get": {
		def:     ascendantGetToolDef,
		handler: func(h *Handlers) toolFunc { return h.HandleAscendantGet },
	},
	"sunrise_sunset": {
		def:     sunriseSunsetToolDef,
		handler: func(h *Handlers) toolFunc { return h.HandleSunriseSunset },
	},
}

// AllToolNames returns the registered tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// instrument tags each call with a ULID, logs it, and converts the payload
// or error into a tool result.
func (h *Handlers) instrument(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := ulid.Make().String()
		log := h.logger.With(zap.String("tool", name), zap.String("call_id", callID))
		started := time.Now()

		data, err := fn(ctx, req)
		if err != nil {
			log.Warn("tool call failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
			return errorResult(err, callID), nil
		}
		log.Info("tool call", zap.Duration("elapsed", time.Since(started)))
		return successResult(data)
	}
}

// NewServer creates a new MCP server with the engine tools registered.
func NewServer(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ndastro",
		version,
		server.WithToolCapabilities(true),
	)

	for _, name := range AllToolNames() {
		entry := toolRegistry[name]
		s.AddTool(entry.def, h.instrument(name, entry.handler(h)))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(h *Handlers, version string) error {
	return server.ServeStdio(NewServer(h, version))
}
