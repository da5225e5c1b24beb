package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	engerrors "github.com/litescript/ndastro/internal/errors"
)

// decode unmarshals MCP request arguments into a typed struct.
// Malformed arguments are reported as invalid input.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	b, err := json.Marshal(args)
	if err != nil {
		return result, engerrors.NewInvalidInput(fmt.Sprintf("marshal args: %v", err), nil)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, engerrors.NewInvalidInput(fmt.Sprintf("unmarshal args: %v", err), nil)
	}
	return result, nil
}

// asEngineError reports whether err carries an engine error.
func asEngineError(err error, target **engerrors.Error) bool {
	return errors.As(err, target)
}
