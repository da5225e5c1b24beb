package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	err := &Error{Code: CodeUnknownBody, Message: "unknown body: \"pluto\""}
	assert.Equal(t, `UNKNOWN_BODY: unknown body: "pluto"`, err.Error())

	wrapped := NewEphemeris("horizons", io.ErrUnexpectedEOF)
	assert.Equal(t, "EPHEMERIS: ephemeris provider horizons failed: unexpected EOF", wrapped.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code Code
	}{
		{"invalid input", NewInvalidInput("latitude out of range", map[string]any{"lat": 91.0}), CodeInvalidInput},
		{"unknown body", NewUnknownBody("pluto"), CodeUnknownBody},
		{"unknown system", NewUnknownSystem("galactic"), CodeUnknownSystem},
		{"ephemeris", NewEphemeris("analytic", io.EOF), CodeEphemeris},
		{"config", NewConfig("bad mode", nil), CodeConfig},
		{"internal", NewInternal(nil), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}

	assert.Equal(t, "pluto", NewUnknownBody("pluto").Details["body"])
	assert.Equal(t, "internal error", NewInternal(nil).Message)
}

func TestUnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("dial tcp: %w", io.ErrClosedPipe)
	err := fmt.Errorf("position sun: %w", NewEphemeris("horizons", cause))

	require.True(t, Is(err, CodeEphemeris))
	assert.False(t, Is(err, CodeInvalidInput))
	assert.True(t, stderrors.Is(err, io.ErrClosedPipe))
	assert.Equal(t, CodeEphemeris, CodeOf(err))

	assert.False(t, Is(io.EOF, CodeInternal))
	assert.False(t, Is(nil, CodeInternal))
	assert.Equal(t, CodeInternal, CodeOf(io.EOF))
}
