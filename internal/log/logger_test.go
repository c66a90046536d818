package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_ProductionIsJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("user_id", "u-1").Msg("user logged in")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "user logged in", entry["message"])
	assert.Equal(t, "securerelief-auth", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "u-1", entry["user_id"])
}

func TestNewWithWriter_DevelopmentIsConsole(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	logger := NewWithWriter("development", &buf)
	logger.Debug().Msg("nonce issued")

	assert.Contains(t, buf.String(), "nonce issued")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
