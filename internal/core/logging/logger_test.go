package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	logger := Component("test-component")
	logger.Info().Msg("test message")

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "test-component", logEntry["cmp"])
	assert.Equal(t, "test message", logEntry["message"])
}

func TestSub(t *testing.T) {
	var buf bytes.Buffer

	logger := Sub(zerolog.New(&buf), "stores")
	logger.Warn().Msg("slow query")

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "stores", logEntry["cmp"])
	assert.Equal(t, "warn", logEntry["level"])
}
