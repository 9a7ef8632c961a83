package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	Info().Str("resume_id", "abc").Msg("stored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry["resume_id"])
	assert.Equal(t, "stored", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestInit_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	assert.Empty(t, buf.String())

	Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInit_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "verbose", Output: &buf})

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})

	Ctx(context.Background()).Info().Msg("from background")
	assert.Contains(t, buf.String(), "from background")

	buf.Reset()
	ctx := WithContext(context.Background())
	Ctx(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}
