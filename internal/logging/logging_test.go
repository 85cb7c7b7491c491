package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/community-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutsideDev(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("APP_NAME", "test-app")

	var buf bytes.Buffer
	logger := newWithWriter(config.New(), &buf)
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	logger.Warn().Msg("kept")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["message"])
	require.Equal(t, "test-app", line["app"])
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	logger := newWithWriter(config.New(), &bytes.Buffer{})
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
