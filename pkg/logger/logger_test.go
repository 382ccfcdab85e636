package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range testCases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestBuildWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Build(Config{Level: "info", Component: "search"}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Int("photos", 3).Msg("search done")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "search done", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "search", entry["component"])
	assert.EqualValues(t, 3, entry["photos"])
	assert.Contains(t, entry, "timestamp")
}
