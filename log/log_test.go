package log

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for input, expected := range map[string]Level{
		"debug": Debug,
		"INFO":  Info,
		"Warn":  Warn,
		"error": Error,
	} {
		t.Run(input, func(t *testing.T) {
			level, ok := ParseLevel(input)
			assert.True(t, ok)
			assert.Equal(t, expected, level)
		})
	}

	level, ok := ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, Error, level)
}

func TestLevelUnmarshalText(t *testing.T) {
	var level Level
	require.NoError(t, level.UnmarshalText([]byte("warn")))
	assert.Equal(t, Warn, level)

	err := level.UnmarshalText([]byte("verbose"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "log: unknown level: level=verbose")
	assert.Equal(t, Warn, level)
}

func TestLevelEnables(t *testing.T) {
	assert.True(t, Debug.Enables(Error))
	assert.True(t, Info.Enables(Info))
	assert.False(t, Info.Enables(Debug))
	assert.False(t, Error.Enables(Warn))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "WARN", Warn.String())
	assert.Equal(t, "Level(7)", Level(7).String())
}

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWriterLogger(Warn, &buf).(*ConsoleLogger)
	logger.now = func() time.Time { return time.Date(2020, 1, 13, 12, 0, 0, 0, time.UTC) }

	logger.Debug("hidden: n=%d", 1)
	logger.Info("hidden: n=%d", 2)
	logger.Warn("kafka: shown: n=%d", 3)
	logger.Error("kafka: shown: n=%d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2020-01-13 12:00:00 WARN\tkafka: shown: n=3", lines[0])
	assert.Equal(t, "2020-01-13 12:00:00 ERROR\tkafka: shown: n=4", lines[1])
	assert.Equal(t, Warn, logger.Level())
}

func TestNoopLogger(t *testing.T) {
	logger := NewNoopLogger()

	assert.NotPanics(t, func() {
		logger.Debug("x")
		logger.Error("y: err=%v", nil)
	})
	assert.Equal(t, Error, logger.Level())
}
