package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monitoringsdk/adapter"
	"monitoringsdk/internal/meta"
	"monitoringsdk/log"
	"monitoringsdk/metrics"
)

func TestParseData(t *testing.T) {
	data, err := parseData(`{"baz": 1, "guest": "John", "nested": {"ok": true, "ratio": 0.5}}`)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"baz":    json.Number("1"),
		"guest":  "John",
		"nested": map[string]interface{}{"ok": true, "ratio": json.Number("0.5")},
	}, data)
}

func TestParseDataKeepsWideIntegersExact(t *testing.T) {
	data, err := parseData(`{"total": 9007199254740993, "max": 18446744073709551615}`)
	require.NoError(t, err)

	encoded, err := adapter.Encode(data)
	require.NoError(t, err)

	assert.Equal(t, `{"max":18446744073709551615,"total":9007199254740993}`, string(encoded))
}

func TestParseDataRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`[1, 2]`, `"text"`, `42`, `null`, `{not json`, ``, `{"a": 1} {"b": 2}`, `{"a": 1} x`} {
		_, err := parseData(input)
		assert.Error(t, err, input)
	}
}

func TestNewAdapterFallsBackToMemory(t *testing.T) {
	logger := log.NewNoopLogger()
	kafka := &meta.Config{Adapter: &meta.AdapterConfig{Kafka: &meta.KafkaConfig{Brokers: []string{"kafka:9092"}}}}

	for description, tc := range map[string]struct {
		config *meta.Config
		dryRun bool
	}{
		"no adapter block": {config: &meta.Config{}},
		"no kafka block":   {config: &meta.Config{Adapter: &meta.AdapterConfig{}}},
		"dry run":          {config: kafka, dryRun: true},
	} {
		t.Run(description, func(t *testing.T) {
			sink, closer, err := newAdapter(tc.config, tc.dryRun, logger)
			require.NoError(t, err)

			assert.IsType(t, &adapter.Memory{}, sink)
			assert.NoError(t, closer())
		})
	}
}

func TestNewPublishHookWithoutStatsd(t *testing.T) {
	hook, err := newPublishHook(&meta.Config{Application: &meta.ApplicationConfig{}}, "specs.hostname", log.NewNoopLogger())
	require.NoError(t, err)

	assert.IsType(t, &metrics.NoopPublishHook{}, hook)
}

func TestResolveHostname(t *testing.T) {
	calls := 0
	resolve := func() (string, error) {
		calls++
		return "local.hostname", nil
	}

	hostname, err := resolveHostname(&meta.Config{Application: &meta.ApplicationConfig{Hostname: "specs.hostname"}}, resolve)
	require.NoError(t, err)
	assert.Equal(t, "specs.hostname", hostname)
	assert.Equal(t, 0, calls)

	hostname, err = resolveHostname(&meta.Config{Application: &meta.ApplicationConfig{}}, resolve)
	require.NoError(t, err)
	assert.Equal(t, "local.hostname", hostname)
	assert.Equal(t, 1, calls)
}

func TestResolveHostnameError(t *testing.T) {
	_, err := resolveHostname(&meta.Config{Application: &meta.ApplicationConfig{}}, func() (string, error) {
		return "", errors.New("no hostname")
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "main: error resolving hostname: err=no hostname")
}
