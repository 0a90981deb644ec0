package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/getsentry/raven-go"

	"monitoringsdk/adapter"
	"monitoringsdk/internal/meta"
	"monitoringsdk/log"
	"monitoringsdk/metrics"
)

func main() {
	configPath := flag.String(
		"config",
		os.Getenv("METRICPUSH_CONFIG"),
		"path to the configuration file on disk",
	)
	version := flag.Bool(
		"version",
		false,
		"print the compiled metricpush version SHA",
	)
	verbosity := flag.String(
		"verbosity",
		"error",
		"desired logging verbosity: one of error, warn, info, debug",
	)
	domain := flag.String("domain", "", "metric domain, e.g. billing")
	name := flag.String("name", "", "metric name within its domain, e.g. invoices_sent")
	metricVersion := flag.Int("metric-version", 1, "metric version")
	data := flag.String("data", "{}", "metric data as a JSON object")
	dryRun := flag.Bool(
		"dry-run",
		false,
		"record the envelope in memory and print it instead of publishing it",
	)
	flag.Parse()

	// Report the compiled version and exit
	if *version {
		fmt.Printf("metricpush/%s\n", meta.VersionSHA)
		return
	}

	// Logging configuration; default to log.Error verbosity
	level, _ := log.ParseLevel(*verbosity)
	logger := log.NewConsoleLogger(level)
	logger.Debug("main: initialized logger: level=%v", level)

	// Parse application configuration
	logger.Debug("main: reading and parsing config: path=%s", *configPath)
	config, err := meta.ParseConfig(*configPath)
	if err != nil {
		panic(err)
	}

	// An explicit -verbosity flag takes precedence over the configured verbosity
	if config.Application.Verbosity != nil && !flagSet("verbosity") {
		logger = log.NewConsoleLogger(*config.Application.Verbosity)
		logger.Debug("main: using configured verbosity: level=%v", *config.Application.Verbosity)
	}

	// Configure error reporting
	if config.Application.SentryDSN != "" {
		raven.SetDSN(config.Application.SentryDSN)
		raven.SetRelease(meta.VersionSHA)
	}

	delivery := config.Delivery()
	for _, invalid := range delivery.Invalid() {
		logger.Warn("main: delivery entry is not a boolean; metric is disabled: metric=%s", invalid)
	}

	payload, err := parseData(*data)
	if err != nil {
		panic(err)
	}

	hostname, err := resolveHostname(config, os.Hostname)
	if err != nil {
		panic(err)
	}

	hook, err := newPublishHook(config, hostname, logger)
	if err != nil {
		panic(err)
	}

	sink, closer, err := newAdapter(config, *dryRun, logger)
	if err != nil {
		panic(err)
	}

	metric, err := metrics.New(metrics.Config{
		Domain:        *domain,
		Name:          *name,
		Version:       *metricVersion,
		Application:   config.Application.Name,
		SchemaVersion: config.Application.SchemaVersion,
		Adapter:       sink,
		Delivery:      delivery,
		Hostname:      hostname,
		Tags:          config.Application.Tags,
		Hook:          hook,
	})
	if err != nil {
		panic(err)
	}

	if !delivery.Enabled(metric.Name()) {
		logger.Info("main: metric is not enabled for delivery: metric=%s", metric.Name())
	}

	pushErr := metric.Push(payload)

	if err := closer(); err != nil {
		logger.Error("main: error closing adapter: err=%v", err)
	}

	if pushErr != nil {
		logger.Error("main: error pushing metric: metric=%s err=%v", metric.Name(), pushErr)
		os.Exit(1)
	}

	if memory, ok := sink.(*adapter.Memory); ok {
		for _, message := range memory.Messages() {
			encoded, err := adapter.Encode(message)
			if err != nil {
				panic(err)
			}

			fmt.Println(string(encoded))
		}
	}
}

// flagSet reports whether the named flag was passed on the command line.
func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})

	return set
}

// parseData decodes the metric data flag, which must be a single JSON object. Numbers are kept as
// their literal text so that wide integers reach the adapter exactly.
func parseData(data string) (map[string]interface{}, error) {
	decoder := json.NewDecoder(strings.NewReader(data))
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil || payload == nil {
		return nil, fmt.Errorf("main: metric data must be a JSON object: data=%s", data)
	}

	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("main: trailing input after metric data: data=%s", data)
	}

	return payload, nil
}

// resolveHostname returns the configured host name, or resolves the local one. The result is
// shared by the emitter and the publish hook.
func resolveHostname(config *meta.Config, resolve func() (string, error)) (string, error) {
	if config.Application.Hostname != "" {
		return config.Application.Hostname, nil
	}

	hostname, err := resolve()
	if err != nil {
		return "", fmt.Errorf("main: error resolving hostname: err=%v", err)
	}

	return hostname, nil
}

// newPublishHook creates a statsd publish hook if statsd is configured, and a noop hook otherwise.
func newPublishHook(config *meta.Config, hostname string, logger log.Logger) (metrics.PublishHook, error) {
	if config.Metrics == nil || config.Metrics.Statsd == nil {
		logger.Debug("main: no statsd address specified; disabling publish telemetry")
		return metrics.NewNoopPublishHook(), nil
	}

	logger.Info(
		"main: configuring statsd publish telemetry: addr=%s sample_rate=%f",
		config.Metrics.Statsd.Address,
		config.Metrics.Statsd.SampleRate,
	)

	return metrics.NewAsyncStatsdPublishHook(
		config.Metrics.Statsd.Address,
		float32(config.Metrics.Statsd.SampleRate),
		hostname,
	)
}

// newAdapter selects the transport: Kafka when configured, the in-memory adapter for dry runs or
// when no transport is configured. The returned closer releases the transport.
func newAdapter(config *meta.Config, dryRun bool, logger log.Logger) (adapter.Adapter, func() error, error) {
	noopCloser := func() error { return nil }

	if dryRun || config.Adapter == nil || config.Adapter.Kafka == nil {
		if !dryRun {
			logger.Warn("main: no adapter specified; recording metrics in memory")
		}

		return adapter.NewMemory(), noopCloser, nil
	}

	logger.Info(
		"main: configuring kafka adapter: brokers=%v topic=%s",
		config.Adapter.Kafka.Brokers,
		adapter.KafkaTopic,
	)

	kafka, err := adapter.NewKafka(config.Adapter.Kafka.Brokers, config.Adapter.Kafka.Opts(logger))
	if err != nil {
		return nil, nil, err
	}

	return kafka, kafka.Close, nil
}
