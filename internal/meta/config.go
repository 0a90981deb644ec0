package meta

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"monitoringsdk/adapter"
	"monitoringsdk/log"
	"monitoringsdk/metrics"
)

// ApplicationConfig is a top-level block for the static metadata stamped on every envelope.
type ApplicationConfig struct {
	Name          string            `yaml:"name"`
	SchemaVersion interface{}       `yaml:"schema_version"`
	Hostname      string            `yaml:"hostname"`
	Tags          map[string]string `yaml:"tags"`
	SentryDSN     string            `yaml:"sentry_dsn"`
	// Verbosity applies when no verbosity flag is passed.
	Verbosity *log.Level `yaml:"verbosity"`
}

// MetricsConfig is a top-level block for delivery gating and self-telemetry.
type MetricsConfig struct {
	// Deliver maps canonical metric names to whether they are delivered in this environment.
	Deliver map[string]interface{} `yaml:"deliver"`
	Statsd  *struct {
		Address    string  `yaml:"addr"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"statsd"`
}

// KafkaConfig describes the broker adapter's producer.
type KafkaConfig struct {
	Brokers        []string      `yaml:"brokers"`
	ClientID       string        `yaml:"client_id"`
	RequiredAcks   string        `yaml:"required_acks"`
	FlushFrequency time.Duration `yaml:"flush_frequency"`
}

// AdapterConfig is a top-level block for transport configuration. Omitting every adapter
// selects the in-memory adapter.
type AdapterConfig struct {
	Kafka *KafkaConfig `yaml:"kafka"`
}

// Config describes all application configuration options.
type Config struct {
	Application *ApplicationConfig `yaml:"application"`
	Metrics     *MetricsConfig     `yaml:"metrics"`
	Adapter     *AdapterConfig     `yaml:"adapter"`
}

// ParseConfig parses a Config struct instance from a file specified as a path on disk.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: error reading config: err=%v", err)
	}

	return parseConfig(data)
}

// parseConfig parses and validates a Config from raw YAML.
func parseConfig(data []byte) (*Config, error) {
	var cfg *Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: error parsing config: err=%v", err)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config: empty config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Delivery returns the configured delivery table. A missing metrics block yields a nil table,
// which delivers nothing.
func (c *Config) Delivery() metrics.Delivery {
	if c.Metrics == nil {
		return nil
	}

	return metrics.Delivery(c.Metrics.Deliver)
}

// Opts translates the block into Kafka adapter options. An empty or unknown acknowledgement level
// resolves to waiting for the local broker.
func (k *KafkaConfig) Opts(logger log.Logger) adapter.KafkaOpts {
	acks, _ := adapter.ParseRequiredAcks(k.RequiredAcks)

	return adapter.KafkaOpts{
		ClientID:       k.ClientID,
		RequiredAcks:   acks,
		FlushFrequency: k.FlushFrequency,
		Logger:         logger,
	}
}

// validate the contents of the configuration. Returns an error if validation failed; nil otherwise.
func (c *Config) validate() error {
	/* Application */

	if c.Application == nil {
		return fmt.Errorf("config: missing top-level application config key")
	}

	if c.Application.Name == "" {
		return fmt.Errorf("config: missing application name")
	}

	if c.Application.SchemaVersion == nil {
		return fmt.Errorf("config: missing application schema version")
	}

	/* Metrics */

	// Users can omit the statsd block entirely to disable self-telemetry.
	if c.Metrics != nil && c.Metrics.Statsd != nil {
		if c.Metrics.Statsd.Address == "" {
			return fmt.Errorf("config: missing metrics statsd address")
		}

		if c.Metrics.Statsd.SampleRate < 0 || c.Metrics.Statsd.SampleRate > 1 {
			return fmt.Errorf("config: statsd sample rate must be in range [0.0, 1.0]")
		}
	}

	/* Adapter */

	if c.Adapter != nil && c.Adapter.Kafka != nil {
		if len(c.Adapter.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: no kafka brokers specified")
		}

		for idx, broker := range c.Adapter.Kafka.Brokers {
			if broker == "" {
				return fmt.Errorf("config: missing kafka broker address: idx=%d", idx)
			}
		}

		// Validate the acknowledgement level, only if provided (empty signifies default).
		if c.Adapter.Kafka.RequiredAcks != "" {
			if _, ok := adapter.ParseRequiredAcks(c.Adapter.Kafka.RequiredAcks); !ok {
				return fmt.Errorf(
					"config: unknown kafka required acks: acks=%s",
					c.Adapter.Kafka.RequiredAcks,
				)
			}
		}

		if c.Adapter.Kafka.FlushFrequency < 0 {
			return fmt.Errorf("config: kafka flush frequency must not be negative")
		}
	}

	return nil
}
