package metrics

import (
	"fmt"
	"os"
	"time"

	"lib.kevinlin.info/aperture/lib"

	"monitoringsdk/adapter"
)

// Envelope field names. Together with the canonical-name-keyed payload field, these are the wire
// contract consumed by downstream storage.
const (
	FieldApplication   = "application"
	FieldSchemaVersion = "schemaVersion"
	FieldHostname      = "hostname"
	FieldName          = "name"
	FieldTags          = "tags"
	FieldTimestamp     = "timestamp"

	// TagDomain is the tag carrying the metric's domain.
	TagDomain = "domain"
)

// Config lists every option recognized when constructing a Metric.
type Config struct {
	// Domain is the top-level namespace of the metric, e.g. "billing".
	Domain string
	// Name is the metric name within its domain, e.g. "invoices_sent".
	Name string
	// Version is the metric version. Bump it whenever the type of a value changes.
	Version int

	// Application names the emitting application, e.g. "platform".
	Application string
	// SchemaVersion is the envelope schema version. It is emitted exactly as given.
	SchemaVersion interface{}

	// Adapter carries envelopes to the downstream transport.
	Adapter adapter.Adapter
	// Delivery is the per-environment delivery table. Nil delivers nothing.
	Delivery Delivery

	// Hostname, if set, is used verbatim instead of resolving the local host name.
	Hostname string
	// ResolveHostname is invoked once at construction when Hostname is empty. Defaults to
	// os.Hostname.
	ResolveHostname func() (string, error)
	// Clock supplies push times. Defaults to time.Now.
	Clock func() time.Time
	// Tags are additional static tags included with every envelope. The domain tag always
	// takes precedence.
	Tags map[string]string
	// Hook receives publish telemetry. Defaults to a noop hook.
	Hook PublishHook
}

// Metric is an emitter for a single named, versioned metric. Its identity and static metadata
// are fixed at construction.
type Metric struct {
	name          string
	tags          map[string]string
	application   string
	schemaVersion interface{}
	hostname      string
	adapter       adapter.Adapter
	delivery      Delivery
	clock         func() time.Time
	hook          PublishHook
}

// CanonicalName derives the canonical metric name from its identity.
func CanonicalName(domain string, name string, version int) string {
	return fmt.Sprintf("%s.%s.v%d", domain, name, version)
}

// New creates a metric emitter. Identity fields are not validated; the only failure is an error
// resolving the host name.
func New(cfg Config) (*Metric, error) {
	hostname := cfg.Hostname
	if hostname == "" {
		resolve := cfg.ResolveHostname
		if resolve == nil {
			resolve = os.Hostname
		}

		resolved, err := resolve()
		if err != nil {
			return nil, fmt.Errorf("metrics: error resolving hostname: err=%v", err)
		}

		hostname = resolved
	}

	tags := make(map[string]string, len(cfg.Tags)+1)
	for key, value := range cfg.Tags {
		tags[key] = value
	}
	tags[TagDomain] = cfg.Domain

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	hook := cfg.Hook
	if hook == nil {
		hook = NewNoopPublishHook()
	}

	return &Metric{
		name:          CanonicalName(cfg.Domain, cfg.Name, cfg.Version),
		tags:          tags,
		application:   cfg.Application,
		schemaVersion: cfg.SchemaVersion,
		hostname:      hostname,
		adapter:       cfg.Adapter,
		delivery:      cfg.Delivery,
		clock:         clock,
		hook:          hook,
	}, nil
}

// Metric creates another emitter that shares this configuration but has its own identity.
func (c Config) Metric(domain string, name string, version int) (*Metric, error) {
	c.Domain = domain
	c.Name = name
	c.Version = version

	return New(c)
}

// Name returns the canonical metric name.
func (m *Metric) Name() string {
	return m.name
}

// Push publishes data under the metric's canonical name, if the metric is enabled for delivery.
// A disabled metric is a silent noop. Adapter errors are returned unmodified.
func (m *Metric) Push(data map[string]interface{}) error {
	if !m.delivery.Enabled(m.name) {
		return nil
	}

	if data == nil {
		data = map[string]interface{}{}
	}

	publishTimer := lib.NewStopwatch()

	if err := m.adapter.Publish(m.envelope(data)); err != nil {
		m.hook.EmitPublishError(m.name)
		return err
	}

	m.hook.EmitPublish(m.name, publishTimer.Elapsed())

	return nil
}

// envelope assembles the full message for a single push, stamped with the current time.
func (m *Metric) envelope(data map[string]interface{}) adapter.Message {
	tags := make(map[string]string, len(m.tags))
	for key, value := range m.tags {
		tags[key] = value
	}

	return adapter.Message{
		FieldApplication:   m.application,
		FieldSchemaVersion: m.schemaVersion,
		FieldHostname:      m.hostname,
		FieldName:          m.name,
		FieldTags:          tags,
		FieldTimestamp:     m.clock().UTC().Truncate(time.Second).Format(time.RFC3339),
		m.name:             data,
	}
}
