package metrics

import (
	"time"
)

// PublishHook is a metrics hook interface for reporting on the emitter's own publishing. It is
// invoked only for pushes that pass the delivery gate.
type PublishHook interface {
	// EmitPublish reports that an envelope was handed to the adapter successfully, along with
	// the time the adapter took to accept it.
	EmitPublish(name string, latency time.Duration)

	// EmitPublishError reports that the adapter rejected an envelope.
	EmitPublishError(name string)
}

// AsyncStatsdPublishHook is an implementation of PublishHook that outputs metrics asynchronously
// to statsd.
type AsyncStatsdPublishHook struct {
	client *StatsdClient
}

// NoopPublishHook implements the PublishHook interface but noops on all emissions.
type NoopPublishHook struct{}

// NewAsyncStatsdPublishHook creates a new hook with the specified statsd address and sample rate.
// Every emission is tagged with the given host name.
func NewAsyncStatsdPublishHook(addr string, sampleRate float32, hostname string) (PublishHook, error) {
	client, err := NewStatsdClient(addr, "monitoringsdk", map[string]string{"host": hostname}, sampleRate)
	if err != nil {
		return nil, err
	}

	return &AsyncStatsdPublishHook{client}, nil
}

// EmitPublish statsd implementation
func (h *AsyncStatsdPublishHook) EmitPublish(name string, latency time.Duration) {
	go func() {
		tags := map[string]string{"metric": name}

		h.client.Count("event.publish", 1, tags)
		h.client.Timing("latency.publish", latency, tags)
	}()
}

// EmitPublishError statsd implementation
func (h *AsyncStatsdPublishHook) EmitPublishError(name string) {
	go h.client.Count("event.publish_error", 1, map[string]string{"metric": name})
}

// NewNoopPublishHook creates a noop implementation of PublishHook.
func NewNoopPublishHook() PublishHook {
	return &NoopPublishHook{}
}

// EmitPublish noops.
func (h *NoopPublishHook) EmitPublish(name string, latency time.Duration) {}

// EmitPublishError noops.
func (h *NoopPublishHook) EmitPublishError(name string) {}
