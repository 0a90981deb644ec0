package metrics

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/cactus/go-statsd-client/v5/statsd"
)

// statter is the subset of statsd.Statter used to ship metrics.
type statter interface {
	Inc(stat string, value int64, rate float32, tags ...statsd.Tag) error
	TimingDuration(stat string, delta time.Duration, rate float32, tags ...statsd.Tag) error
}

// StatsdClient is an abstraction over a UDP statsd emitter.
type StatsdClient struct {
	backend     statter
	defaultTags map[string]string
	sampleRate  float32
}

// NewStatsdClient creates a new statsd client pointing the specified listener/server address with
// an optional prefix and set of default tags to include with every metric. Tags are written
// InfluxDB-style, appended to the metric name.
func NewStatsdClient(addr string, prefix string, defaultTags map[string]string, sampleRate float32) (*StatsdClient, error) {
	client, err := statsd.NewClientWithConfig(&statsd.ClientConfig{
		Address:   addr,
		Prefix:    prefix,
		TagFormat: statsd.InfixComma,
	})
	if err != nil {
		return nil, fmt.Errorf("statsd: error creating statsd client: err=%v", err)
	}

	return &StatsdClient{
		backend:     client,
		defaultTags: defaultTags,
		sampleRate:  sampleRate,
	}, nil
}

// Count emits a count metric with a configurable delta.
func (c *StatsdClient) Count(metric string, delta int64, tags map[string]string) error {
	return c.backend.Inc(url.QueryEscape(metric), delta, c.sampleRate, c.mergeTags(tags)...)
}

// Timing emits a time duration metric.
func (c *StatsdClient) Timing(metric string, duration time.Duration, tags map[string]string) error {
	return c.backend.TimingDuration(url.QueryEscape(metric), duration, c.sampleRate, c.mergeTags(tags)...)
}

// mergeTags combines the default tags with per-call tags, which win on conflict. The result is
// sorted by key so that a series always serializes the same way. Colons and the other characters
// the statsd line protocol reserves are URL-escaped.
func (c *StatsdClient) mergeTags(tags map[string]string) []statsd.Tag {
	if len(c.defaultTags)+len(tags) == 0 {
		return nil
	}

	merged := make(map[string]string, len(c.defaultTags)+len(tags))
	for key, value := range c.defaultTags {
		merged[key] = value
	}
	for key, value := range tags {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]statsd.Tag, 0, len(keys))
	for _, key := range keys {
		result = append(result, statsd.Tag{url.QueryEscape(key), url.QueryEscape(merged[key])})
	}

	return result
}
