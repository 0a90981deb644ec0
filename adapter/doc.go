// Package adapter defines the transport boundary for metric envelopes. An adapter is anything
// that can publish a single message; the emitter in package metrics holds no knowledge of which
// concrete adapter it is handed.
//
// Two implementations are provided. Memory records every message in order and is intended for
// tests and as a substitute collector. Kafka serializes each message to JSON and hands it,
// fire-and-forget, to an asynchronous producer targeting the fixed "metrics" topic; transport
// failures that occur after Publish returns are logged and reported, never returned.
package adapter
