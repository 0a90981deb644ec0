package adapter

// Message is a single structured envelope handed to an adapter. Values are expected to be
// JSON-serializable.
type Message map[string]interface{}

// Adapter is the transport capability: it publishes a single message.
type Adapter interface {
	// Publish delivers, or schedules delivery of, a single message. Synchronous adapters
	// report failures through the returned error.
	Publish(message Message) error
}

// Func is an adapter backed by an ordinary function.
type Func func(message Message) error

// Publish invokes the function.
func (f Func) Publish(message Message) error {
	return f(message)
}
