package adapter

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/getsentry/raven-go"

	"monitoringsdk/log"
)

// KafkaTopic is the broker topic to which every metric envelope is published.
const KafkaTopic = "metrics"

// ErrClosed is returned when publishing through an adapter that has already been closed.
var ErrClosed = errors.New("kafka: adapter is closed")

// KafkaOpts formalizes configuration options for the Kafka adapter.
type KafkaOpts struct {
	// ClientID identifies this producer to the brokers.
	ClientID string
	// RequiredAcks is the level of acknowledgement the brokers must provide for a produce
	// request. It never blocks Publish; it only affects what the background producer treats as
	// a transport failure.
	RequiredAcks sarama.RequiredAcks
	// FlushFrequency is the best-effort interval at which buffered messages are flushed. Zero
	// leaves the producer default.
	FlushFrequency time.Duration
	// Logger receives transport failures. Defaults to a noop logger.
	Logger log.Logger
}

// Kafka is an adapter that publishes JSON-encoded messages to KafkaTopic through an
// asynchronous producer. Publish enqueues and returns immediately; delivery is not confirmed.
type Kafka struct {
	producer sarama.AsyncProducer
	logger   log.Logger
	drained  chan struct{}
	closed   bool
	mutex    sync.RWMutex
}

// ParseRequiredAcks looks up a sarama acknowledgement level by name: one of none, local, or all.
// Unknown names resolve to local.
func ParseRequiredAcks(acks string) (sarama.RequiredAcks, bool) {
	switch strings.ToLower(acks) {
	case "none":
		return sarama.NoResponse, true
	case "local":
		return sarama.WaitForLocal, true
	case "all":
		return sarama.WaitForAll, true
	default:
		return sarama.WaitForLocal, false
	}
}

// NewKafka creates an asynchronous producer connected to the specified brokers and wraps it in a
// Kafka adapter.
func NewKafka(brokers []string, opts KafkaOpts) (*Kafka, error) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Errors = true
	conf.Producer.Return.Successes = false
	conf.Producer.RequiredAcks = opts.RequiredAcks

	if opts.ClientID != "" {
		conf.ClientID = opts.ClientID
	}

	if opts.FlushFrequency > 0 {
		conf.Producer.Flush.Frequency = opts.FlushFrequency
	}

	producer, err := sarama.NewAsyncProducer(brokers, conf)
	if err != nil {
		return nil, fmt.Errorf("kafka: error creating producer: brokers=%v err=%v", brokers, err)
	}

	return NewKafkaWithProducer(producer, opts), nil
}

// NewKafkaWithProducer wraps an existing asynchronous producer. The producer must be configured
// to return errors and not successes; the adapter takes ownership of its error channel.
func NewKafkaWithProducer(producer sarama.AsyncProducer, opts KafkaOpts) *Kafka {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	k := &Kafka{
		producer: producer,
		logger:   logger,
		drained:  make(chan struct{}),
	}

	go k.drainErrors()

	return k
}

// Publish serializes the message and enqueues it for the metrics topic without blocking.
// Unserializable messages, and messages arriving while the producer's input buffer is full, are
// logged and dropped rather than returned; the only synchronous error is ErrClosed.
func (k *Kafka) Publish(message Message) error {
	k.mutex.RLock()
	defer k.mutex.RUnlock()

	if k.closed {
		return ErrClosed
	}

	data, err := Encode(message)
	if err != nil {
		k.logger.Error("kafka: dropping unserializable message: err=%v", err)
		return nil
	}

	msg := &sarama.ProducerMessage{
		Topic: KafkaTopic,
		Value: sarama.ByteEncoder(data),
	}

	// Keying by metric name keeps one metric's envelopes on one partition, in publish order.
	if name, ok := message["name"].(string); ok && name != "" {
		msg.Key = sarama.StringEncoder(name)
	}

	select {
	case k.producer.Input() <- msg:
		k.logger.Debug("kafka: enqueued message: topic=%s bytes=%d", KafkaTopic, len(data))
	default:
		k.logger.Error("kafka: dropping message; producer input is full: topic=%s", KafkaTopic)
	}

	return nil
}

// Close flushes buffered messages, shuts down the producer, and waits until every outstanding
// transport failure has been reported. Subsequent publishes fail with ErrClosed.
func (k *Kafka) Close() error {
	k.mutex.Lock()
	if k.closed {
		k.mutex.Unlock()
		return ErrClosed
	}
	k.closed = true
	k.mutex.Unlock()

	k.producer.AsyncClose()
	<-k.drained

	return nil
}

// drainErrors consumes the producer's error channel until the producer shuts down. Failures are
// not observable to Publish callers; they are logged and reported to Sentry.
func (k *Kafka) drainErrors() {
	defer close(k.drained)

	for producerErr := range k.producer.Errors() {
		k.logger.Error(
			"kafka: failed to deliver message: topic=%s err=%v",
			producerErr.Msg.Topic,
			producerErr.Err,
		)

		raven.CaptureError(producerErr.Err, map[string]string{
			"topic": producerErr.Msg.Topic,
		})
	}
}
