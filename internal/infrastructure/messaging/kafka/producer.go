package kafka

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

const defaultMaxMessageBytes = 1 << 20

var (
	ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")
)

// Message is a record to publish or a record received from a topic.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Publisher is satisfied by Producer; services and the consumer's dead-letter
// path depend on it instead of the concrete type.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// ProducerStats is a point-in-time copy of the producer counters.
type ProducerStats struct {
	MessagesSent   int64
	MessagesFailed int64
	BytesSent      int64
	LastLatency    time.Duration
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer publishes domain events.  Messages are partitioned by key so that
// events of one aggregate stay ordered.
type Producer struct {
	writer          WriterInterface
	logger          logging.Logger
	maxMessageBytes int
	closed          atomic.Bool

	sent        atomic.Int64
	failed      atomic.Int64
	bytes       atomic.Int64
	lastLatency atomic.Int64
}

// NewProducer builds a producer writing to cfg.Brokers.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka max_retries must be >= 0")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultKafkaBatchSize
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = config.DefaultKafkaBatchTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = config.DefaultKafkaRetryBackoff
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            cfg.MaxRetries + 1,
		WriteBackoffMin:        backoff,
		BatchSize:              batchSize,
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: cfg.AutoCreateTopics,
		Transport: &kafka.Transport{
			ClientID:    cfg.ClientID,
			DialTimeout: 10 * time.Second,
		},
	}
	return NewProducerWithWriter(w, log), nil
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w WriterInterface, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{
		writer:          w,
		logger:          log,
		maxMessageBytes: defaultMaxMessageBytes,
	}
}

// Publish writes one message and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if err := p.validate(msg); err != nil {
		return err
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessagingError, "publish failed").
			WithDetail("topic=" + msg.Topic)
	}
	latency := time.Since(start)
	p.sent.Add(1)
	p.bytes.Add(int64(len(msg.Value)))
	p.lastLatency.Store(int64(latency))

	p.logger.Debug("Message published",
		logging.String("topic", msg.Topic),
		logging.Duration("latency", latency))
	return nil
}

// PublishBatch writes msgs in one call.  It returns the number of messages
// the broker accepted together with the first error encountered.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*Message) (int, error) {
	if p.closed.Load() {
		return 0, ErrProducerClosed
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	kMsgs := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		if err := p.validate(m); err != nil {
			return 0, err
		}
		kMsgs[i] = toKafkaMessage(m)
	}

	err := p.writer.WriteMessages(ctx, kMsgs...)
	if err == nil {
		p.sent.Add(int64(len(msgs)))
		return len(msgs), nil
	}

	var writeErrs kafka.WriteErrors
	if !stderrors.As(err, &writeErrs) {
		p.failed.Add(int64(len(msgs)))
		return 0, errors.Wrap(err, errors.ErrCodeMessagingError, "batch publish failed")
	}
	var firstErr error
	ok := 0
	for _, we := range writeErrs {
		if we == nil {
			ok++
			continue
		}
		if firstErr == nil {
			firstErr = we
		}
	}
	p.sent.Add(int64(ok))
	p.failed.Add(int64(len(msgs) - ok))
	p.logger.Warn("Batch partially published",
		logging.Int("succeeded", ok),
		logging.Int("failed", len(msgs)-ok))
	return ok, errors.Wrap(firstErr, errors.ErrCodeMessagingError, "batch publish failed")
}

// Stats returns a copy of the producer counters.
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		MessagesSent:   p.sent.Load(),
		MessagesFailed: p.failed.Load(),
		BytesSent:      p.bytes.Load(),
		LastLatency:    time.Duration(p.lastLatency.Load()),
	}
}

// Close flushes pending batches.  Calling it more than once is a no-op.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}

func (p *Producer) validate(msg *Message) error {
	switch {
	case msg == nil:
		return errors.New(errors.ErrCodeValidation, "message required")
	case msg.Topic == "":
		return errors.New(errors.ErrCodeValidation, "topic required")
	case len(msg.Value) == 0:
		return errors.New(errors.ErrCodeValidation, "value required")
	case len(msg.Value) > p.maxMessageBytes:
		return errors.New(errors.ErrCodeValidation, "message too large")
	}
	return nil
}

func toKafkaMessage(msg *Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    ts,
	}
}

func fromKafkaMessage(m kafka.Message) *Message {
	msg := &Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
