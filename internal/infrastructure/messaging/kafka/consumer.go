package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

const (
	defaultMaxRetryBackoff = 30 * time.Second
	fetchErrorBackoff      = time.Second
)

// Handler processes one message.  A returned error triggers retries and,
// once they are exhausted, a dead-letter publish.
type Handler func(ctx context.Context, msg *Message) error

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RetryPolicy bounds handler retries.
type RetryPolicy struct {
	MaxRetries      int
	Backoff         time.Duration
	MaxBackoff      time.Duration
	DeadLetterTopic string
}

// ConsumerStats is a point-in-time copy of the consumer counters.
type ConsumerStats struct {
	Consumed     int64
	Processed    int64
	Failed       int64
	Retried      int64
	DeadLettered int64
}

// Consumer reads a consumer group and dispatches messages to per-topic
// handlers.  Offsets are committed after the handler outcome is final, so a
// crash replays at most the in-flight message.
type Consumer struct {
	reader     ReaderInterface
	deadLetter Publisher
	retry      RetryPolicy
	logger     logging.Logger

	mu       sync.RWMutex
	handlers map[string]Handler

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	consumed, processed, failed, retried, deadLettered atomic.Int64
}

// NewConsumer joins cfg.GroupID on topics.  deadLetter may be nil, in which
// case exhausted messages are logged and dropped.
func NewConsumer(cfg config.KafkaConfig, topics []string, deadLetter Publisher, log logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka group_id required")
	}
	if len(topics) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxWait:     time.Second,
		StartOffset: kafka.FirstOffset,
		Dialer: &kafka.Dialer{
			ClientID:  cfg.ClientID,
			Timeout:   10 * time.Second,
			DualStack: true,
		},
	})
	policy := RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
	}
	if deadLetter != nil {
		policy.DeadLetterTopic = TopicDeadLetter
	}
	return NewConsumerWithReader(reader, policy, deadLetter, log), nil
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r ReaderInterface, policy RetryPolicy, deadLetter Publisher, log logging.Logger) *Consumer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if policy.Backoff <= 0 {
		policy.Backoff = config.DefaultKafkaRetryBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = defaultMaxRetryBackoff
	}
	return &Consumer{
		reader:     r,
		deadLetter: deadLetter,
		retry:      policy,
		logger:     log,
		handlers:   make(map[string]Handler),
	}
}

// Subscribe registers h for topic, replacing any previous handler.
func (c *Consumer) Subscribe(topic string, h Handler) {
	c.mu.Lock()
	c.handlers[topic] = h
	c.mu.Unlock()
	c.logger.Info("Subscribed to topic", logging.String("topic", topic))
}

// Start launches the consume loop.  It returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.loop(ctx)
	c.logger.Info("Kafka consumer started")
	return nil
}

func (c *Consumer) loop(ctx context.Context) {
	defer c.wg.Done()
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("FetchMessage failed", logging.Err(err))
			if !sleep(ctx, fetchErrorBackoff) {
				return
			}
			continue
		}
		c.consumed.Add(1)
		c.dispatch(ctx, m)
		if ctx.Err() != nil {
			return
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("CommitMessages failed",
				logging.String("topic", m.Topic),
				logging.Int64("offset", m.Offset),
				logging.Err(err))
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, m kafka.Message) {
	c.mu.RLock()
	h, ok := c.handlers[m.Topic]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("No handler for topic", logging.String("topic", m.Topic))
		return
	}

	msg := fromKafkaMessage(m)
	err := c.handle(ctx, h, msg)
	if err == nil {
		c.processed.Add(1)
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.failed.Add(1)
	c.logger.Error("Message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err))
	c.sendToDeadLetter(ctx, msg, err)
}

func (c *Consumer) handle(ctx context.Context, h Handler, msg *Message) error {
	err := h(ctx, msg)
	backoff := c.retry.Backoff
	for i := 0; err != nil && i < c.retry.MaxRetries; i++ {
		c.retried.Add(1)
		if !sleep(ctx, backoff) {
			return ctx.Err()
		}
		err = h(ctx, msg)
		backoff *= 2
		if backoff > c.retry.MaxBackoff {
			backoff = c.retry.MaxBackoff
		}
	}
	return err
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg *Message, cause error) {
	if c.deadLetter == nil || c.retry.DeadLetterTopic == "" {
		return
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderError] = cause.Error()
	dl := &Message{
		Topic:   c.retry.DeadLetterTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
	if err := c.deadLetter.Publish(ctx, dl); err != nil {
		c.logger.Error("Failed to publish to dead letter topic", logging.Err(err))
		return
	}
	c.deadLettered.Add(1)
}

// Stats returns a copy of the consumer counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.consumed.Load(),
		Processed:    c.processed.Load(),
		Failed:       c.failed.Load(),
		Retried:      c.retried.Load(),
		DeadLettered: c.deadLettered.Load(),
	}
}

// Close stops the loop, waits for the in-flight message and closes the
// reader.  The dead-letter publisher is owned by the caller.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return c.reader.Close()
	}
	c.cancel()
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("Kafka consumer closed", logging.Int64("consumed", c.consumed.Load()))
	return err
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
