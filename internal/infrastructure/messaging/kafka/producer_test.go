package kafka

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	written   []kafka.Message
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats { return kafka.WriterStats{} }

func newTestMessage(topic, key, value string) *Message {
	return &Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   []byte(value),
		Headers: map[string]string{"event_type": "farm.created"},
	}
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestNewProducer_Success(t *testing.T) {
	p, err := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}, MaxRetries: 2}, nil)
	require.NoError(t, err)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, 3, w.MaxAttempts)
	assert.Equal(t, config.DefaultKafkaBatchSize, w.BatchSize)
	assert.NoError(t, p.Close())
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := NewProducerWithWriter(w, nil)

	err := p.Publish(context.Background(), newTestMessage(TopicFarmEvents, "farm-1", `{"a":1}`))
	require.NoError(t, err)

	require.Len(t, w.written, 1)
	got := w.written[0]
	assert.Equal(t, TopicFarmEvents, got.Topic)
	assert.Equal(t, []byte("farm-1"), got.Key)
	assert.False(t, got.Time.IsZero())
	require.Len(t, got.Headers, 1)
	assert.Equal(t, "event_type", got.Headers[0].Key)

	stats := p.Stats()
	assert.EqualValues(t, 1, stats.MessagesSent)
	assert.EqualValues(t, 7, stats.BytesSent)
}

func TestPublish_Validation(t *testing.T) {
	p := NewProducerWithWriter(&mockKafkaWriter{}, nil)
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, nil))
	assert.Error(t, p.Publish(ctx, newTestMessage("", "k", "v")))
	assert.Error(t, p.Publish(ctx, newTestMessage(TopicFarmEvents, "k", "")))

	big := make([]byte, defaultMaxMessageBytes+1)
	err := p.Publish(ctx, &Message{Topic: TopicFarmEvents, Value: big})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestPublish_WriterError(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return stderrors.New("broker down")
	}}
	p := NewProducerWithWriter(w, nil)

	err := p.Publish(context.Background(), newTestMessage(TopicFarmEvents, "k", "v"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMessagingError))
	assert.EqualValues(t, 1, p.Stats().MessagesFailed)
}

func TestPublish_AfterClose(t *testing.T) {
	w := &mockKafkaWriter{}
	p := NewProducerWithWriter(w, nil)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	err := p.Publish(context.Background(), newTestMessage(TopicFarmEvents, "k", "v"))
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestPublishBatch_PartialFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
		return kafka.WriteErrors{nil, stderrors.New("leader not available"), nil}
	}}
	p := NewProducerWithWriter(w, nil)

	msgs := []*Message{
		newTestMessage(TopicFarmEvents, "1", "a"),
		newTestMessage(TopicFarmEvents, "2", "b"),
		newTestMessage(TopicFarmEvents, "3", "c"),
	}
	n, err := p.PublishBatch(context.Background(), msgs)
	assert.Equal(t, 2, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")

	stats := p.Stats()
	assert.EqualValues(t, 2, stats.MessagesSent)
	assert.EqualValues(t, 1, stats.MessagesFailed)
}

func TestPublishBatch_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := NewProducerWithWriter(w, nil)

	n, err := p.PublishBatch(context.Background(), []*Message{
		newTestMessage(TopicAlertEvents, "1", "a"),
		newTestMessage(TopicAlertEvents, "2", "b"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, w.written, 2)

	n, err = p.PublishBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
