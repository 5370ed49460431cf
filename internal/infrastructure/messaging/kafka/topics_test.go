package kafka

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/internal/config"
)

type farmPayload struct {
	FarmID string `json:"farm_id"`
	Name   string `json:"name"`
}

func TestEventEnvelope_RoundTripThroughMessage(t *testing.T) {
	env, err := NewEventEnvelope("farm.created", "apiserver", farmPayload{FarmID: "f1", Name: "North"})
	require.NoError(t, err)
	env.Key = "f1"
	env.ActorName = "Jane Doe"
	env.TraceID = "req-1"

	msg, err := env.ToMessage(TopicFarmEvents)
	require.NoError(t, err)
	assert.Equal(t, TopicFarmEvents, msg.Topic)
	assert.Equal(t, []byte("f1"), msg.Key)
	assert.Equal(t, "farm.created", msg.Headers[HeaderEventType])
	assert.Equal(t, "req-1", msg.Headers[HeaderTraceID])

	decoded, err := DecodeEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)
	assert.Equal(t, "Jane Doe", decoded.ActorName)

	var p farmPayload
	require.NoError(t, decoded.DecodePayload(&p))
	assert.Equal(t, "North", p.Name)
}

func TestDecodeEnvelope_Rejects(t *testing.T) {
	_, err := DecodeEnvelope(&Message{})
	assert.Error(t, err)

	_, err = DecodeEnvelope(&Message{Value: []byte("not json")})
	assert.Error(t, err)

	_, err = DecodeEnvelope(&Message{Value: []byte(`{"event_type":"farm.created"}`)})
	assert.Error(t, err)
}

func TestDecodePayload_Empty(t *testing.T) {
	env, err := NewEventEnvelope("profile.role_changed", "apiserver", nil)
	require.NoError(t, err)
	var p farmPayload
	assert.NoError(t, env.DecodePayload(&p))
	assert.Empty(t, p.FarmID)
}

func TestDefaultTopics(t *testing.T) {
	specs := DefaultTopics(config.KafkaConfig{NumPartitions: 6, ReplicationFactor: 3})
	require.Len(t, specs, len(DomainTopics())+1)
	assert.Equal(t, 6, specs[0].NumPartitions)
	last := specs[len(specs)-1]
	assert.Equal(t, TopicDeadLetter, last.Name)
	assert.Equal(t, 1, last.NumPartitions)
	assert.Equal(t, 28*24*time.Hour, last.Retention)
}

type mockConn struct {
	created    []kafka.TopicConfig
	createErr  map[string]error
	partitions map[string][]kafka.Partition
}

func (m *mockConn) CreateTopics(topics ...kafka.TopicConfig) error {
	for _, tc := range topics {
		if err := m.createErr[tc.Topic]; err != nil {
			return err
		}
		m.created = append(m.created, tc)
	}
	return nil
}

func (m *mockConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	return m.partitions[topics[0]], nil
}

func (m *mockConn) Close() error { return nil }

func TestTopicManager_EnsureTopics(t *testing.T) {
	conn := &mockConn{
		createErr: map[string]error{
			TopicFarmEvents:  kafka.TopicAlreadyExists,
			TopicAlertEvents: stderrors.New("timeout"),
		},
		partitions: map[string][]kafka.Partition{
			TopicAlertEvents: {{Topic: TopicAlertEvents, ID: 0}},
		},
	}
	m := NewTopicManagerWithConn(conn, nil)

	err := m.EnsureTopics(DefaultTopics(config.KafkaConfig{}))
	require.NoError(t, err)
	assert.Len(t, conn.created, len(DomainTopics())-1)
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)
	assert.Equal(t, "604800000", conn.created[0].ConfigEntries[0].ConfigValue)
}

func TestTopicManager_EnsureTopicsFails(t *testing.T) {
	conn := &mockConn{createErr: map[string]error{TopicDeadLetter: stderrors.New("not authorized")}}
	m := NewTopicManagerWithConn(conn, nil)

	err := m.EnsureTopics(DefaultTopics(config.KafkaConfig{}))
	require.Error(t, err)

	err = m.EnsureTopics([]TopicSpec{{Name: "x"}})
	assert.Error(t, err)
}
