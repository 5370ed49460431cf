package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/BioSecure-Portal/internal/config"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Topics carrying domain events, one per aggregate.
const (
	TopicFarmEvents       = "biosec.farm.events"
	TopicAssessmentEvents = "biosec.assessment.events"
	TopicTrainingEvents   = "biosec.training.events"
	TopicAlertEvents      = "biosec.alert.events"
	TopicProfileEvents    = "biosec.profile.events"
	TopicComplianceEvents = "biosec.compliance.events"
	TopicDeadLetter       = "biosec.dead_letter"
)

// DomainTopics lists every topic the activity consumer subscribes to.
func DomainTopics() []string {
	return []string{
		TopicFarmEvents,
		TopicAssessmentEvents,
		TopicTrainingEvents,
		TopicAlertEvents,
		TopicProfileEvents,
		TopicComplianceEvents,
	}
}

const (
	schemaVersion = "v1"

	HeaderEventType     = "event_type"
	HeaderSource        = "source_service"
	HeaderSchemaVersion = "schema_version"
	HeaderTraceID       = "trace_id"
	HeaderOriginalTopic = "original_topic"
	HeaderError         = "error_message"
)

// EventEnvelope wraps every domain event on the wire.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	ActorName     string            `json:"actor_name,omitempty"`
	Subject       string            `json:"subject,omitempty"`
	Key           string            `json:"key,omitempty"`
	Payload       json.RawMessage   `json:"payload,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope builds an envelope with a fresh event id.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
		}
		data = b
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.  An absent payload leaves
// target untouched.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// ToMessage serialises the envelope for topic, keyed by e.Key.
func (e *EventEnvelope) ToMessage(topic string) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		HeaderEventType:     e.EventType,
		HeaderSource:        e.Source,
		HeaderSchemaVersion: e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers[HeaderTraceID] = e.TraceID
	}
	var key []byte
	if e.Key != "" {
		key = []byte(e.Key)
	}
	return &Message{
		Topic:     topic,
		Key:       key,
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}, nil
}

// DecodeEnvelope parses a consumed message.
func DecodeEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	if env.EventID == "" || env.EventType == "" {
		return nil, errors.New(errors.ErrCodeValidation, "envelope missing event_id or event_type")
	}
	return &env, nil
}

// TopicSpec describes a topic to provision.
type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	Retention         time.Duration
}

// DefaultTopics returns the domain and dead-letter topics sized from cfg.
func DefaultTopics(cfg config.KafkaConfig) []TopicSpec {
	partitions := cfg.NumPartitions
	if partitions <= 0 {
		partitions = 3
	}
	replication := cfg.ReplicationFactor
	if replication <= 0 {
		replication = 1
	}
	week := 7 * 24 * time.Hour
	specs := make([]TopicSpec, 0, 7)
	for _, t := range DomainTopics() {
		specs = append(specs, TopicSpec{Name: t, NumPartitions: partitions, ReplicationFactor: replication, Retention: week})
	}
	return append(specs, TopicSpec{Name: TopicDeadLetter, NumPartitions: 1, ReplicationFactor: replication, Retention: 4 * week})
}

// ConnInterface abstracts the subset of kafka.Conn used for topic admin.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager provisions topics on startup when auto-creation is enabled.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials the first broker.
func NewTopicManager(ctx context.Context, brokers []string, log logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "failed to dial kafka")
	}
	return NewTopicManagerWithConn(conn, log), nil
}

// NewTopicManagerWithConn wraps an existing connection.
func NewTopicManagerWithConn(conn ConnInterface, log logging.Logger) *TopicManager {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: log}
}

// EnsureTopics creates every topic in specs.  Existing topics are left as
// they are.
func (m *TopicManager) EnsureTopics(specs []TopicSpec) error {
	for _, s := range specs {
		if s.Name == "" || s.NumPartitions <= 0 || s.ReplicationFactor <= 0 {
			return errors.New(errors.ErrCodeValidation, "invalid topic spec").WithDetail(s.Name)
		}
		tc := kafka.TopicConfig{
			Topic:             s.Name,
			NumPartitions:     s.NumPartitions,
			ReplicationFactor: s.ReplicationFactor,
		}
		if s.Retention > 0 {
			tc.ConfigEntries = append(tc.ConfigEntries, kafka.ConfigEntry{
				ConfigName:  "retention.ms",
				ConfigValue: strconv.FormatInt(s.Retention.Milliseconds(), 10),
			})
		}
		if err := m.conn.CreateTopics(tc); err != nil {
			if stderrors.Is(err, kafka.TopicAlreadyExists) || m.exists(s.Name) {
				continue
			}
			return errors.Wrap(err, errors.ErrCodeMessagingError, "create topic failed").WithDetail(s.Name)
		}
		m.logger.Info("Topic created", logging.String("topic", s.Name))
	}
	return nil
}

func (m *TopicManager) exists(name string) bool {
	parts, err := m.conn.ReadPartitions(name)
	return err == nil && len(parts) > 0
}

// Close releases the broker connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}
