// Package events publishes domain events from the application services.
// Publishing is best effort: a broker outage is logged and counted but never
// fails the operation that produced the event.
package events

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
)

// Event types.  The prefix before the dot selects the topic.
const (
	FarmCreated = "farm.created"
	FarmUpdated = "farm.updated"
	FarmDeleted = "farm.deleted"

	AssessmentCompleted = "assessment.completed"

	TrainingStarted  = "training.started"
	TrainingComplete = "training.completed"

	AlertBroadcast = "alert.broadcast"
	AlertUpdated   = "alert.updated"
	AlertDeleted   = "alert.deleted"

	ProfileCreated     = "profile.created"
	ProfileUpdated     = "profile.updated"
	ProfileRoleChanged = "profile.role_changed"

	ComplianceCreated     = "compliance.created"
	ComplianceUpdated     = "compliance.updated"
	ComplianceDeleted     = "compliance.deleted"
	ComplianceCertificate = "compliance.certificate_attached"
	ComplianceExpired     = "compliance.expired"
)

// TopicFor maps an event type to its topic.  Unknown prefixes return "".
func TopicFor(eventType string) string {
	prefix, _, _ := strings.Cut(eventType, ".")
	switch prefix {
	case "farm":
		return kafka.TopicFarmEvents
	case "assessment":
		return kafka.TopicAssessmentEvents
	case "training":
		return kafka.TopicTrainingEvents
	case "alert":
		return kafka.TopicAlertEvents
	case "profile":
		return kafka.TopicProfileEvents
	case "compliance":
		return kafka.TopicComplianceEvents
	}
	return ""
}

// Event is one domain event.  Subject is the human-readable name of the
// resource (a farm name, a module title) shown in the activity feed.
type Event struct {
	Type    string
	Actor   common.Actor
	Subject string
	Key     string
	Payload interface{}
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type kafkaPublisher struct {
	pub     kafka.Publisher
	source  string
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewPublisher returns a Publisher writing envelopes through pub.
func NewPublisher(pub kafka.Publisher, source string, metrics *prometheus.AppMetrics, logger logging.Logger) Publisher {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &kafkaPublisher{pub: pub, source: source, metrics: metrics, logger: logger}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e Event) {
	topic := TopicFor(e.Type)
	if topic == "" {
		p.logger.Warn("Dropping event with unknown type", logging.String("event_type", e.Type))
		return
	}
	env, err := kafka.NewEventEnvelope(e.Type, p.source, e.Payload)
	if err != nil {
		p.logger.Error("Failed to build event envelope", logging.String("event_type", e.Type), logging.Err(err))
		return
	}
	if e.Actor.ProfileID != uuid.Nil {
		env.ActorID = e.Actor.ProfileID.String()
	}
	env.ActorName = e.Actor.Name
	env.Subject = e.Subject
	env.Key = e.Key
	env.TraceID = logging.RequestIDFromContext(ctx)

	msg, err := env.ToMessage(topic)
	if err == nil {
		err = p.pub.Publish(ctx, msg)
	}
	prometheus.RecordEvent(p.metrics.EventsPublishedTotal, topic, err)
	if err != nil {
		p.logger.Warn("Failed to publish event",
			logging.String("event_type", e.Type),
			logging.String("topic", topic),
			logging.Err(err))
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
