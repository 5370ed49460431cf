// Package activity turns consumed domain events into activity feed entries.
package activity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	domain "github.com/turtacn/BioSecure-Portal/internal/domain/activity"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
)

var actions = map[string]string{
	events.FarmCreated:           "Created farm",
	events.FarmUpdated:           "Updated farm",
	events.FarmDeleted:           "Deleted farm",
	events.AssessmentCompleted:   "Submitted assessment",
	events.TrainingStarted:       "Started training",
	events.TrainingComplete:      "Completed training",
	events.AlertBroadcast:        "Broadcast alert",
	events.AlertUpdated:          "Updated alert",
	events.AlertDeleted:          "Deleted alert",
	events.ProfileCreated:        "Joined the portal",
	events.ProfileUpdated:        "Updated profile",
	events.ProfileRoleChanged:    "Changed role of",
	events.ComplianceCreated:     "Added compliance record",
	events.ComplianceUpdated:     "Updated compliance record",
	events.ComplianceDeleted:     "Removed compliance record",
	events.ComplianceCertificate: "Attached certificate to",
	events.ComplianceExpired:     "Compliance record expired",
}

// Describe returns the feed action and entry type of an event type.  ok is
// false for event types the feed does not show.
func Describe(eventType string) (action string, typ domain.Type, ok bool) {
	action, ok = actions[eventType]
	if !ok {
		return "", "", false
	}
	prefix, _, _ := strings.Cut(eventType, ".")
	return action, domain.Type(prefix), true
}

// Recorder is a kafka handler that appends every known domain event to the
// activity feed.  Redelivered events are ignored by event id.
type Recorder struct {
	repo    domain.Repository
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewRecorder creates a recorder.  metrics may be nil.
func NewRecorder(repo domain.Repository, metrics *prometheus.AppMetrics, logger logging.Logger) *Recorder {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &Recorder{repo: repo, metrics: metrics, logger: logger}
}

// Handle records msg.  It satisfies kafka.Handler.
func (r *Recorder) Handle(ctx context.Context, msg *kafka.Message) (err error) {
	defer func() { prometheus.RecordEvent(r.metrics.EventsConsumedTotal, msg.Topic, err) }()

	env, err := kafka.DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	action, typ, ok := Describe(env.EventType)
	if !ok {
		r.logger.Debug("Skipping event without feed entry",
			logging.String("event_type", env.EventType),
			logging.String("event_id", env.EventID))
		return nil
	}

	entry := &domain.Entry{
		ID:         uuid.New(),
		EventID:    env.EventID,
		ActorName:  env.ActorName,
		Action:     action,
		Resource:   env.Subject,
		Type:       typ,
		OccurredAt: env.Timestamp,
	}
	if entry.ActorName == "" {
		entry.ActorName = "system"
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	if id, perr := uuid.Parse(env.ActorID); perr == nil {
		entry.ActorID = &id
	}

	inserted, err := r.repo.Record(ctx, entry)
	if err != nil {
		return err
	}
	if !inserted {
		r.logger.Debug("Duplicate event ignored", logging.String("event_id", env.EventID))
	}
	return nil
}
