// Package activity models the portal-wide activity feed shown to admins.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type groups activity entries by the resource they concern.
type Type string

const (
	TypeFarm       Type = "farm"
	TypeTraining   Type = "training"
	TypeAssessment Type = "assessment"
	TypeProfile    Type = "profile"
	TypeAlert      Type = "alert"
	TypeCompliance Type = "compliance"
)

// Entry is one line of the activity feed.
type Entry struct {
	ID         uuid.UUID  `json:"id"`
	EventID    string     `json:"event_id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	ActorName  string     `json:"user_name"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	Type       Type       `json:"type"`
	OccurredAt time.Time  `json:"timestamp"`
}

// Repository persists feed entries.
type Repository interface {
	// Record stores e.  Entries are unique by EventID; replays are ignored
	// and reported with inserted=false.
	Record(ctx context.Context, e *Entry) (inserted bool, err error)
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}
