// Package training models training modules and per-member progress.
package training

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// Difficulty levels accepted for modules.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Module is a unit of training content.
type Module struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Content         string    `json:"content"`
	DifficultyLevel string    `json:"difficulty_level"`
	DurationMinutes int       `json:"duration_minutes"`
	FarmType        string    `json:"farm_type,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Steps splits the module content into paragraphs separated by blank lines.
func (m *Module) Steps() []string {
	parts := blankLines.Split(strings.ReplaceAll(m.Content, "\r\n", "\n"), -1)
	steps := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

// ModuleInput carries the writable module fields.
type ModuleInput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Content         string `json:"content"`
	DifficultyLevel string `json:"difficulty_level"`
	DurationMinutes int    `json:"duration_minutes"`
	FarmType        string `json:"farm_type"`
}

// Validate reports every invalid field at once.
func (in *ModuleInput) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = "required"
	}
	switch strings.ToLower(in.DifficultyLevel) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		fields["difficulty_level"] = "must be beginner, intermediate or advanced"
	}
	if in.DurationMinutes <= 0 {
		fields["duration_minutes"] = "must be positive"
	}
	if len(fields) > 0 {
		return errors.Validation("invalid training module", fields)
	}
	return nil
}

// Apply writes validated input onto m.
func (in *ModuleInput) Apply(m *Module) {
	m.Title = strings.TrimSpace(in.Title)
	m.Description = strings.TrimSpace(in.Description)
	m.Content = in.Content
	m.DifficultyLevel = strings.ToLower(in.DifficultyLevel)
	m.DurationMinutes = in.DurationMinutes
	m.FarmType = strings.TrimSpace(in.FarmType)
}

// Status is the state of a member's progress on a module.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Progress records one member's work on one module.  (UserID, ModuleID) is
// unique.
type Progress struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	ModuleID           uuid.UUID  `json:"module_id"`
	Status             Status     `json:"status"`
	ProgressPercentage int        `json:"progress_percentage"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ProgressView is Progress joined with the module's display fields.
type ProgressView struct {
	Progress
	ModuleTitle     string `json:"module_title"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Start resets p to the beginning of the module.
func (p *Progress) Start(now time.Time) {
	p.Status = StatusInProgress
	p.ProgressPercentage = 0
	p.StartedAt = &now
	p.CompletedAt = nil
}

// Complete marks the module done.
func (p *Progress) Complete(now time.Time) {
	p.Status = StatusCompleted
	p.ProgressPercentage = 100
	p.CompletedAt = &now
	if p.StartedAt == nil {
		p.StartedAt = &now
	}
}

// Advance records partial progress.  pct must lie in 0..100; reaching 100
// completes the module.  A completed module only accepts 100; lowering it
// requires Start.
func (p *Progress) Advance(pct int, now time.Time) error {
	if pct < 0 || pct > 100 {
		return errors.Validation("invalid progress", map[string]string{
			"progress_percentage": "must be between 0 and 100",
		})
	}
	if p.Status == StatusCompleted {
		if pct == 100 {
			return nil
		}
		return errors.New(errors.ErrCodeModuleCompleted, "module already completed; start it again to reset progress")
	}
	if pct == 100 {
		p.Complete(now)
		return nil
	}
	p.Status = StatusInProgress
	p.ProgressPercentage = pct
	if p.StartedAt == nil {
		p.StartedAt = &now
	}
	return nil
}

// CompletionPercentage is round(100 × completed / total), 0 when total is 0.
func CompletionPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return (200*completed + total) / (2 * total)
}

// Repository persists modules and progress.
type Repository interface {
	ListModules(ctx context.Context, activeOnly bool) ([]*Module, error)
	GetModule(ctx context.Context, id uuid.UUID) (*Module, error)
	CreateModule(ctx context.Context, m *Module) error
	UpdateModule(ctx context.Context, m *Module) error
	SetModuleActive(ctx context.Context, id uuid.UUID, active bool) error
	CountActiveModules(ctx context.Context) (int64, error)

	GetProgress(ctx context.Context, userID, moduleID uuid.UUID) (*Progress, error)
	// UpsertProgress inserts or replaces the row for (UserID, ModuleID).
	UpsertProgress(ctx context.Context, p *Progress) error
	ListProgress(ctx context.Context, userID uuid.UUID) ([]*ProgressView, error)
	CountCompleted(ctx context.Context) (int64, error)
}
