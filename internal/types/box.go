// Package types holds the BoxBee domain model shared by services, the
// store, and the HTTP layer.
package types

import "time"

// BoxStatus is the lifecycle state of a focus session.
// Transitions are monotonic: a box never returns to scheduled after
// leaving it. Terminal states are completed and cancelled.
type BoxStatus string

const (
	StatusScheduled BoxStatus = "scheduled"
	StatusActive    BoxStatus = "active"
	StatusPaused    BoxStatus = "paused"
	StatusCompleted BoxStatus = "completed"
	StatusCancelled BoxStatus = "cancelled"
)

// Valid reports whether s is a known status value.
func (s BoxStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusActive, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// FocusQuality is the user's self-rated attentiveness during a session.
type FocusQuality string

const (
	QualityGreat FocusQuality = "great"
	QualityOkay  FocusQuality = "okay"
	QualityRough FocusQuality = "rough"
)

// Valid reports whether q is a known quality value.
func (q FocusQuality) Valid() bool {
	switch q {
	case QualityGreat, QualityOkay, QualityRough:
		return true
	}
	return false
}

// CompletionStatus is the outcome of a session, distinct from the
// lifecycle status.
type CompletionStatus string

const (
	CompletionCompleted CompletionStatus = "completed"
	CompletionPartial   CompletionStatus = "partial"
	CompletionSkipped   CompletionStatus = "skipped"
)

// Valid reports whether c is a known completion value.
func (c CompletionStatus) Valid() bool {
	switch c {
	case CompletionCompleted, CompletionPartial, CompletionSkipped:
		return true
	}
	return false
}

// Field limits enforced at box creation and update.
const (
	MaxTaskNameLen = 200
	MaxCategoryLen = 50
	MaxNotesLen    = 500
	MinDuration    = 1   // minutes
	MaxDuration    = 480 // minutes
)

// Box is a single timed focus session owned by exactly one user.
type Box struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	TaskName         string            `json:"taskName"`
	Category         *string           `json:"category,omitempty"`
	Duration         int               `json:"duration"` // target, minutes
	ScheduledFor     *time.Time        `json:"scheduledFor,omitempty"`
	Status           BoxStatus         `json:"status"`
	StartedAt        *time.Time        `json:"startedAt,omitempty"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
	ActualDuration   *int              `json:"actualDuration,omitempty"` // minutes
	FocusQuality     *FocusQuality     `json:"focusQuality,omitempty"`
	CompletionStatus *CompletionStatus `json:"completionStatus,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	AISuggested      bool              `json:"aiSuggested"`
	AIEstimated      bool              `json:"aiEstimated"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// FocusMinutes returns the minutes credited for a completed box: the
// recorded actual duration when present, the target duration otherwise.
func (b *Box) FocusMinutes() int {
	if b.ActualDuration != nil {
		return *b.ActualDuration
	}
	return b.Duration
}

// EffectiveCompletedAt is the timestamp used for day/time bucketing:
// completedAt when set, createdAt otherwise.
func (b *Box) EffectiveCompletedAt() time.Time {
	if b.CompletedAt != nil {
		return *b.CompletedAt
	}
	return b.CreatedAt
}

// BoxPatch is a partial update. Each field tracks JSON presence so an
// omitted key leaves the stored value untouched while an explicit null
// clears it.
type BoxPatch struct {
	TaskName         Opt[string]           `json:"taskName"`
	Category         Opt[string]           `json:"category"`
	Duration         Opt[int]              `json:"duration"`
	ScheduledFor     Opt[time.Time]        `json:"scheduledFor"`
	Status           Opt[BoxStatus]        `json:"status"`
	StartedAt        Opt[time.Time]        `json:"startedAt"`
	CompletedAt      Opt[time.Time]        `json:"completedAt"`
	ActualDuration   Opt[int]              `json:"actualDuration"`
	FocusQuality     Opt[FocusQuality]     `json:"focusQuality"`
	CompletionStatus Opt[CompletionStatus] `json:"completionStatus"`
	Notes            Opt[string]           `json:"notes"`
}

// Empty reports whether no field is present in the patch.
func (p *BoxPatch) Empty() bool {
	return !p.TaskName.Set && !p.Category.Set && !p.Duration.Set &&
		!p.ScheduledFor.Set && !p.Status.Set && !p.StartedAt.Set &&
		!p.CompletedAt.Set && !p.ActualDuration.Set && !p.FocusQuality.Set &&
		!p.CompletionStatus.Set && !p.Notes.Set
}
