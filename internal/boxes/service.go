// Package boxes implements the focus-session lifecycle: creation,
// the scheduled -> active -> completed state machine, patch updates,
// and owner-scoped listing.
package boxes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/logging"
	"github.com/noamseg/boxbee/internal/store"
	"github.com/noamseg/boxbee/internal/types"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateBox(ctx context.Context, b *types.Box) error
	GetBox(ctx context.Context, id string) (*types.Box, error)
	UpdateBox(ctx context.Context, b *types.Box) error
	DeleteBox(ctx context.Context, id string) error
	ListBoxes(ctx context.Context, userID string, filter store.BoxFilter) ([]types.Box, error)
}

// Service owns box lifecycle rules. The clock is injectable for tests.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a lifecycle service backed by st.
func NewService(st Store) *Service {
	return &Service{store: st, now: time.Now}
}

// WithClock overrides the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type operation string

const (
	opStart    operation = "start"
	opComplete operation = "complete"
)

// transitions is the state machine: operation x current status -> next
// status. A missing entry is an invalid transition. Complete is legal
// from every non-completed state, including scheduled, so a user can
// log a session they never formally started.
var transitions = map[operation]map[types.BoxStatus]types.BoxStatus{
	opStart: {
		types.StatusScheduled: types.StatusActive,
	},
	opComplete: {
		types.StatusScheduled: types.StatusCompleted,
		types.StatusActive:    types.StatusCompleted,
		types.StatusPaused:    types.StatusCompleted,
		types.StatusCancelled: types.StatusCompleted,
	},
}

func nextStatus(op operation, current types.BoxStatus) (types.BoxStatus, bool) {
	next, ok := transitions[op][current]
	return next, ok
}

// CreateInput carries the user-supplied fields for a new box.
type CreateInput struct {
	TaskName     string
	Duration     int
	Category     *string
	ScheduledFor *time.Time
	AISuggested  bool
	AIEstimated  bool
}

// Create validates input and persists a new box in the scheduled state.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*types.Box, error) {
	var fields []apperr.FieldError
	name := strings.TrimSpace(in.TaskName)
	if name == "" {
		fields = append(fields, apperr.FieldError{Field: "taskName", Message: "task name is required"})
	} else if len(name) > types.MaxTaskNameLen {
		fields = append(fields, apperr.FieldError{Field: "taskName", Message: fmt.Sprintf("task name must be at most %d characters", types.MaxTaskNameLen)})
	}
	if in.Duration < types.MinDuration || in.Duration > types.MaxDuration {
		fields = append(fields, apperr.FieldError{Field: "duration", Message: fmt.Sprintf("duration must be between %d and %d minutes", types.MinDuration, types.MaxDuration)})
	}
	if in.Category != nil && len(*in.Category) > types.MaxCategoryLen {
		fields = append(fields, apperr.FieldError{Field: "category", Message: fmt.Sprintf("category must be at most %d characters", types.MaxCategoryLen)})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("Validation failed", fields...)
	}

	now := s.now().UTC()
	box := &types.Box{
		ID:           uuid.NewString(),
		UserID:       ownerID,
		TaskName:     name,
		Category:     in.Category,
		Duration:     in.Duration,
		ScheduledFor: in.ScheduledFor,
		Status:       types.StatusScheduled,
		AISuggested:  in.AISuggested,
		AIEstimated:  in.AIEstimated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateBox(ctx, box); err != nil {
		return nil, apperr.Internal("failed to create box", err)
	}
	logging.Boxes("Created box %s (%q) for user %s", box.ID, box.TaskName, ownerID)
	return box, nil
}

// Get returns a box after the ownership check.
func (s *Service) Get(ctx context.Context, boxID, callerID string) (*types.Box, error) {
	return s.getOwned(ctx, boxID, callerID)
}

// Start moves a scheduled box to active and stamps startedAt.
func (s *Service) Start(ctx context.Context, boxID, callerID string) (*types.Box, error) {
	box, err := s.getOwned(ctx, boxID, callerID)
	if err != nil {
		return nil, err
	}

	next, ok := nextStatus(opStart, box.Status)
	if !ok {
		return nil, apperr.InvalidTransition("Box has already been started or completed")
	}

	now := s.now().UTC()
	box.Status = next
	box.StartedAt = &now
	box.UpdatedAt = now
	if err := s.store.UpdateBox(ctx, box); err != nil {
		return nil, apperr.Internal("failed to start box", err)
	}
	logging.Boxes("Started box %s for user %s", box.ID, callerID)
	return box, nil
}

// CompleteInput carries the reflection data recorded at completion.
type CompleteInput struct {
	FocusQuality     types.FocusQuality
	CompletionStatus types.CompletionStatus
	Notes            *string
	ActualDuration   *int
}

// Complete finishes a box from any non-completed state and stamps
// completedAt. Reflection fields are stored verbatim.
func (s *Service) Complete(ctx context.Context, boxID, callerID string, in CompleteInput) (*types.Box, error) {
	var fields []apperr.FieldError
	if !in.FocusQuality.Valid() {
		fields = append(fields, apperr.FieldError{Field: "focusQuality", Message: "focus quality must be great, okay, or rough"})
	}
	if !in.CompletionStatus.Valid() {
		fields = append(fields, apperr.FieldError{Field: "completionStatus", Message: "completion status must be completed, partial, or skipped"})
	}
	if in.Notes != nil && len(*in.Notes) > types.MaxNotesLen {
		fields = append(fields, apperr.FieldError{Field: "notes", Message: fmt.Sprintf("notes must be at most %d characters", types.MaxNotesLen)})
	}
	if in.ActualDuration != nil && *in.ActualDuration < 0 {
		fields = append(fields, apperr.FieldError{Field: "actualDuration", Message: "actual duration cannot be negative"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("Validation failed", fields...)
	}

	box, err := s.getOwned(ctx, boxID, callerID)
	if err != nil {
		return nil, err
	}

	next, ok := nextStatus(opComplete, box.Status)
	if !ok {
		return nil, apperr.InvalidTransition("Box has already been completed")
	}

	now := s.now().UTC()
	quality := in.FocusQuality
	completion := in.CompletionStatus
	box.Status = next
	box.CompletedAt = &now
	box.FocusQuality = &quality
	box.CompletionStatus = &completion
	box.Notes = in.Notes
	box.ActualDuration = in.ActualDuration
	box.UpdatedAt = now
	if err := s.store.UpdateBox(ctx, box); err != nil {
		return nil, apperr.Internal("failed to complete box", err)
	}
	logging.Boxes("Completed box %s for user %s (%s/%s)", box.ID, callerID, quality, completion)
	return box, nil
}

// Update applies a partial patch. Only fields present in the patch
// change; an explicit null clears a nullable field. There is no
// state-machine guard here beyond ownership.
func (s *Service) Update(ctx context.Context, boxID, callerID string, patch types.BoxPatch) (*types.Box, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	box, err := s.getOwned(ctx, boxID, callerID)
	if err != nil {
		return nil, err
	}

	applyPatch(box, patch)
	box.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateBox(ctx, box); err != nil {
		return nil, apperr.Internal("failed to update box", err)
	}
	return box, nil
}

// Delete hard-deletes a box, permitted from any state.
func (s *Service) Delete(ctx context.Context, boxID, callerID string) error {
	if _, err := s.getOwned(ctx, boxID, callerID); err != nil {
		return err
	}
	if err := s.store.DeleteBox(ctx, boxID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Box not found")
		}
		return apperr.Internal("failed to delete box", err)
	}
	logging.Boxes("Deleted box %s for user %s", boxID, callerID)
	return nil
}

// ListInput narrows a listing by status and scheduled-time range.
type ListInput struct {
	Status    *types.BoxStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// List returns the owner's boxes ordered by scheduled time ascending,
// then creation time descending.
func (s *Service) List(ctx context.Context, ownerID string, in ListInput) ([]types.Box, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "status", Message: "unknown status value"})
	}
	boxes, err := s.store.ListBoxes(ctx, ownerID, store.BoxFilter{
		Status:        in.Status,
		ScheduledFrom: in.StartDate,
		ScheduledTo:   in.EndDate,
	})
	if err != nil {
		return nil, apperr.Internal("failed to list boxes", err)
	}
	if boxes == nil {
		boxes = []types.Box{}
	}
	return boxes, nil
}

func (s *Service) getOwned(ctx context.Context, boxID, callerID string) (*types.Box, error) {
	box, err := s.store.GetBox(ctx, boxID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Box not found")
		}
		return nil, apperr.Internal("failed to load box", err)
	}
	if box.UserID != callerID {
		return nil, apperr.Forbidden("Not authorized to access this box")
	}
	return box, nil
}

func validatePatch(p types.BoxPatch) error {
	if p.Empty() {
		return apperr.Validation("Validation failed",
			apperr.FieldError{Field: "body", Message: "no fields to update"})
	}

	var fields []apperr.FieldError
	if p.TaskName.Set {
		if p.TaskName.Null || strings.TrimSpace(p.TaskName.Value) == "" {
			fields = append(fields, apperr.FieldError{Field: "taskName", Message: "task name cannot be empty"})
		} else if len(p.TaskName.Value) > types.MaxTaskNameLen {
			fields = append(fields, apperr.FieldError{Field: "taskName", Message: fmt.Sprintf("task name must be at most %d characters", types.MaxTaskNameLen)})
		}
	}
	if p.Duration.Set {
		if p.Duration.Null || p.Duration.Value < types.MinDuration || p.Duration.Value > types.MaxDuration {
			fields = append(fields, apperr.FieldError{Field: "duration", Message: fmt.Sprintf("duration must be between %d and %d minutes", types.MinDuration, types.MaxDuration)})
		}
	}
	if p.Category.Set && !p.Category.Null && len(p.Category.Value) > types.MaxCategoryLen {
		fields = append(fields, apperr.FieldError{Field: "category", Message: fmt.Sprintf("category must be at most %d characters", types.MaxCategoryLen)})
	}
	if p.Status.Set {
		if p.Status.Null || !p.Status.Value.Valid() {
			fields = append(fields, apperr.FieldError{Field: "status", Message: "unknown status value"})
		}
	}
	if p.FocusQuality.Set && !p.FocusQuality.Null && !p.FocusQuality.Value.Valid() {
		fields = append(fields, apperr.FieldError{Field: "focusQuality", Message: "focus quality must be great, okay, or rough"})
	}
	if p.CompletionStatus.Set && !p.CompletionStatus.Null && !p.CompletionStatus.Value.Valid() {
		fields = append(fields, apperr.FieldError{Field: "completionStatus", Message: "completion status must be completed, partial, or skipped"})
	}
	if p.Notes.Set && !p.Notes.Null && len(p.Notes.Value) > types.MaxNotesLen {
		fields = append(fields, apperr.FieldError{Field: "notes", Message: fmt.Sprintf("notes must be at most %d characters", types.MaxNotesLen)})
	}
	if p.ActualDuration.Set && !p.ActualDuration.Null && p.ActualDuration.Value < 0 {
		fields = append(fields, apperr.FieldError{Field: "actualDuration", Message: "actual duration cannot be negative"})
	}
	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields...)
	}
	return nil
}

func applyPatch(b *types.Box, p types.BoxPatch) {
	if p.TaskName.Set {
		b.TaskName = strings.TrimSpace(p.TaskName.Value)
	}
	if p.Category.Set {
		b.Category = p.Category.Ptr()
	}
	if p.Duration.Set {
		b.Duration = p.Duration.Value
	}
	if p.ScheduledFor.Set {
		b.ScheduledFor = p.ScheduledFor.Ptr()
	}
	if p.Status.Set {
		b.Status = p.Status.Value
	}
	if p.StartedAt.Set {
		b.StartedAt = p.StartedAt.Ptr()
	}
	if p.CompletedAt.Set {
		b.CompletedAt = p.CompletedAt.Ptr()
	}
	if p.ActualDuration.Set {
		b.ActualDuration = p.ActualDuration.Ptr()
	}
	if p.FocusQuality.Set {
		b.FocusQuality = p.FocusQuality.Ptr()
	}
	if p.CompletionStatus.Set {
		b.CompletionStatus = p.CompletionStatus.Ptr()
	}
	if p.Notes.Set {
		b.Notes = p.Notes.Ptr()
	}
}
