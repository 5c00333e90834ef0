// Package settings manages the per-user preference bag. The settings
// row is created lazily with defaults on first access, so a user whose
// signup-time settings insert was lost still gets a row back.
package settings

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/store"
	"github.com/noamseg/boxbee/internal/types"
)

// timeOfDayRe matches H:MM / HH:MM wall-clock strings.
var timeOfDayRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

var weekdayNames = map[string]bool{
	"Sunday": true, "Monday": true, "Tuesday": true, "Wednesday": true,
	"Thursday": true, "Friday": true, "Saturday": true,
}

// Store is the persistence surface the service needs.
type Store interface {
	GetSettings(ctx context.Context, userID string) (*types.UserSettings, error)
	CreateSettings(ctx context.Context, st *types.UserSettings) error
	SaveSettings(ctx context.Context, st *types.UserSettings) error
}

// Service reads and patches user settings.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a settings service backed by st.
func NewService(st Store) *Service {
	return &Service{store: st, now: time.Now}
}

// WithClock overrides the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns the user's settings, creating the default row if absent.
func (s *Service) Get(ctx context.Context, userID string) (*types.UserSettings, error) {
	existing, err := s.store.GetSettings(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("failed to load settings", err)
	}

	created := types.DefaultSettings(userID)
	created.ID = uuid.NewString()
	now := s.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	if err := s.store.CreateSettings(ctx, &created); err != nil {
		// A concurrent request may have created the row first.
		if errors.Is(err, store.ErrDuplicate) {
			return s.store.GetSettings(ctx, userID)
		}
		return nil, apperr.Internal("failed to create settings", err)
	}
	return &created, nil
}

// Update applies a partial patch and returns the updated settings,
// creating the default row first when absent.
func (s *Service) Update(ctx context.Context, userID string, patch types.SettingsPatch) (*types.UserSettings, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch.Apply(current)
	current.UpdatedAt = s.now().UTC()
	if err := s.store.SaveSettings(ctx, current); err != nil {
		return nil, apperr.Internal("failed to save settings", err)
	}
	return current, nil
}

func validatePatch(p types.SettingsPatch) error {
	var fields []apperr.FieldError

	checkTime := func(name string, o types.Opt[string]) {
		if o.Set && !o.Null && !timeOfDayRe.MatchString(o.Value) {
			fields = append(fields, apperr.FieldError{Field: name, Message: "must be a HH:MM time"})
		}
	}
	checkTime("morningPlanningTime", p.MorningPlanningTime)
	checkTime("weeklyReportTime", p.WeeklyReportTime)
	checkTime("quietHoursStart", p.QuietHoursStart)
	checkTime("quietHoursEnd", p.QuietHoursEnd)

	if p.WeeklyReportDay.Set && (p.WeeklyReportDay.Null || !weekdayNames[p.WeeklyReportDay.Value]) {
		fields = append(fields, apperr.FieldError{Field: "weeklyReportDay", Message: "must be a weekday name"})
	}
	if p.WeeklyReportTime.Set && p.WeeklyReportTime.Null {
		fields = append(fields, apperr.FieldError{Field: "weeklyReportTime", Message: "cannot be null"})
	}
	if p.CoachPersonality.Set && (p.CoachPersonality.Null || !p.CoachPersonality.Value.Valid()) {
		fields = append(fields, apperr.FieldError{Field: "coachPersonality", Message: "must be friendly, professional, or minimal"})
	}
	if p.CoachFrequency.Set && (p.CoachFrequency.Null || !p.CoachFrequency.Value.Valid()) {
		fields = append(fields, apperr.FieldError{Field: "coachFrequency", Message: "must be lots, often, some, or rare"})
	}
	if p.Theme.Set && (p.Theme.Null || !p.Theme.Value.Valid()) {
		fields = append(fields, apperr.FieldError{Field: "theme", Message: "must be light, dark, or auto"})
	}

	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields...)
	}
	return nil
}
