package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/noamseg/boxbee/internal/types"
)

const settingsColumns = `id, user_id,
	notify_five_min_warning, notify_completion, notify_coaching,
	notify_morning_planning, morning_planning_time,
	notify_evening_reflection, notify_weekly_report,
	weekly_report_day, weekly_report_time,
	quiet_hours_enabled, quiet_hours_start, quiet_hours_end,
	coach_personality, coach_frequency, ai_learning_enabled,
	ai_auto_adjust_time, theme, created_at, updated_at`

// GetSettings fetches a user's settings row. Returns ErrNotFound when
// the user has none yet; the settings service creates defaults lazily.
func (s *Store) GetSettings(ctx context.Context, userID string) (*types.UserSettings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM user_settings WHERE user_id = ?`, userID)

	var (
		st                  types.UserSettings
		morningPlanningTime sql.NullString
		quietStart          sql.NullString
		quietEnd            sql.NullString
		personality         string
		frequency           string
		theme               string
	)
	err := row.Scan(&st.ID, &st.UserID,
		&st.NotifyFiveMinWarning, &st.NotifyCompletion, &st.NotifyCoaching,
		&st.NotifyMorningPlanning, &morningPlanningTime,
		&st.NotifyEveningReflection, &st.NotifyWeeklyReport,
		&st.WeeklyReportDay, &st.WeeklyReportTime,
		&st.QuietHoursEnabled, &quietStart, &quietEnd,
		&personality, &frequency, &st.AILearningEnabled,
		&st.AIAutoAdjustTime, &theme, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get settings for %s: %w", userID, err)
	}

	if morningPlanningTime.Valid {
		st.MorningPlanningTime = &morningPlanningTime.String
	}
	if quietStart.Valid {
		st.QuietHoursStart = &quietStart.String
	}
	if quietEnd.Valid {
		st.QuietHoursEnd = &quietEnd.String
	}
	st.CoachPersonality = types.CoachPersonality(personality)
	st.CoachFrequency = types.CoachFrequency(frequency)
	st.Theme = types.Theme(theme)
	return &st, nil
}

// CreateSettings inserts a settings row outside any transaction, used
// for the lazy-create path.
func (s *Store) CreateSettings(ctx context.Context, st *types.UserSettings) error {
	if err := insertSettings(ctx, s.db, st); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert settings: %w", err)
	}
	return nil
}

// SaveSettings overwrites the stored settings row with st.
func (s *Store) SaveSettings(ctx context.Context, st *types.UserSettings) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_settings SET
			notify_five_min_warning = ?, notify_completion = ?, notify_coaching = ?,
			notify_morning_planning = ?, morning_planning_time = ?,
			notify_evening_reflection = ?, notify_weekly_report = ?,
			weekly_report_day = ?, weekly_report_time = ?,
			quiet_hours_enabled = ?, quiet_hours_start = ?, quiet_hours_end = ?,
			coach_personality = ?, coach_frequency = ?, ai_learning_enabled = ?,
			ai_auto_adjust_time = ?, theme = ?, updated_at = ?
		WHERE user_id = ?`,
		st.NotifyFiveMinWarning, st.NotifyCompletion, st.NotifyCoaching,
		st.NotifyMorningPlanning, nullString(st.MorningPlanningTime),
		st.NotifyEveningReflection, st.NotifyWeeklyReport,
		st.WeeklyReportDay, st.WeeklyReportTime,
		st.QuietHoursEnabled, nullString(st.QuietHoursStart), nullString(st.QuietHoursEnd),
		string(st.CoachPersonality), string(st.CoachFrequency), st.AILearningEnabled,
		st.AIAutoAdjustTime, string(st.Theme), st.UpdatedAt.UTC(),
		st.UserID,
	)
	if err != nil {
		return fmt.Errorf("save settings for %s: %w", st.UserID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save settings for %s: %w", st.UserID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// execer abstracts *sql.DB and *sql.Tx for the shared insert.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertSettings(ctx context.Context, ex execer, st *types.UserSettings) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO user_settings (`+settingsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.UserID,
		st.NotifyFiveMinWarning, st.NotifyCompletion, st.NotifyCoaching,
		st.NotifyMorningPlanning, nullString(st.MorningPlanningTime),
		st.NotifyEveningReflection, st.NotifyWeeklyReport,
		st.WeeklyReportDay, st.WeeklyReportTime,
		st.QuietHoursEnabled, nullString(st.QuietHoursStart), nullString(st.QuietHoursEnd),
		string(st.CoachPersonality), string(st.CoachFrequency), st.AILearningEnabled,
		st.AIAutoAdjustTime, string(st.Theme),
		st.CreatedAt.UTC(), st.UpdatedAt.UTC(),
	)
	return err
}
