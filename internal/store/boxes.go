package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/noamseg/boxbee/internal/logging"
	"github.com/noamseg/boxbee/internal/types"
)

const boxColumns = `id, user_id, task_name, category, duration, scheduled_for,
	status, started_at, completed_at, actual_duration, focus_quality,
	completion_status, notes, ai_suggested, ai_estimated, created_at, updated_at`

// BoxFilter narrows ListBoxes results.
type BoxFilter struct {
	Status        *types.BoxStatus
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}

// CreateBox persists a new box verbatim.
func (s *Store) CreateBox(ctx context.Context, b *types.Box) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boxes (`+boxColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.TaskName, nullString(b.Category), b.Duration,
		nullTime(b.ScheduledFor), string(b.Status), nullTime(b.StartedAt),
		nullTime(b.CompletedAt), nullInt(b.ActualDuration),
		nullQuality(b.FocusQuality), nullCompletion(b.CompletionStatus),
		nullString(b.Notes), b.AISuggested, b.AIEstimated,
		b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert box: %w", err)
	}
	logging.StoreDebug("created box %s for user %s", b.ID, b.UserID)
	return nil
}

// GetBox fetches a box by id. Returns ErrNotFound when absent.
func (s *Store) GetBox(ctx context.Context, id string) (*types.Box, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+boxColumns+` FROM boxes WHERE id = ?`, id)
	b, err := scanBox(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get box %s: %w", id, err)
	}
	return b, nil
}

// UpdateBox overwrites the stored row with b. Last writer wins; callers
// read, mutate, and save within one request.
func (s *Store) UpdateBox(ctx context.Context, b *types.Box) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE boxes SET
			task_name = ?, category = ?, duration = ?, scheduled_for = ?,
			status = ?, started_at = ?, completed_at = ?, actual_duration = ?,
			focus_quality = ?, completion_status = ?, notes = ?,
			ai_suggested = ?, ai_estimated = ?, updated_at = ?
		WHERE id = ?`,
		b.TaskName, nullString(b.Category), b.Duration, nullTime(b.ScheduledFor),
		string(b.Status), nullTime(b.StartedAt), nullTime(b.CompletedAt),
		nullInt(b.ActualDuration), nullQuality(b.FocusQuality),
		nullCompletion(b.CompletionStatus), nullString(b.Notes),
		b.AISuggested, b.AIEstimated, b.UpdatedAt.UTC(), b.ID,
	)
	if err != nil {
		return fmt.Errorf("update box %s: %w", b.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update box %s: %w", b.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBox hard-deletes a box. Returns ErrNotFound when absent.
func (s *Store) DeleteBox(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boxes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete box %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete box %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	logging.StoreDebug("deleted box %s", id)
	return nil
}

// ListBoxes returns a user's boxes ordered by scheduled_for ascending
// then created_at descending, so newly created unscheduled boxes surface
// first among their peers.
func (s *Store) ListBoxes(ctx context.Context, userID string, filter BoxFilter) ([]types.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.ScheduledFrom != nil {
		query += ` AND scheduled_for >= ?`
		args = append(args, filter.ScheduledFrom.UTC())
	}
	if filter.ScheduledTo != nil {
		query += ` AND scheduled_for <= ?`
		args = append(args, filter.ScheduledTo.UTC())
	}
	query += ` ORDER BY scheduled_for ASC, created_at DESC`

	return s.queryBoxes(ctx, query, args...)
}

// ListBoxesCreatedSince returns boxes created at or after t, ascending
// by creation time. Used by the weekly stats window.
func (s *Store) ListBoxesCreatedSince(ctx context.Context, userID string, t time.Time) ([]types.Box, error) {
	return s.queryBoxes(ctx, `
		SELECT `+boxColumns+` FROM boxes
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at ASC`,
		userID, t.UTC())
}

// ListRecentBoxes returns the most recently created boxes, newest first.
func (s *Store) ListRecentBoxes(ctx context.Context, userID string, limit int) ([]types.Box, error) {
	return s.queryBoxes(ctx, `
		SELECT `+boxColumns+` FROM boxes
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		userID, limit)
}

// CountCompletedBetween counts boxes completed within [from, to).
func (s *Store) CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM boxes
		WHERE user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?`,
		userID, string(types.StatusCompleted), from.UTC(), to.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed boxes: %w", err)
	}
	return n, nil
}

func (s *Store) queryBoxes(ctx context.Context, query string, args ...interface{}) ([]types.Box, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query boxes: %w", err)
	}
	defer rows.Close()

	var boxes []types.Box
	for rows.Next() {
		b, err := scanBox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		boxes = append(boxes, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boxes: %w", err)
	}
	return boxes, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBox(row rowScanner) (*types.Box, error) {
	var (
		b                types.Box
		category         sql.NullString
		scheduledFor     sql.NullTime
		startedAt        sql.NullTime
		completedAt      sql.NullTime
		actualDuration   sql.NullInt64
		focusQuality     sql.NullString
		completionStatus sql.NullString
		notes            sql.NullString
		status           string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.TaskName, &category, &b.Duration,
		&scheduledFor, &status, &startedAt, &completedAt, &actualDuration,
		&focusQuality, &completionStatus, &notes, &b.AISuggested,
		&b.AIEstimated, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	b.Status = types.BoxStatus(status)
	if category.Valid {
		b.Category = &category.String
	}
	if scheduledFor.Valid {
		t := scheduledFor.Time
		b.ScheduledFor = &t
	}
	if startedAt.Valid {
		t := startedAt.Time
		b.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		b.CompletedAt = &t
	}
	if actualDuration.Valid {
		d := int(actualDuration.Int64)
		b.ActualDuration = &d
	}
	if focusQuality.Valid {
		q := types.FocusQuality(focusQuality.String)
		b.FocusQuality = &q
	}
	if completionStatus.Valid {
		c := types.CompletionStatus(completionStatus.String)
		b.CompletionStatus = &c
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	return &b, nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullQuality(q *types.FocusQuality) interface{} {
	if q == nil {
		return nil
	}
	return string(*q)
}

func nullCompletion(c *types.CompletionStatus) interface{} {
	if c == nil {
		return nil
	}
	return string(*c)
}
