package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noamseg/boxbee/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "boxbee_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, email string) *types.User {
	t.Helper()
	now := time.Now().UTC()
	u := &types.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$2a$10$fakehashfortesting",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newTestBox(userID, taskName string, created time.Time) *types.Box {
	return &types.Box{
		ID:        uuid.NewString(),
		UserID:    userID,
		TaskName:  taskName,
		Duration:  25,
		Status:    types.StatusScheduled,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestMigrate(t *testing.T) {
	s := openTestStore(t)

	var version int
	require.NoError(t, s.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	// Reopening the same handle's migrate must be a no-op.
	require.NoError(t, s.migrate())
}

func TestUserLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "bee@example.com")

	t.Run("get by id and email", func(t *testing.T) {
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
		assert.False(t, got.EmailVerified)

		got, err = s.GetUserByEmail(ctx, "bee@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("signup creates default settings", func(t *testing.T) {
		st, err := s.GetSettings(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sunday", st.WeeklyReportDay)
		assert.Equal(t, types.CoachFriendly, st.CoachPersonality)
		assert.True(t, st.NotifyWeeklyReport)
		assert.Nil(t, st.QuietHoursStart)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := &types.User{
			ID:        uuid.NewString(),
			Email:     "bee@example.com",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		err := s.CreateUser(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicate)

		// The failed signup must not have left a settings row behind.
		_, err = s.GetSettings(ctx, dup.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mark verified", func(t *testing.T) {
		require.NoError(t, s.MarkEmailVerified(ctx, u.ID))
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.EmailVerified)

		assert.ErrorIs(t, s.MarkEmailVerified(ctx, "missing"), ErrNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.GetUserByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBoxCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "crud@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	b := newTestBox(u.ID, "Write report", now)
	category := "work"
	b.Category = &category
	scheduled := now.Add(2 * time.Hour)
	b.ScheduledFor = &scheduled
	require.NoError(t, s.CreateBox(ctx, b))

	t.Run("get round-trips nullable fields", func(t *testing.T) {
		got, err := s.GetBox(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write report", got.TaskName)
		require.NotNil(t, got.Category)
		assert.Equal(t, "work", *got.Category)
		require.NotNil(t, got.ScheduledFor)
		assert.WithinDuration(t, scheduled, *got.ScheduledFor, time.Second)
		assert.Nil(t, got.StartedAt)
		assert.Nil(t, got.FocusQuality)
	})

	t.Run("update", func(t *testing.T) {
		got, err := s.GetBox(ctx, b.ID)
		require.NoError(t, err)

		started := now.Add(3 * time.Hour)
		quality := types.QualityGreat
		actual := 22
		got.Status = types.StatusCompleted
		got.StartedAt = &started
		got.ActualDuration = &actual
		got.FocusQuality = &quality
		got.Category = nil
		require.NoError(t, s.UpdateBox(ctx, got))

		reread, err := s.GetBox(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, types.StatusCompleted, reread.Status)
		require.NotNil(t, reread.ActualDuration)
		assert.Equal(t, 22, *reread.ActualDuration)
		require.NotNil(t, reread.FocusQuality)
		assert.Equal(t, types.QualityGreat, *reread.FocusQuality)
		assert.Nil(t, reread.Category)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteBox(ctx, b.ID))
		_, err := s.GetBox(ctx, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteBox(ctx, b.ID), ErrNotFound)
	})

	t.Run("update missing", func(t *testing.T) {
		missing := newTestBox(u.ID, "ghost", now)
		assert.ErrorIs(t, s.UpdateBox(ctx, missing), ErrNotFound)
	})
}

func TestListBoxes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "list@example.com")
	other := newTestUser(t, s, "other@example.com")

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mk := func(name string, created time.Time, scheduled *time.Time, status types.BoxStatus) *types.Box {
		b := newTestBox(u.ID, name, created)
		b.ScheduledFor = scheduled
		b.Status = status
		require.NoError(t, s.CreateBox(ctx, b))
		return b
	}

	sched1 := base.Add(1 * time.Hour)
	sched2 := base.Add(5 * time.Hour)
	mk("early", base, &sched1, types.StatusScheduled)
	mk("late", base.Add(time.Minute), &sched2, types.StatusCompleted)
	mk("unscheduled old", base.Add(2*time.Minute), nil, types.StatusScheduled)
	mk("unscheduled new", base.Add(3*time.Minute), nil, types.StatusScheduled)

	// A different owner's box must never leak in.
	require.NoError(t, s.CreateBox(ctx, newTestBox(other.ID, "not mine", base)))

	t.Run("default ordering", func(t *testing.T) {
		boxes, err := s.ListBoxes(ctx, u.ID, BoxFilter{})
		require.NoError(t, err)
		require.Len(t, boxes, 4)
		// Unscheduled boxes sort first (NULL < any datetime), newest
		// creation first within the tie; then by scheduled time.
		assert.Equal(t, "unscheduled new", boxes[0].TaskName)
		assert.Equal(t, "unscheduled old", boxes[1].TaskName)
		assert.Equal(t, "early", boxes[2].TaskName)
		assert.Equal(t, "late", boxes[3].TaskName)
	})

	t.Run("status filter", func(t *testing.T) {
		status := types.StatusCompleted
		boxes, err := s.ListBoxes(ctx, u.ID, BoxFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, boxes, 1)
		assert.Equal(t, "late", boxes[0].TaskName)
	})

	t.Run("scheduled range filter", func(t *testing.T) {
		from := base.Add(2 * time.Hour)
		to := base.Add(6 * time.Hour)
		boxes, err := s.ListBoxes(ctx, u.ID, BoxFilter{ScheduledFrom: &from, ScheduledTo: &to})
		require.NoError(t, err)
		require.Len(t, boxes, 1)
		assert.Equal(t, "late", boxes[0].TaskName)
	})

	t.Run("created since", func(t *testing.T) {
		boxes, err := s.ListBoxesCreatedSince(ctx, u.ID, base.Add(90*time.Second))
		require.NoError(t, err)
		require.Len(t, boxes, 2)
		assert.Equal(t, "unscheduled old", boxes[0].TaskName)
		assert.Equal(t, "unscheduled new", boxes[1].TaskName)
	})

	t.Run("recent", func(t *testing.T) {
		boxes, err := s.ListRecentBoxes(ctx, u.ID, 2)
		require.NoError(t, err)
		require.Len(t, boxes, 2)
		assert.Equal(t, "unscheduled new", boxes[0].TaskName)
		assert.Equal(t, "unscheduled old", boxes[1].TaskName)
	})
}

func TestCountCompletedBetween(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "count@example.com")

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{1 * time.Hour, 26 * time.Hour, 50 * time.Hour} {
		b := newTestBox(u.ID, "done", base)
		b.Status = types.StatusCompleted
		completed := base.Add(offset)
		b.CompletedAt = &completed
		require.NoError(t, s.CreateBox(ctx, b))
	}
	// Still-active box inside the window must not count.
	active := newTestBox(u.ID, "running", base)
	active.Status = types.StatusActive
	require.NoError(t, s.CreateBox(ctx, active))

	n, err := s.CountCompletedBetween(ctx, u.ID, base, base.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSettingsSave(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "settings@example.com")

	st, err := s.GetSettings(ctx, u.ID)
	require.NoError(t, err)

	quiet := "22:00"
	quietEnd := "07:00"
	st.QuietHoursEnabled = true
	st.QuietHoursStart = &quiet
	st.QuietHoursEnd = &quietEnd
	st.Theme = types.ThemeDark
	st.CoachFrequency = types.FrequencyRare
	st.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.SaveSettings(ctx, st))

	got, err := s.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.QuietHoursEnabled)
	require.NotNil(t, got.QuietHoursStart)
	assert.Equal(t, "22:00", *got.QuietHoursStart)
	assert.Equal(t, types.ThemeDark, got.Theme)
	assert.Equal(t, types.FrequencyRare, got.CoachFrequency)

	t.Run("save for missing user", func(t *testing.T) {
		orphan := types.DefaultSettings("missing")
		assert.ErrorIs(t, s.SaveSettings(ctx, &orphan), ErrNotFound)
	})
}

func TestTokens(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "tokens@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	rec := TokenRecord{
		TokenHash: "abc123",
		UserID:    u.ID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, s.PutToken(ctx, TokenRefresh, rec))

	t.Run("get", func(t *testing.T) {
		got, err := s.GetToken(ctx, TokenRefresh, "abc123")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.UserID)
		assert.WithinDuration(t, rec.ExpiresAt, got.ExpiresAt, time.Second)
	})

	t.Run("kinds are isolated", func(t *testing.T) {
		_, err := s.GetToken(ctx, TokenVerification, "abc123")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.DeleteToken(ctx, TokenRefresh, "abc123"))
		_, err := s.GetToken(ctx, TokenRefresh, "abc123")
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, s.DeleteToken(ctx, TokenRefresh, "abc123"))
	})

	t.Run("delete for user", func(t *testing.T) {
		for _, h := range []string{"h1", "h2"} {
			require.NoError(t, s.PutToken(ctx, TokenRefresh, TokenRecord{
				TokenHash: h, UserID: u.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
			}))
		}
		require.NoError(t, s.DeleteTokensForUser(ctx, TokenRefresh, u.ID))
		_, err := s.GetToken(ctx, TokenRefresh, "h1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("purge expired", func(t *testing.T) {
		require.NoError(t, s.PutToken(ctx, TokenRefresh, TokenRecord{
			TokenHash: "stale", UserID: u.ID, ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
		}))
		require.NoError(t, s.PutToken(ctx, TokenVerification, TokenRecord{
			TokenHash: "fresh", UserID: u.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
		}))
		require.NoError(t, s.PurgeExpiredTokens(ctx, now))

		_, err := s.GetToken(ctx, TokenRefresh, "stale")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetToken(ctx, TokenVerification, "fresh")
		require.NoError(t, err)
	})
}

func TestDeleteUserCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, "cascade@example.com")

	b := newTestBox(u.ID, "doomed", time.Now().UTC())
	require.NoError(t, s.CreateBox(ctx, b))

	_, err := s.DB().ExecContext(ctx, `DELETE FROM users WHERE id = ?`, u.ID)
	require.NoError(t, err)

	_, err = s.GetBox(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetSettings(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
