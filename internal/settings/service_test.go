package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/store"
	"github.com/noamseg/boxbee/internal/types"
)

type fakeStore struct {
	rows map[string]types.UserSettings
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]types.UserSettings)}
}

func (f *fakeStore) GetSettings(_ context.Context, userID string) (*types.UserSettings, error) {
	st, ok := f.rows[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := st
	return &copied, nil
}

func (f *fakeStore) CreateSettings(_ context.Context, st *types.UserSettings) error {
	if _, ok := f.rows[st.UserID]; ok {
		return store.ErrDuplicate
	}
	f.rows[st.UserID] = *st
	return nil
}

func (f *fakeStore) SaveSettings(_ context.Context, st *types.UserSettings) error {
	if _, ok := f.rows[st.UserID]; !ok {
		return store.ErrNotFound
	}
	f.rows[st.UserID] = *st
	return nil
}

func newTestService(fs *fakeStore) *Service {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return NewService(fs).WithClock(func() time.Time { return now })
}

func TestGetLazyCreate(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	svc := newTestService(fs)

	st, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", st.UserID)
	assert.NotEmpty(t, st.ID)
	assert.True(t, st.NotifyFiveMinWarning)
	assert.Equal(t, "Sunday", st.WeeklyReportDay)
	assert.Equal(t, types.CoachFriendly, st.CoachPersonality)
	assert.Equal(t, types.ThemeAuto, st.Theme)

	// A second Get returns the same row, not a fresh one.
	again, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, st.ID, again.ID)
	assert.Len(t, fs.rows, 1)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("patch applies only present fields", func(t *testing.T) {
		fs := newFakeStore()
		svc := newTestService(fs)

		st, err := svc.Update(ctx, "u1", types.SettingsPatch{
			Theme:           types.OptOf(types.ThemeDark),
			QuietHoursStart: types.OptOf("22:00"),
		})
		require.NoError(t, err)
		assert.Equal(t, types.ThemeDark, st.Theme)
		require.NotNil(t, st.QuietHoursStart)
		assert.Equal(t, "22:00", *st.QuietHoursStart)
		// Untouched defaults survive.
		assert.True(t, st.NotifyCompletion)
		assert.Equal(t, "18:00", st.WeeklyReportTime)
	})

	t.Run("null clears nullable fields", func(t *testing.T) {
		fs := newFakeStore()
		svc := newTestService(fs)

		_, err := svc.Update(ctx, "u1", types.SettingsPatch{
			QuietHoursStart: types.OptOf("22:00"),
		})
		require.NoError(t, err)

		st, err := svc.Update(ctx, "u1", types.SettingsPatch{
			QuietHoursStart: types.OptNull[string](),
		})
		require.NoError(t, err)
		assert.Nil(t, st.QuietHoursStart)
	})

	t.Run("invalid enum values", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.Update(ctx, "u1", types.SettingsPatch{
			Theme: types.OptOf(types.Theme("sepia")),
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		_, err = svc.Update(ctx, "u1", types.SettingsPatch{
			CoachFrequency: types.OptOf(types.CoachFrequency("never")),
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("time format enforced", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.Update(ctx, "u1", types.SettingsPatch{
			WeeklyReportTime: types.OptOf("25:99"),
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		_, err = svc.Update(ctx, "u1", types.SettingsPatch{
			WeeklyReportTime: types.OptOf("7:30"),
		})
		assert.NoError(t, err)
	})

	t.Run("bad weekday", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.Update(ctx, "u1", types.SettingsPatch{
			WeeklyReportDay: types.OptOf("Caturday"),
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}
