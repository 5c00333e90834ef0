package insights

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noamseg/boxbee/internal/ai"
	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/types"
)

// fakeStore serves aggregator queries from a slice of boxes.
type fakeStore struct {
	boxes []types.Box
	err   error
}

func (f *fakeStore) ListBoxesCreatedSince(_ context.Context, userID string, t time.Time) ([]types.Box, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []types.Box
	for _, b := range f.boxes {
		if b.UserID == userID && !b.CreatedAt.Before(t) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ListRecentBoxes(_ context.Context, userID string, limit int) ([]types.Box, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []types.Box
	for _, b := range f.boxes {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountCompletedBetween(_ context.Context, userID string, from, to time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, b := range f.boxes {
		if b.UserID != userID || b.Status != types.StatusCompleted || b.CompletedAt == nil {
			continue
		}
		if !b.CompletedAt.Before(from) && b.CompletedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

// testNow is a Monday at 10:00 UTC.
var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newAggregator(fs *fakeStore, client ai.Client) *Aggregator {
	return NewAggregator(fs, client).WithClock(func() time.Time { return testNow })
}

func completedBox(user string, completedAt time.Time, duration int, actual *int, quality *types.FocusQuality, category *string) types.Box {
	c := completedAt
	return types.Box{
		ID:             c.Format(time.RFC3339Nano),
		UserID:         user,
		TaskName:       "task",
		Duration:       duration,
		ActualDuration: actual,
		Status:         types.StatusCompleted,
		CompletedAt:    &c,
		FocusQuality:   quality,
		Category:       category,
		CreatedAt:      c,
		UpdatedAt:      c,
	}
}

func ptr[T any](v T) *T { return &v }

func TestWeeklyStatsEmpty(t *testing.T) {
	agg := newAggregator(&fakeStore{}, ai.Disabled{})

	stats, err := agg.WeeklyStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalBoxes)
	assert.Equal(t, 0, stats.CompletedBoxes)
	assert.Equal(t, 0, stats.TotalFocusTime)
	assert.Equal(t, 0, stats.AverageFocusQuality)
	assert.Equal(t, 0, stats.CompletionRate)
	assert.Equal(t, "N/A", stats.MostProductiveDay)
	assert.Equal(t, "N/A", stats.MostProductiveTime)
	assert.Empty(t, stats.TopCategory)
	assert.Equal(t, 0, stats.StreakDays)
}

func TestWeeklyStatsMath(t *testing.T) {
	// Two completed this morning, one still scheduled.
	morning := testNow.Add(-2 * time.Hour) // Monday 08:00
	fs := &fakeStore{boxes: []types.Box{
		completedBox("u1", morning, 30, nil, ptr(types.QualityGreat), ptr("work")),
		completedBox("u1", morning.Add(time.Hour), 30, ptr(45), ptr(types.QualityRough), ptr("work")),
		{ID: "s", UserID: "u1", TaskName: "later", Duration: 60, Status: types.StatusScheduled, CreatedAt: testNow, UpdatedAt: testNow},
	}}
	agg := newAggregator(fs, ai.Disabled{})

	stats, err := agg.WeeklyStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalBoxes)
	assert.Equal(t, 2, stats.CompletedBoxes)
	// actualDuration wins over target duration when present.
	assert.Equal(t, 30+45, stats.TotalFocusTime)
	// (100+30)/2 = 65
	assert.Equal(t, 65, stats.AverageFocusQuality)
	// 2/3*100 = 66.67 -> 67
	assert.Equal(t, 67, stats.CompletionRate)
	assert.Equal(t, "Monday", stats.MostProductiveDay)
	assert.Equal(t, "morning", stats.MostProductiveTime)
	assert.Equal(t, "work", stats.TopCategory)
	assert.Equal(t, 1, stats.StreakDays)
}

func TestAverageQualitySkipsUnrated(t *testing.T) {
	morning := testNow.Add(-2 * time.Hour)
	fs := &fakeStore{boxes: []types.Box{
		completedBox("u1", morning, 30, nil, ptr(types.QualityOkay), nil),
		completedBox("u1", morning.Add(time.Minute), 30, nil, nil, nil),
	}}
	agg := newAggregator(fs, ai.Disabled{})

	stats, err := agg.WeeklyStats(context.Background(), "u1")
	require.NoError(t, err)
	// Only the rated box contributes to the mean.
	assert.Equal(t, 60, stats.AverageFocusQuality)
}

func TestMostProductiveDayTieBreak(t *testing.T) {
	// Equal focus time Sunday and Monday; Sunday wins by bucket order
	// even though the Monday box came first.
	sunday := testNow.Add(-24 * time.Hour).Add(2 * time.Hour) // Sunday 12:00
	monday := testNow.Add(-4 * time.Hour)                     // Monday 06:00
	fs := &fakeStore{boxes: []types.Box{
		completedBox("u1", monday, 30, nil, nil, nil),
		completedBox("u1", sunday, 30, nil, nil, nil),
	}}
	agg := newAggregator(fs, ai.Disabled{})

	stats, err := agg.WeeklyStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Sunday", stats.MostProductiveDay)
}

func TestMostProductiveTimeBuckets(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		hours []int
		want  string
	}{
		{"morning majority", []int{6, 8, 13}, "morning"},
		{"afternoon majority", []int{13, 14, 6}, "afternoon"},
		{"evening includes night hours", []int{22, 3, 18}, "evening"},
		{"tie prefers morning", []int{6, 13}, "morning"},
		{"tie prefers afternoon over evening", []int{13, 20}, "afternoon"},
		{"boundary 5 is morning, 12 afternoon, 17 evening", []int{5, 12, 17, 17}, "evening"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := &fakeStore{}
			for i, h := range tc.hours {
				fs.boxes = append(fs.boxes,
					completedBox("u1", day.Add(time.Duration(h)*time.Hour+time.Duration(i)*time.Minute), 30, nil, nil, nil))
			}
			agg := newAggregator(fs, ai.Disabled{})
			stats, err := agg.WeeklyStats(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, stats.MostProductiveTime)
		})
	}
}

func TestTopCategoryFirstSeenTieBreak(t *testing.T) {
	morning := testNow.Add(-3 * time.Hour)
	fs := &fakeStore{boxes: []types.Box{
		completedBox("u1", morning, 30, nil, nil, ptr("writing")),
		completedBox("u1", morning.Add(time.Minute), 30, nil, nil, ptr("coding")),
		completedBox("u1", morning.Add(2*time.Minute), 30, nil, nil, ptr("coding")),
		completedBox("u1", morning.Add(3*time.Minute), 30, nil, nil, ptr("writing")),
		completedBox("u1", morning.Add(4*time.Minute), 30, nil, nil, nil),
	}}
	agg := newAggregator(fs, ai.Disabled{})

	stats, err := agg.WeeklyStats(context.Background(), "u1")
	require.NoError(t, err)
	// writing and coding both count 2; writing was seen first.
	assert.Equal(t, "writing", stats.TopCategory)
}

func TestStreak(t *testing.T) {
	dayAt := func(daysAgo int, hour int) time.Time {
		d := testNow.AddDate(0, 0, -daysAgo)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, d.Location())
	}

	t.Run("three days then a gap", func(t *testing.T) {
		fs := &fakeStore{boxes: []types.Box{
			completedBox("u1", dayAt(0, 8), 30, nil, nil, nil),
			completedBox("u1", dayAt(1, 9), 30, nil, nil, nil),
			completedBox("u1", dayAt(2, 21), 30, nil, nil, nil),
			// day 3 has nothing; day 4 must not count.
			completedBox("u1", dayAt(4, 10), 30, nil, nil, nil),
		}}
		agg := newAggregator(fs, ai.Disabled{})
		stats, err := agg.WeeklyStats(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, stats.StreakDays)
	})

	t.Run("no completion today breaks immediately", func(t *testing.T) {
		fs := &fakeStore{boxes: []types.Box{
			completedBox("u1", dayAt(1, 9), 30, nil, nil, nil),
		}}
		agg := newAggregator(fs, ai.Disabled{})
		stats, err := agg.WeeklyStats(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, stats.StreakDays)
	})

	t.Run("capped at thirty days", func(t *testing.T) {
		fs := &fakeStore{}
		for i := 0; i < 45; i++ {
			fs.boxes = append(fs.boxes, completedBox("u1", dayAt(i, 12), 30, nil, nil, nil))
		}
		agg := newAggregator(fs, ai.Disabled{})
		stats, err := agg.WeeklyStats(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 30, stats.StreakDays)
	})
}

func TestWeeklyStatsStoreError(t *testing.T) {
	agg := newAggregator(&fakeStore{err: errors.New("disk on fire")}, ai.Disabled{})
	_, err := agg.WeeklyStats(context.Background(), "u1")
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestDailyBreakdown(t *testing.T) {
	sunday := testNow.Add(-24 * time.Hour).Add(2 * time.Hour)
	fs := &fakeStore{boxes: []types.Box{
		completedBox("u1", sunday, 30, nil, ptr(types.QualityGreat), nil),
		completedBox("u1", sunday.Add(time.Hour), 20, nil, ptr(types.QualityOkay), nil),
	}}
	agg := newAggregator(fs, ai.Disabled{})

	breakdown, err := agg.DailyBreakdown(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, breakdown, 7)
	assert.Equal(t, "Sunday", breakdown[0].Day)
	assert.Equal(t, 2, breakdown[0].BoxesCompleted)
	assert.Equal(t, 50, breakdown[0].FocusTime)
	assert.InDelta(t, 80.0, breakdown[0].AverageQuality, 0.001)
	assert.Equal(t, 0, breakdown[1].BoxesCompleted)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	morning := testNow.Add(-2 * time.Hour)
	fs := &fakeStore{boxes: []types.Box{
		completedBox("u1", morning, 30, nil, ptr(types.QualityGreat), nil),
	}}

	t.Run("unavailable client returns fallback without store access", func(t *testing.T) {
		agg := newAggregator(&fakeStore{err: errors.New("must not be called")}, ai.Disabled{})
		insights, err := agg.Generate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, fallbackInsights, insights)
	})

	t.Run("model response passes through", func(t *testing.T) {
		stub := &ai.StubClient{Response: `["a", "b", "c"]`}
		agg := newAggregator(fs, stub)
		insights, err := agg.Generate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, insights)

		// The prompt embeds the computed stats and recent task names.
		require.Len(t, stub.Prompts, 1)
		assert.Contains(t, stub.Prompts[0], "Completed 1 out of 1 boxes (100% completion rate)")
		assert.Contains(t, stub.Prompts[0], "Current streak: 1 days")
		assert.Contains(t, stub.Prompts[0], "task")
	})

	t.Run("model error returns fallback", func(t *testing.T) {
		agg := newAggregator(fs, &ai.StubClient{Err: errors.New("quota")})
		insights, err := agg.Generate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, fallbackInsights, insights)
	})

	t.Run("non-array response returns fallback", func(t *testing.T) {
		agg := newAggregator(fs, &ai.StubClient{Response: `{"insights": []}`})
		insights, err := agg.Generate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, fallbackInsights, insights)
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		agg := newAggregator(&fakeStore{err: errors.New("down")}, &ai.StubClient{Response: `["x"]`})
		_, err := agg.Generate(ctx, "u1")
		assert.True(t, apperr.Is(err, apperr.KindInternal))
	})
}
