// Package insights derives weekly statistics and AI-written coaching
// insights from a user's box history. Statistics are computed on demand
// and never persisted.
package insights

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noamseg/boxbee/internal/ai"
	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/logging"
	"github.com/noamseg/boxbee/internal/types"
)

// qualityScore maps a self-rated focus quality to a 0-100 score.
var qualityScore = map[types.FocusQuality]int{
	types.QualityGreat: 100,
	types.QualityOkay:  60,
	types.QualityRough: 30,
}

// weekdays in bucket order. Ties on focus time resolve to the earliest
// day in this order.
var weekdays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

const streakLookbackDays = 30

// fallbackInsights is returned whenever the model is unavailable or its
// response cannot be used.
var fallbackInsights = []string{
	"Great work this week! Keep building your focus habit one box at a time. 🐝",
	"Try scheduling your most important tasks during your peak productivity hours.",
	"Consistency is key - aim for at least one focused session every day!",
}

// Store is the persistence surface the aggregator needs.
type Store interface {
	ListBoxesCreatedSince(ctx context.Context, userID string, t time.Time) ([]types.Box, error)
	ListRecentBoxes(ctx context.Context, userID string, limit int) ([]types.Box, error)
	CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// Aggregator computes weekly stats and generates insight text.
type Aggregator struct {
	store  Store
	client ai.Client
	now    func() time.Time
}

// NewAggregator creates an aggregator. The client may be ai.Disabled;
// insight generation then always returns the fallback list.
func NewAggregator(st Store, client ai.Client) *Aggregator {
	return &Aggregator{store: st, client: client, now: time.Now}
}

// WithClock overrides the aggregator clock.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// WeeklyStats computes statistics over boxes created in the trailing
// seven days, plus the completion streak over the last 30 days.
func (a *Aggregator) WeeklyStats(ctx context.Context, userID string) (*types.WeeklyStats, error) {
	timer := logging.StartTimer(logging.CategoryInsights, "WeeklyStats")
	defer timer.Stop()

	now := a.now()
	weekAgo := now.Add(-7 * 24 * time.Hour)

	boxes, err := a.store.ListBoxesCreatedSince(ctx, userID, weekAgo)
	if err != nil {
		return nil, apperr.Internal("failed to load weekly boxes", err)
	}

	var completed []types.Box
	for _, b := range boxes {
		if b.Status == types.StatusCompleted {
			completed = append(completed, b)
		}
	}

	totalFocusTime := 0
	for i := range completed {
		totalFocusTime += completed[i].FocusMinutes()
	}

	// Unweighted mean over completed boxes that rated their quality.
	qualitySum, qualityCount := 0, 0
	for _, b := range completed {
		if b.FocusQuality != nil {
			qualitySum += qualityScore[*b.FocusQuality]
			qualityCount++
		}
	}
	averageQuality := 0
	if qualityCount > 0 {
		averageQuality = roundToInt(float64(qualitySum) / float64(qualityCount))
	}

	completionRate := 0
	if len(boxes) > 0 {
		completionRate = roundToInt(float64(len(completed)) / float64(len(boxes)) * 100)
	}

	streak, err := a.streak(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	return &types.WeeklyStats{
		TotalBoxes:          len(boxes),
		CompletedBoxes:      len(completed),
		TotalFocusTime:      totalFocusTime,
		AverageFocusQuality: averageQuality,
		CompletionRate:      completionRate,
		MostProductiveDay:   mostProductiveDay(completed),
		MostProductiveTime:  mostProductiveTime(completed),
		TopCategory:         topCategory(completed),
		StreakDays:          streak,
	}, nil
}

// DailyBreakdown buckets the week's completed boxes by weekday,
// Sunday first.
func (a *Aggregator) DailyBreakdown(ctx context.Context, userID string) ([]types.DailyBreakdown, error) {
	now := a.now()
	boxes, err := a.store.ListBoxesCreatedSince(ctx, userID, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, apperr.Internal("failed to load weekly boxes", err)
	}
	var completed []types.Box
	for _, b := range boxes {
		if b.Status == types.StatusCompleted {
			completed = append(completed, b)
		}
	}
	return dailyBreakdown(completed), nil
}

func dailyBreakdown(completed []types.Box) []types.DailyBreakdown {
	buckets := make([][]types.Box, 7)
	for _, b := range completed {
		day := int(b.EffectiveCompletedAt().Weekday())
		buckets[day] = append(buckets[day], b)
	}

	out := make([]types.DailyBreakdown, 7)
	for i, name := range weekdays {
		focusTime := 0
		qualitySum, qualityCount := 0, 0
		for _, b := range buckets[i] {
			focusTime += b.FocusMinutes()
			if b.FocusQuality != nil {
				qualitySum += qualityScore[*b.FocusQuality]
				qualityCount++
			}
		}
		avg := 0.0
		if qualityCount > 0 {
			avg = float64(qualitySum) / float64(qualityCount)
		}
		out[i] = types.DailyBreakdown{
			Day:            name,
			BoxesCompleted: len(buckets[i]),
			FocusTime:      focusTime,
			AverageQuality: avg,
		}
	}
	return out
}

func mostProductiveDay(completed []types.Box) string {
	if len(completed) == 0 {
		return "N/A"
	}
	breakdown := dailyBreakdown(completed)
	best := breakdown[0]
	for _, d := range breakdown[1:] {
		if d.FocusTime > best.FocusTime {
			best = d
		}
	}
	return best.Day
}

func mostProductiveTime(completed []types.Box) string {
	if len(completed) == 0 {
		return "N/A"
	}
	var morning, afternoon, evening int
	for _, b := range completed {
		hour := b.EffectiveCompletedAt().Hour()
		switch {
		case hour >= 5 && hour < 12:
			morning++
		case hour >= 12 && hour < 17:
			afternoon++
		default:
			evening++
		}
	}
	// Check order breaks ties: morning, then afternoon, then evening.
	max := morning
	if afternoon > max {
		max = afternoon
	}
	if evening > max {
		max = evening
	}
	switch max {
	case morning:
		return "morning"
	case afternoon:
		return "afternoon"
	default:
		return "evening"
	}
}

// topCategory is the mode of non-null categories among completed boxes,
// first-seen order breaking ties. Empty when no box has a category.
func topCategory(completed []types.Box) string {
	counts := make(map[string]int)
	var order []string
	for _, b := range completed {
		if b.Category == nil || *b.Category == "" {
			continue
		}
		if _, seen := counts[*b.Category]; !seen {
			order = append(order, *b.Category)
		}
		counts[*b.Category]++
	}
	best := ""
	bestCount := 0
	for _, cat := range order {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	return best
}

// streak walks backward from today in local calendar days, counting
// consecutive days with at least one completion, up to 30 days.
func (a *Aggregator) streak(ctx context.Context, userID string, now time.Time) (int, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		n, err := a.store.CountCompletedBetween(ctx, userID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return 0, apperr.Internal("failed to count completions", err)
		}
		if n == 0 {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// Generate produces three insight strings from the week's stats and the
// user's recent tasks. Every failure path returns the fallback list;
// only storage errors surface.
func (a *Aggregator) Generate(ctx context.Context, userID string) ([]string, error) {
	if !a.client.Available() {
		return fallbackInsights, nil
	}

	stats, err := a.WeeklyStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := a.store.ListRecentBoxes(ctx, userID, 10)
	if err != nil {
		return nil, apperr.Internal("failed to load recent boxes", err)
	}

	names := make([]string, len(recent))
	for i, b := range recent {
		names[i] = b.TaskName
	}

	prompt := fmt.Sprintf(`You are BoxBee, an AI productivity coach. Generate 3 personalized insights based on this user's data:

Weekly Stats:
- Completed %d out of %d boxes (%d%% completion rate)
- Total focus time: %d minutes
- Average focus quality: %d%%
- Most productive: %s %s
- Current streak: %d days

Recent tasks: %s

Generate 3 specific, actionable insights. Each should:
1. Be encouraging and positive
2. Reference specific data points
3. Suggest one concrete action
4. Be 1-2 sentences max

Format as JSON array of strings: ["insight1", "insight2", "insight3"]`,
		stats.CompletedBoxes, stats.TotalBoxes, stats.CompletionRate,
		stats.TotalFocusTime, stats.AverageFocusQuality,
		stats.MostProductiveDay, stats.MostProductiveTime,
		stats.StreakDays, strings.Join(names, ", "))

	system := "You are BoxBee, a friendly productivity coach. Respond only with valid JSON."

	// Single attempt, no retry.
	text, err := a.client.Complete(ctx, system, prompt)
	if err != nil {
		logging.AIError("generate insights: %v", err)
		return fallbackInsights, nil
	}

	var parsed []string
	if err := ai.DecodeJSON(text, &parsed); err != nil {
		logging.AIError("generate insights: %v", err)
		return fallbackInsights, nil
	}
	if len(parsed) == 0 {
		return fallbackInsights, nil
	}
	return parsed, nil
}

func roundToInt(f float64) int {
	return int(math.Round(f))
}
