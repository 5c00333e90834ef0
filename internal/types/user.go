package types

import "time"

// User is an account holder. PasswordHash is empty for OAuth-only
// accounts and is never serialized.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// WeeklyStats is derived on demand from the trailing seven days of a
// user's boxes. It is never persisted.
type WeeklyStats struct {
	TotalBoxes         int    `json:"totalBoxes"`
	CompletedBoxes     int    `json:"completedBoxes"`
	TotalFocusTime     int    `json:"totalFocusTime"`     // minutes
	AverageFocusQuality int   `json:"averageFocusQuality"` // 0-100, rounded
	CompletionRate     int    `json:"completionRate"`     // percent, rounded
	MostProductiveDay  string `json:"mostProductiveDay"`  // weekday name or "N/A"
	MostProductiveTime string `json:"mostProductiveTime"` // morning/afternoon/evening or "N/A"
	TopCategory        string `json:"topCategory,omitempty"`
	StreakDays         int    `json:"streakDays"`
}

// DailyBreakdown is one weekday bucket of completed boxes.
type DailyBreakdown struct {
	Day            string  `json:"day"`
	BoxesCompleted int     `json:"boxesCompleted"`
	FocusTime      int     `json:"focusTime"` // minutes
	AverageQuality float64 `json:"averageQuality"`
}
