package types

import "time"

// CoachPersonality selects the tone of AI coaching messages.
type CoachPersonality string

const (
	CoachFriendly     CoachPersonality = "friendly"
	CoachProfessional CoachPersonality = "professional"
	CoachMinimal      CoachPersonality = "minimal"
)

// Valid reports whether p is a known personality.
func (p CoachPersonality) Valid() bool {
	switch p {
	case CoachFriendly, CoachProfessional, CoachMinimal:
		return true
	}
	return false
}

// CoachFrequency controls how often coaching messages are surfaced.
type CoachFrequency string

const (
	FrequencyLots  CoachFrequency = "lots"
	FrequencyOften CoachFrequency = "often"
	FrequencySome  CoachFrequency = "some"
	FrequencyRare  CoachFrequency = "rare"
)

// Valid reports whether f is a known frequency.
func (f CoachFrequency) Valid() bool {
	switch f {
	case FrequencyLots, FrequencyOften, FrequencySome, FrequencyRare:
		return true
	}
	return false
}

// Theme is the client appearance preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeAuto:
		return true
	}
	return false
}

// UserSettings is the one-to-one preference bag for a user, created
// lazily with defaults on first access.
type UserSettings struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	// Notification preferences
	NotifyFiveMinWarning    bool    `json:"notifyFiveMinWarning"`
	NotifyCompletion        bool    `json:"notifyCompletion"`
	NotifyCoaching          bool    `json:"notifyCoaching"`
	NotifyMorningPlanning   bool    `json:"notifyMorningPlanning"`
	MorningPlanningTime     *string `json:"morningPlanningTime"`
	NotifyEveningReflection bool    `json:"notifyEveningReflection"`
	NotifyWeeklyReport      bool    `json:"notifyWeeklyReport"`
	WeeklyReportDay         string  `json:"weeklyReportDay"`
	WeeklyReportTime        string  `json:"weeklyReportTime"`

	// Quiet hours
	QuietHoursEnabled bool    `json:"quietHoursEnabled"`
	QuietHoursStart   *string `json:"quietHoursStart"`
	QuietHoursEnd     *string `json:"quietHoursEnd"`

	// AI coach
	CoachPersonality  CoachPersonality `json:"coachPersonality"`
	CoachFrequency    CoachFrequency   `json:"coachFrequency"`
	AILearningEnabled bool             `json:"aiLearningEnabled"`
	AIAutoAdjustTime  bool             `json:"aiAutoAdjustTime"`

	// Appearance
	Theme Theme `json:"theme"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultSettings returns the settings row created on first access.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:               userID,
		NotifyFiveMinWarning: true,
		NotifyCompletion:     true,
		NotifyCoaching:       true,
		NotifyWeeklyReport:   true,
		WeeklyReportDay:      "Sunday",
		WeeklyReportTime:     "18:00",
		CoachPersonality:     CoachFriendly,
		CoachFrequency:       FrequencySome,
		AILearningEnabled:    true,
		Theme:                ThemeAuto,
	}
}

// SettingsPatch is a partial settings update with JSON presence tracking.
type SettingsPatch struct {
	NotifyFiveMinWarning    Opt[bool]             `json:"notifyFiveMinWarning"`
	NotifyCompletion        Opt[bool]             `json:"notifyCompletion"`
	NotifyCoaching          Opt[bool]             `json:"notifyCoaching"`
	NotifyMorningPlanning   Opt[bool]             `json:"notifyMorningPlanning"`
	MorningPlanningTime     Opt[string]           `json:"morningPlanningTime"`
	NotifyEveningReflection Opt[bool]             `json:"notifyEveningReflection"`
	NotifyWeeklyReport      Opt[bool]             `json:"notifyWeeklyReport"`
	WeeklyReportDay         Opt[string]           `json:"weeklyReportDay"`
	WeeklyReportTime        Opt[string]           `json:"weeklyReportTime"`
	QuietHoursEnabled       Opt[bool]             `json:"quietHoursEnabled"`
	QuietHoursStart         Opt[string]           `json:"quietHoursStart"`
	QuietHoursEnd           Opt[string]           `json:"quietHoursEnd"`
	CoachPersonality        Opt[CoachPersonality] `json:"coachPersonality"`
	CoachFrequency          Opt[CoachFrequency]   `json:"coachFrequency"`
	AILearningEnabled       Opt[bool]             `json:"aiLearningEnabled"`
	AIAutoAdjustTime        Opt[bool]             `json:"aiAutoAdjustTime"`
	Theme                   Opt[Theme]            `json:"theme"`
}

// Apply copies every present patch field onto s, honoring explicit nulls
// for the nullable time-of-day strings.
func (p *SettingsPatch) Apply(s *UserSettings) {
	if p.NotifyFiveMinWarning.Set {
		s.NotifyFiveMinWarning = p.NotifyFiveMinWarning.Value
	}
	if p.NotifyCompletion.Set {
		s.NotifyCompletion = p.NotifyCompletion.Value
	}
	if p.NotifyCoaching.Set {
		s.NotifyCoaching = p.NotifyCoaching.Value
	}
	if p.NotifyMorningPlanning.Set {
		s.NotifyMorningPlanning = p.NotifyMorningPlanning.Value
	}
	if p.MorningPlanningTime.Set {
		s.MorningPlanningTime = p.MorningPlanningTime.Ptr()
	}
	if p.NotifyEveningReflection.Set {
		s.NotifyEveningReflection = p.NotifyEveningReflection.Value
	}
	if p.NotifyWeeklyReport.Set {
		s.NotifyWeeklyReport = p.NotifyWeeklyReport.Value
	}
	if p.WeeklyReportDay.Set {
		s.WeeklyReportDay = p.WeeklyReportDay.Value
	}
	if p.WeeklyReportTime.Set {
		s.WeeklyReportTime = p.WeeklyReportTime.Value
	}
	if p.QuietHoursEnabled.Set {
		s.QuietHoursEnabled = p.QuietHoursEnabled.Value
	}
	if p.QuietHoursStart.Set {
		s.QuietHoursStart = p.QuietHoursStart.Ptr()
	}
	if p.QuietHoursEnd.Set {
		s.QuietHoursEnd = p.QuietHoursEnd.Ptr()
	}
	if p.CoachPersonality.Set {
		s.CoachPersonality = p.CoachPersonality.Value
	}
	if p.CoachFrequency.Set {
		s.CoachFrequency = p.CoachFrequency.Value
	}
	if p.AILearningEnabled.Set {
		s.AILearningEnabled = p.AILearningEnabled.Value
	}
	if p.AIAutoAdjustTime.Set {
		s.AIAutoAdjustTime = p.AIAutoAdjustTime.Value
	}
	if p.Theme.Set {
		s.Theme = p.Theme.Value
	}
}
