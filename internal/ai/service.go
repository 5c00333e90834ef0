package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/noamseg/boxbee/internal/logging"
)

const jsonSystemPrompt = "You are a helpful productivity assistant. Always respond with valid JSON only."

const defaultCoachingMessage = "Keep up the great work! 🐝"

// Duration estimates are clamped to one realistic focus session.
const (
	minEstimate = 15
	maxEstimate = 120
)

// Coach builds BoxBee's task-assist features on a completion Client.
type Coach struct {
	client Client
}

// NewCoach wraps a completion client.
func NewCoach(client Client) *Coach {
	return &Coach{client: client}
}

// Available reports whether the underlying model can be reached.
func (c *Coach) Available() bool { return c.client.Available() }

// Estimate is a duration suggestion for a named task.
type Estimate struct {
	EstimatedDuration int    `json:"estimatedDuration"`
	Confidence        string `json:"confidence"`
	Reasoning         string `json:"reasoning"`
}

// EstimateDuration asks the model how long a task will take. Any model
// failure degrades to a conservative 30-minute estimate; only a missing
// client is surfaced as ErrUnavailable.
func (c *Coach) EstimateDuration(ctx context.Context, taskName string) (Estimate, error) {
	if !c.client.Available() {
		return Estimate{}, ErrUnavailable
	}

	prompt := fmt.Sprintf(`You are a productivity assistant helping users estimate how long tasks will take.

Task: %q

Please estimate how long this task will take in minutes. Consider:
- The complexity and scope of the task
- Typical time requirements for similar tasks
- A realistic focused work session duration

Respond with a JSON object in this exact format:
{
  "estimatedDuration": <number in minutes, between 15 and 120>,
  "confidence": "<high|medium|low>",
  "reasoning": "<brief 1-sentence explanation>"
}`, taskName)

	fallback := Estimate{
		EstimatedDuration: 30,
		Confidence:        "low",
		Reasoning:         "Default estimation due to AI service error",
	}

	text, err := c.client.Complete(ctx, jsonSystemPrompt, prompt)
	if err != nil {
		logging.AIError("estimate duration: %v", err)
		return fallback, nil
	}

	var est Estimate
	if err := DecodeJSON(text, &est); err != nil {
		logging.AIError("estimate duration: %v", err)
		return fallback, nil
	}

	if est.EstimatedDuration < minEstimate {
		est.EstimatedDuration = minEstimate
	}
	if est.EstimatedDuration > maxEstimate {
		est.EstimatedDuration = maxEstimate
	}
	if est.Confidence == "" {
		est.Confidence = "medium"
	}
	if est.Reasoning == "" {
		est.Reasoning = "AI estimation based on task complexity"
	}
	return est, nil
}

// Breakdown is the result of splitting a task into subtasks.
type Breakdown struct {
	Subtasks   []string `json:"subtasks"`
	Suggestion string   `json:"suggestion"`
}

// BreakdownTask asks the model to split a complex task into 2-4
// subtasks. Simple tasks come back with no subtasks.
func (c *Coach) BreakdownTask(ctx context.Context, taskName string) (Breakdown, error) {
	if !c.client.Available() {
		return Breakdown{}, ErrUnavailable
	}

	prompt := fmt.Sprintf(`You are a productivity assistant helping users break down complex tasks.

Task: %q

If this task is complex enough to benefit from breaking down into smaller subtasks, suggest 2-4 focused subtasks.
If the task is already focused and specific, indicate that it doesn't need breakdown.

Respond with a JSON object in this exact format:
{
  "needsBreakdown": <true|false>,
  "subtasks": [<array of 2-4 subtask strings, or empty array if needsBreakdown is false>],
  "suggestion": "<brief message to the user>"
}`, taskName)

	fallback := Breakdown{
		Subtasks:   []string{},
		Suggestion: "Unable to analyze task at this time",
	}

	text, err := c.client.Complete(ctx, jsonSystemPrompt, prompt)
	if err != nil {
		logging.AIError("breakdown task: %v", err)
		return fallback, nil
	}

	var bd Breakdown
	if err := DecodeJSON(text, &bd); err != nil {
		logging.AIError("breakdown task: %v", err)
		return fallback, nil
	}
	if bd.Subtasks == nil {
		bd.Subtasks = []string{}
	}
	if bd.Suggestion == "" {
		bd.Suggestion = "Task analysis complete"
	}
	return bd, nil
}

// ParsedTask is structured data extracted from free-form task input.
type ParsedTask struct {
	TaskName          string  `json:"taskName"`
	SuggestedDuration *int    `json:"suggestedDuration,omitempty"`
	Category          *string `json:"category,omitempty"`
}

// ParseTask extracts a task name, optional duration, and optional
// category from natural language. Failures fall back to the raw input
// as the task name.
func (c *Coach) ParseTask(ctx context.Context, input string) (ParsedTask, error) {
	if !c.client.Available() {
		return ParsedTask{}, ErrUnavailable
	}

	prompt := fmt.Sprintf(`You are a productivity assistant parsing natural language task descriptions.

User input: %q

Extract the core task name and any mentioned duration or category. Examples:
- "Write blog post for 45 minutes" -> task: "Write blog post", duration: 45
- "30 min email catch up" -> task: "Email catch up", duration: 30
- "Code review" -> task: "Code review", duration: null

Respond with a JSON object in this exact format:
{
  "taskName": "<clear, concise task name>",
  "suggestedDuration": <number in minutes or null>,
  "category": "<email|writing|coding|meeting|creative|admin or null>"
}`, input)

	text, err := c.client.Complete(ctx, jsonSystemPrompt, prompt)
	if err != nil {
		logging.AIError("parse task: %v", err)
		return ParsedTask{TaskName: input}, nil
	}

	var parsed ParsedTask
	if err := DecodeJSON(text, &parsed); err != nil {
		logging.AIError("parse task: %v", err)
		return ParsedTask{TaskName: input}, nil
	}
	if parsed.TaskName == "" {
		parsed.TaskName = input
	}
	return parsed, nil
}

// CoachingContext summarizes recent activity for a coaching message.
type CoachingContext struct {
	RecentBoxes []CoachingBox
	TimeOfDay   string
}

// CoachingBox is one recent box condensed for the coaching prompt.
type CoachingBox struct {
	TaskName         string
	FocusQuality     string
	CompletionStatus string
}

// CoachingMessage generates a short encouraging message. Unlike the
// other features this never errors: without a model it returns the
// stock message.
func (c *Coach) CoachingMessage(ctx context.Context, cc CoachingContext) string {
	if !c.client.Available() {
		return defaultCoachingMessage
	}

	var activity strings.Builder
	for _, b := range cc.RecentBoxes {
		fmt.Fprintf(&activity, "- %s: %s focus, %s\n", b.TaskName, b.FocusQuality, b.CompletionStatus)
	}

	prompt := fmt.Sprintf(`You are BoxBee, a friendly and encouraging productivity coach.

Recent user activity:
%s
Time of day: %s

Generate a brief (1-2 sentences), personalized, encouraging message for the user. Be warm, supportive, and actionable. Use the bee theme subtly if appropriate.`, activity.String(), cc.TimeOfDay)

	system := "You are BoxBee, a friendly productivity coach. Keep messages brief and encouraging."

	text, err := c.client.Complete(ctx, system, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logging.AIError("coaching message: %v", err)
		}
		return defaultCoachingMessage
	}
	return strings.TrimSpace(text)
}
