package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/noamseg/boxbee/internal/ai"
	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/types"
)

type taskNameRequest struct {
	TaskName string `json:"taskName"`
}

type parseTaskRequest struct {
	Input string `json:"input"`
}

const maxParseInputLen = 300

func (s *Server) requireCoach(w http.ResponseWriter, r *http.Request) bool {
	if !s.coach.Available() {
		s.writeError(w, r, apperr.Unavailable("AI service is not configured"))
		return false
	}
	return true
}

func validTaskName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("Validation failed",
			apperr.FieldError{Field: "taskName", Message: "Task name is required"})
	}
	if len(name) > types.MaxTaskNameLen {
		return "", apperr.Validation("Validation failed",
			apperr.FieldError{Field: "taskName", Message: "Task name must be at most 200 characters"})
	}
	return name, nil
}

func (s *Server) handleEstimateDuration(w http.ResponseWriter, r *http.Request) {
	if !s.requireCoach(w, r) {
		return
	}
	var req taskNameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	name, err := validTaskName(req.TaskName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	est, err := s.coach.EstimateDuration(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, est)
}

func (s *Server) handleBreakdownTask(w http.ResponseWriter, r *http.Request) {
	if !s.requireCoach(w, r) {
		return
	}
	var req taskNameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	name, err := validTaskName(req.TaskName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bd, err := s.coach.BreakdownTask(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, bd)
}

func (s *Server) handleParseTask(w http.ResponseWriter, r *http.Request) {
	if !s.requireCoach(w, r) {
		return
	}
	var req parseTaskRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	input := strings.TrimSpace(req.Input)
	if input == "" || len(input) > maxParseInputLen {
		s.writeError(w, r, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "input", Message: "Input is required and must be at most 300 characters"}))
		return
	}
	parsed, err := s.coach.ParseTask(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, parsed)
}

type coachingMessageData struct {
	Message string `json:"message"`
}

func (s *Server) handleCoachingMessage(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	// Recent completed boxes give the coach something concrete to
	// reference. Missing context degrades to a generic message, so a
	// load failure here is not fatal.
	var recent []ai.CoachingBox
	if boxes, err := s.store.ListRecentBoxes(r.Context(), uid, 5); err == nil {
		for _, b := range boxes {
			if b.Status != types.StatusCompleted {
				continue
			}
			cb := ai.CoachingBox{TaskName: b.TaskName}
			if b.FocusQuality != nil {
				cb.FocusQuality = string(*b.FocusQuality)
			}
			if b.CompletionStatus != nil {
				cb.CompletionStatus = string(*b.CompletionStatus)
			}
			recent = append(recent, cb)
		}
	}

	hour := time.Now().Hour()
	timeOfDay := "evening"
	if hour < 12 {
		timeOfDay = "morning"
	} else if hour < 18 {
		timeOfDay = "afternoon"
	}

	msg := s.coach.CoachingMessage(r.Context(), ai.CoachingContext{
		RecentBoxes: recent,
		TimeOfDay:   timeOfDay,
	})
	writeData(w, http.StatusOK, coachingMessageData{Message: msg})
}
