package httpapi

import (
	"net/http"
	"time"

	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/boxes"
	"github.com/noamseg/boxbee/internal/types"
)

type createBoxRequest struct {
	TaskName     string     `json:"taskName"`
	Category     *string    `json:"category"`
	Duration     int        `json:"duration"`
	ScheduledFor *time.Time `json:"scheduledFor"`
	AISuggested  bool       `json:"aiSuggested"`
	AIEstimated  bool       `json:"aiEstimated"`
}

type completeBoxRequest struct {
	FocusQuality     types.FocusQuality     `json:"focusQuality"`
	CompletionStatus types.CompletionStatus `json:"completionStatus"`
	Notes            *string                `json:"notes"`
	ActualDuration   *int                   `json:"actualDuration"`
}

type boxData struct {
	Box *types.Box `json:"box"`
}

type boxListData struct {
	Boxes []types.Box `json:"boxes"`
}

func (s *Server) handleCreateBox(w http.ResponseWriter, r *http.Request) {
	var req createBoxRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	box, err := s.boxes.Create(r.Context(), userID(r.Context()), boxes.CreateInput{
		TaskName:     req.TaskName,
		Duration:     req.Duration,
		Category:     req.Category,
		ScheduledFor: req.ScheduledFor,
		AISuggested:  req.AISuggested,
		AIEstimated:  req.AIEstimated,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, boxData{Box: box})
}

func (s *Server) handleListBoxes(w http.ResponseWriter, r *http.Request) {
	var in boxes.ListInput

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status := types.BoxStatus(v)
		in.Status = &status
	}
	for name, dst := range map[string]**time.Time{"startDate": &in.StartDate, "endDate": &in.EndDate} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				s.writeError(w, r, apperr.Validation("Validation failed",
					apperr.FieldError{Field: name, Message: "must be an RFC 3339 timestamp"}))
				return
			}
			*dst = &t
		}
	}

	list, err := s.boxes.List(r.Context(), userID(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, boxListData{Boxes: list})
}

func (s *Server) handleGetBox(w http.ResponseWriter, r *http.Request) {
	box, err := s.boxes.Get(r.Context(), r.PathValue("id"), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, boxData{Box: box})
}

func (s *Server) handleUpdateBox(w http.ResponseWriter, r *http.Request) {
	var patch types.BoxPatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	box, err := s.boxes.Update(r.Context(), r.PathValue("id"), userID(r.Context()), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, boxData{Box: box})
}

func (s *Server) handleDeleteBox(w http.ResponseWriter, r *http.Request) {
	if err := s.boxes.Delete(r.Context(), r.PathValue("id"), userID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Box deleted successfully")
}

func (s *Server) handleStartBox(w http.ResponseWriter, r *http.Request) {
	box, err := s.boxes.Start(r.Context(), r.PathValue("id"), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, boxData{Box: box})
}

func (s *Server) handleCompleteBox(w http.ResponseWriter, r *http.Request) {
	var req completeBoxRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	box, err := s.boxes.Complete(r.Context(), r.PathValue("id"), userID(r.Context()), boxes.CompleteInput{
		FocusQuality:     req.FocusQuality,
		CompletionStatus: req.CompletionStatus,
		Notes:            req.Notes,
		ActualDuration:   req.ActualDuration,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, boxData{Box: box})
}
