package httpapi

import (
	"net/http"

	"github.com/noamseg/boxbee/internal/types"
)

func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.insights.WeeklyStats(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]*types.WeeklyStats{"stats": stats})
}

func (s *Server) handleDailyBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.insights.DailyBreakdown(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string][]types.DailyBreakdown{"breakdown": breakdown})
}

func (s *Server) handleAIInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.insights.Generate(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string][]string{"insights": insights})
}
