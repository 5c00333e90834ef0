package httpapi

import (
	"net/http"

	"github.com/noamseg/boxbee/internal/types"
)

type settingsData struct {
	Settings *types.UserSettings `json:"settings"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.Get(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, settingsData{Settings: st})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch types.SettingsPatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.settings.Update(r.Context(), userID(r.Context()), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, settingsData{Settings: st})
}
