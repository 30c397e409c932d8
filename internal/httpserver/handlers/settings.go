package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/httpserver/deps"
)

// GetSettings returns the settings in effect
func GetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Sessions.Settings())
	}
}

// PutSettings merges the request over the current settings and stores them
func PutSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.SettingsPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			badRequest(w, err)
			return
		}
		if patch.CopyMode != nil && !patch.CopyMode.Valid() {
			writeError(w, d, domain.ErrInvalidCopyMode)
			return
		}

		saved, err := d.Sessions.SaveSettings(r.Context(), patch.Apply(d.Sessions.Settings()))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}
