package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/stamp/internal/httpserver/deps"
	"github.com/MrSnakeDoc/stamp/internal/player"
)

type commandsResponse struct {
	Commands []player.Command `json:"commands"`
}

// ReportPlayer records the page's player state. A report for another
// resource than the active one switches the session first.
func ReportPlayer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rep player.Report
		if err := decodeJSON(w, r, &rep); err != nil {
			badRequest(w, err)
			return
		}

		if err := d.Sessions.Report(r.Context(), resourceID(r), rep); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PlayerCommands hands the queued seek/play/pause commands to the page
func PlayerCommands(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Sessions.Active() != resourceID(r) {
			writeJSON(w, http.StatusOK, commandsResponse{Commands: []player.Command{}})
			return
		}
		writeJSON(w, http.StatusOK, commandsResponse{Commands: d.Player.Drain()})
	}
}
