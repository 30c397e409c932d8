package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Mode    string `json:"mode,omitempty"`
	Pending *int   `json:"pending,omitempty"`
	Active  string `json:"active,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":   checkStore(r.Context(), d),
			"queue":   checkQueue(d),
			"player":  checkPlayer(d),
			"session": {OK: true, Active: d.Sessions.Active()},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Marks cannot be saved
	if store, exists := components["store"]; exists && !store.OK {
		return "critical"
	}

	// Writes pile up or the page is not reporting
	if queue, exists := components["queue"]; exists && !queue.OK {
		return "degraded"
	}
	if p, exists := components["player"]; exists && !p.OK {
		return "degraded"
	}

	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Gateway == nil {
		return componentStatus{OK: false, Error: "store not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := d.Gateway.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreBackend,
			Impact: "marks-not-persisted",
			Error:  "unreachable",
		}
	}

	return componentStatus{OK: true, Mode: d.StoreBackend}
}

// queueBacklogWarn is the backlog above which writes are considered stuck
const queueBacklogWarn = 100

func checkQueue(d deps.Deps) componentStatus {
	if d.Queue == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	pending := d.Queue.Pending()
	st := componentStatus{OK: pending < queueBacklogWarn, Pending: &pending}
	if !st.OK {
		st.Impact = "writes-delayed"
	}
	return st
}

func checkPlayer(d deps.Deps) componentStatus {
	if d.Player == nil {
		return componentStatus{OK: false, Error: "player not initialized"}
	}
	if _, err := d.Player.CurrentTime(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "waiting",
			Impact: "add-jump-loop-unavailable",
			Error:  msgVideoNotFound,
		}
	}
	return componentStatus{OK: true, Mode: "reporting"}
}
