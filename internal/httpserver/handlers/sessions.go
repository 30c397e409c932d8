package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/httpserver/deps"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/session"
)

type listResponse struct {
	Resources []string `json:"resources"`
	Active    string   `json:"active,omitempty"`
}

type addMarkRequest struct {
	Label   string   `json:"label"`
	Seconds *float64 `json:"seconds,omitempty"`
}

type addMarkResponse struct {
	Mark domain.Mark  `json:"mark"`
	View session.View `json:"view"`
}

type editMarkRequest struct {
	Label string `json:"label"`
}

type deleteMarkResponse struct {
	Result string       `json:"result"` // "pending" | "deleted" | "ignored"
	View   session.View `json:"view"`
}

type reorderRequest struct {
	Order []string `json:"order"`
}

type exportResponse struct {
	Mode  domain.CopyMode `json:"mode"`
	Lines []string        `json:"lines"`
	Text  string          `json:"text"`
}

func resourceID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "resourceID"))
}

func markID(r *http.Request) string {
	return chi.URLParam(r, "markID")
}

// ListSessions lists every resource with stored marks
func ListSessions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := d.Gateway.ListResources(r.Context())
		if err != nil {
			writeError(w, d, err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, listResponse{Resources: ids, Active: d.Sessions.Active()})
	}
}

// GetSession opens the resource, hydrating it on first visit, and returns its view
func GetSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := d.Sessions.View(r.Context(), resourceID(r))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// AddMark records a mark at the given or current playback position
func AddMark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addMarkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}

		mark, v, err := d.Sessions.AddMark(r.Context(), resourceID(r), req.Label, req.Seconds)
		if err != nil {
			writeError(w, d, err)
			return
		}

		d.Logger.Info("mark added",
			logger.String("resource_id", v.ResourceID),
			logger.String("mark_id", mark.ID),
			logger.Int("seconds", mark.Seconds))
		writeJSON(w, http.StatusCreated, addMarkResponse{Mark: mark, View: v})
	}
}

// EditMark changes a mark's label
func EditMark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editMarkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}

		v, err := d.Sessions.EditMark(r.Context(), resourceID(r), markID(r), req.Label)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// DeleteMark is the two-click delete; ?force=true skips the confirmation
func DeleteMark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

		outcome, v, err := d.Sessions.DeleteMark(r.Context(), resourceID(r), markID(r), force)
		if err != nil {
			writeError(w, d, err)
			return
		}

		resp := deleteMarkResponse{View: v}
		status := http.StatusOK
		switch outcome {
		case session.DeleteArmed:
			resp.Result = "pending"
			status = http.StatusAccepted
		case session.DeleteDone:
			resp.Result = "deleted"
		default:
			resp.Result = "ignored"
		}
		writeJSON(w, status, resp)
	}
}

// ToggleLoop is the loop button of a mark
func ToggleLoop(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := d.Sessions.ToggleLoop(r.Context(), resourceID(r), markID(r))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// Jump moves playback to a mark
func Jump(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := d.Sessions.Jump(r.Context(), resourceID(r), markID(r))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// Reorder applies the final ordering reported after a drag
func Reorder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err)
			return
		}

		v, err := d.Sessions.Reorder(r.Context(), resourceID(r), req.Order)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// Export renders the marks as clipboard text (?title=&mode=)
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mode := domain.CopyMode(q.Get("mode"))
		if mode == "" {
			mode = d.Sessions.Settings().CopyMode
		}

		lines, err := d.Sessions.Export(r.Context(), resourceID(r), q.Get("title"), mode)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, exportResponse{
			Mode:  mode,
			Lines: lines,
			Text:  strings.Join(lines, "\n"),
		})
	}
}
