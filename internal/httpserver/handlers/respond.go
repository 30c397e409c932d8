package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/httpserver/deps"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/player"
	"github.com/MrSnakeDoc/stamp/internal/session"
)

const maxBodyBytes = 64 << 10

// Messages shown by the panel
const (
	msgVideoNotFound = "Video not found"
	msgNothingToCopy = "No timestamps to copy"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeError maps domain and session errors to HTTP statuses.
func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	status, msg := http.StatusInternalServerError, "internal error"

	switch {
	case errors.Is(err, player.ErrUnavailable):
		status, msg = http.StatusConflict, msgVideoNotFound
	case errors.Is(err, session.ErrResourceChanged):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrNothingToExport):
		status, msg = http.StatusUnprocessableEntity, msgNothingToCopy
	case errors.Is(err, session.ErrNoResource),
		errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidCopyMode):
		status, msg = http.StatusBadRequest, err.Error()
	}

	if status == http.StatusInternalServerError {
		d.Logger.Error("request failed", logger.Error(err))
	} else {
		d.Logger.Debug("request rejected",
			logger.Int("status", status),
			logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
