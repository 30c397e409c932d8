package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidPosition is returned when a playback position is not a usable
	// number of seconds (NaN, infinite or negative).
	ErrInvalidPosition = errors.New("invalid playback position")

	// ErrNothingToExport is returned when exporting an empty collection.
	ErrNothingToExport = errors.New("no timestamps to export")

	// ErrInvalidCopyMode is returned for an unknown export mode.
	ErrInvalidCopyMode = errors.New("invalid copy mode")
)

// Mark is a single bookmarked moment of a watched resource.
type Mark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated at creation and never reused.
	ID string `json:"id"`

	// Seconds is the whole-second playback position the mark was taken at.
	Seconds int `json:"seconds"`

	// DisplayTime is FormatTime(Seconds), computed once at creation.
	DisplayTime string `json:"displayTime"`

	// ─────────────────────────────
	// User data (mutable)
	// ─────────────────────────────

	// Label is free text, possibly empty.
	Label string `json:"label"`
}

// TruncateSeconds converts a raw player position into whole seconds.
func TruncateSeconds(position float64) (int, error) {
	if math.IsNaN(position) || math.IsInf(position, 0) || position < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPosition, position)
	}
	return int(math.Floor(position)), nil
}

// FormatTime renders seconds as "m:ss", or "h:mm:ss" from one hour on.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
