package domain

import (
	"fmt"
	"strings"
)

// ExportMeta describes the watched resource for link-bearing exports.
type ExportMeta struct {
	Title    string // page title, optional
	VideoURL string // canonical resource URL
}

// TimestampURL returns the resource URL that starts playback at seconds.
func TimestampURL(videoURL string, seconds int) string {
	sep := "&"
	if !strings.Contains(videoURL, "?") {
		sep = "?"
	}
	return fmt.Sprintf("%s%st=%ds", videoURL, sep, seconds)
}

// ExportLines renders the marks in display order as text lines.
func ExportLines(marks []Mark, mode CopyMode, meta ExportMeta) ([]string, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCopyMode, mode)
	}
	if len(marks) == 0 {
		return nil, ErrNothingToExport
	}

	lines := make([]string, 0, len(marks)+3)
	if mode == CopyTitleURLAndTimestamps {
		if meta.Title != "" {
			lines = append(lines, "【"+meta.Title+"】")
		}
		lines = append(lines, meta.VideoURL, "")
	}

	for _, m := range marks {
		text := strings.TrimSpace(m.DisplayTime + " " + m.Label)
		if mode == CopyTimestampsOnly {
			lines = append(lines, text)
			continue
		}
		lines = append(lines, text+" - "+TimestampURL(meta.VideoURL, m.Seconds))
	}

	return lines, nil
}
