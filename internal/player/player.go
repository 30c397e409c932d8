// Package player models the host page's media element as a narrow capability.
package player

import "errors"

// ErrUnavailable is returned while the media element is missing or not ready.
var ErrUnavailable = errors.New("video not available")

// TimeSource reads and drives the playback position of the watched resource.
type TimeSource interface {
	CurrentTime() (float64, error)
	Paused() (bool, error)
	Seek(seconds float64) error
	Play() error
	Pause() error
}
