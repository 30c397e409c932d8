package player

import (
	"math"
	"sync"
	"time"
)

// Op is a playback instruction the page must apply to its media element.
type Op string

const (
	OpSeek  Op = "seek"
	OpPlay  Op = "play"
	OpPause Op = "pause"
)

// Command is a queued playback instruction.
type Command struct {
	Op      Op      `json:"op"`
	Seconds float64 `json:"seconds,omitempty"`
}

// Report is the player state posted by the page.
type Report struct {
	Ready    bool    `json:"ready"`
	Position float64 `json:"position"`
	Paused   bool    `json:"paused"`
}

// Remote is a TimeSource backed by state the page reports over HTTP.
// Between reports the position is extrapolated while playing. Seek, Play and
// Pause update the local view immediately and queue a Command for the page.
type Remote struct {
	mu         sync.Mutex
	ready      bool
	position   float64
	paused     bool
	reportedAt time.Time
	commands   []Command
	now        func() time.Time
}

// NewRemote creates a Remote that is unavailable until the first report.
func NewRemote(now func() time.Time) *Remote {
	if now == nil {
		now = time.Now
	}
	return &Remote{now: now, paused: true}
}

// Update records a state report from the page.
func (r *Remote) Update(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !rep.Ready || math.IsNaN(rep.Position) || math.IsInf(rep.Position, 0) {
		r.ready = false
		return
	}
	r.ready = true
	r.position = rep.Position
	r.paused = rep.Paused
	r.reportedAt = r.now()
}

// Reset forgets the element, e.g. after navigating to another resource.
func (r *Remote) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ready = false
	r.position = 0
	r.paused = true
	r.commands = nil
}

// Drain returns and clears the queued commands.
func (r *Remote) Drain() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmds := r.commands
	r.commands = nil
	if cmds == nil {
		cmds = []Command{}
	}
	return cmds
}

func (r *Remote) CurrentTime() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return 0, ErrUnavailable
	}
	return r.currentLocked(), nil
}

func (r *Remote) Paused() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return false, ErrUnavailable
	}
	return r.paused, nil
}

func (r *Remote) Seek(seconds float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrUnavailable
	}
	r.position = seconds
	r.reportedAt = r.now()
	r.commands = append(r.commands, Command{Op: OpSeek, Seconds: seconds})
	return nil
}

func (r *Remote) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrUnavailable
	}
	r.position = r.currentLocked()
	r.reportedAt = r.now()
	r.paused = false
	r.commands = append(r.commands, Command{Op: OpPlay})
	return nil
}

func (r *Remote) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrUnavailable
	}
	r.position = r.currentLocked()
	r.reportedAt = r.now()
	r.paused = true
	r.commands = append(r.commands, Command{Op: OpPause})
	return nil
}

func (r *Remote) currentLocked() float64 {
	if r.paused {
		return r.position
	}
	return r.position + r.now().Sub(r.reportedAt).Seconds()
}
