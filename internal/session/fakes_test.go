package session

import (
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/player"
)

type fakePlayer struct {
	mu          sync.Mutex
	pos         float64
	paused      bool
	unavailable bool
	calls       []string
}

func (p *fakePlayer) CurrentTime() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return 0, player.ErrUnavailable
	}
	return p.pos, nil
}

func (p *fakePlayer) Paused() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return false, player.ErrUnavailable
	}
	return p.paused, nil
}

func (p *fakePlayer) Seek(s float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return player.ErrUnavailable
	}
	p.pos = s
	p.calls = append(p.calls, fmt.Sprintf("seek %g", s))
	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return player.ErrUnavailable
	}
	p.paused = false
	p.calls = append(p.calls, "play")
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unavailable {
		return player.ErrUnavailable
	}
	p.paused = true
	p.calls = append(p.calls, "pause")
	return nil
}

func (p *fakePlayer) takeCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.calls
	p.calls = nil
	return c
}

type enqueued struct {
	resourceID string
	snap       domain.Snapshot
}

type recordingPersister struct {
	mu    sync.Mutex
	saved []enqueued
}

func (r *recordingPersister) Enqueue(resourceID string, snap domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, enqueued{resourceID, snap})
}

func (r *recordingPersister) all() []enqueued {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]enqueued(nil), r.saved...)
}

// Latest behaves like a queue that never drains.
func (r *recordingPersister) Latest(resourceID string) (domain.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].resourceID == resourceID {
			return r.saved[i].snap, true
		}
	}
	return domain.Snapshot{}, false
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []player.Report
}

func (r *recordingReporter) Update(rep player.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func (r *recordingReporter) all() []player.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]player.Report(nil), r.reports...)
}
