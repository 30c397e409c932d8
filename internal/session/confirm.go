package session

import (
	"sync"
	"time"
)

// confirmGuard implements two-step destructive actions: the first request
// for a key arms a window, a second one inside the window confirms. Each key
// has its own timer, cancelled when confirmed or superseded.
type confirmGuard struct {
	window time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newConfirmGuard(window time.Duration) *confirmGuard {
	return &confirmGuard{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// confirm returns true if key was armed and the window is still open.
// Otherwise it arms the window and returns false.
func (g *confirmGuard) confirm(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t, ok := g.timers[key]; ok {
		t.Stop()
		delete(g.timers, key)
		return true
	}

	var t *time.Timer
	t = time.AfterFunc(g.window, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.timers[key] == t {
			delete(g.timers, key)
		}
	})
	g.timers[key] = t
	return false
}

func (g *confirmGuard) armed(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.timers[key]
	return ok
}

func (g *confirmGuard) cancel(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t, ok := g.timers[key]; ok {
		t.Stop()
		delete(g.timers, key)
	}
}

func (g *confirmGuard) stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for key, t := range g.timers {
		t.Stop()
		delete(g.timers, key)
	}
}
