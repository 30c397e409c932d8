// Package session keeps the active resource's collection and loop, applies
// user actions to them and hands durable snapshots to the persist queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/idgen"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/player"
	"github.com/MrSnakeDoc/stamp/internal/store"
)

var (
	// ErrNoResource is returned for an empty resource identifier.
	ErrNoResource = errors.New("resource id is required")
	// ErrResourceChanged is returned when the resource was switched while
	// an action for the previous one was in flight.
	ErrResourceChanged = errors.New("active resource changed")
)

// Persister accepts snapshots for asynchronous, in-order durable writes.
// Latest returns the newest snapshot for a resource that the gateway has
// not stored yet.
type Persister interface {
	Enqueue(resourceID string, snap domain.Snapshot)
	Latest(resourceID string) (domain.Snapshot, bool)
}

// Reporter receives state reports from the page's player.
type Reporter interface {
	Update(rep player.Report)
}

// DeleteOutcome tells the caller what a delete request did.
type DeleteOutcome int

const (
	DeleteIgnored DeleteOutcome = iota // unknown mark
	DeleteArmed                        // first click, waiting for confirmation
	DeleteDone                         // mark removed
)

// Options wires a Manager.
type Options struct {
	Gateway       store.Gateway
	Player        player.TimeSource
	Reports       Reporter              // optional, usually the same remote as Player
	Persister     Persister
	Renderer      Renderer              // optional
	Logger        logger.Logger         // optional
	IDs           idgen.Generator       // optional, defaults to UUIDv7
	ConfirmWindow time.Duration         // optional, defaults to 2s
	VideoBaseURL  string                // export URL prefix
	OnSwitch      func(from, to string) // optional, called after a resource swap
}

// Manager owns the single active Session and the global settings.
// All state changes happen under one lock, so HTTP handlers and the loop
// monitor observe either the old or the new resource, never a mix.
type Manager struct {
	gateway   store.Gateway
	player    player.TimeSource
	reports   Reporter
	persister Persister
	renderer  Renderer
	logger    logger.Logger
	ids       idgen.Generator
	window    time.Duration
	baseURL   string
	onSwitch  func(from, to string)

	mu       sync.Mutex
	active   *Session
	defaults domain.Settings
	stored   *domain.SettingsPatch
	saves    uint64 // bumped by SaveSettings
}

// NewManager creates a Manager with no active resource.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.IDs == nil {
		opts.IDs = idgen.UUIDv7()
	}
	if opts.ConfirmWindow <= 0 {
		opts.ConfirmWindow = 2 * time.Second
	}
	if opts.Renderer == nil {
		opts.Renderer = RendererFunc(func(View) {})
	}
	return &Manager{
		gateway:   opts.Gateway,
		player:    opts.Player,
		reports:   opts.Reports,
		persister: opts.Persister,
		renderer:  opts.Renderer,
		logger:    opts.Logger,
		ids:       opts.IDs,
		window:    opts.ConfirmWindow,
		baseURL:   opts.VideoBaseURL,
		onSwitch:  opts.OnSwitch,
		defaults:  domain.DefaultSettings(),
	}
}

// ─────────────────────────────────────────────────────────────────
// Resource lifecycle
// ─────────────────────────────────────────────────────────────────

// Open makes resourceID the active resource, hydrating it from the gateway
// if it is not already active. The previous session is discarded whole.
func (m *Manager) Open(ctx context.Context, resourceID string) error {
	if resourceID == "" {
		return ErrNoResource
	}

	m.mu.Lock()
	current := m.active
	m.mu.Unlock()
	if current != nil && current.resourceID == resourceID {
		return nil
	}

	// Gateway I/O happens outside the lock; the swap below is atomic.
	sess := m.hydrate(ctx, resourceID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && m.active.resourceID == resourceID {
		sess.close()
		return nil
	}

	from := ""
	if m.active != nil {
		from = m.active.resourceID
		m.active.close()
	}
	m.active = sess

	m.logger.Info("resource opened",
		logger.String("resource_id", resourceID),
		logger.String("previous", from),
		logger.Int("marks", sess.marks.Len()))

	if m.onSwitch != nil {
		m.onSwitch(from, resourceID)
	}
	m.renderer.Render(sess.view(m.settingsLocked(), ""))
	return nil
}

// hydrate prefers a snapshot still waiting in the persister over the
// gateway copy. The persister is asked first: once it reports nothing
// pending, the gateway already holds the last write.
func (m *Manager) hydrate(ctx context.Context, resourceID string) *Session {
	var snap *domain.Snapshot
	if m.persister != nil {
		if pending, ok := m.persister.Latest(resourceID); ok {
			m.logger.Debug("hydrating from unwritten snapshot",
				logger.String("resource_id", resourceID))
			snap = &pending
		}
	}
	if snap == nil && m.gateway != nil {
		var err error
		snap, err = m.gateway.GetSnapshot(ctx, resourceID)
		if err != nil {
			m.logger.Warn("failed to load snapshot, starting empty",
				logger.String("resource_id", resourceID),
				logger.Error(err))
			snap = nil
		}
	}
	if snap != nil && !snap.Valid() {
		m.logger.Warn("ignoring malformed snapshot",
			logger.String("resource_id", resourceID))
		snap = nil
	}
	return newSession(resourceID, snap, m.ids, m.window, m.logger)
}

// Active returns the active resource ID, or "" if none.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return ""
	}
	return m.active.resourceID
}

// Close discards the active session and its pending timers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.active.close()
		m.active = nil
	}
}

// with runs fn against the session of resourceID while holding the lock.
// fn reports whether durable state changed; if so the snapshot is queued.
// Every call ends with a render.
func (m *Manager) with(ctx context.Context, resourceID string, fn func(s *Session) (changed bool, notice string, err error)) (View, error) {
	if err := m.Open(ctx, resourceID); err != nil {
		return View{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.active
	if sess == nil || sess.resourceID != resourceID {
		return View{}, ErrResourceChanged
	}

	changed, notice, err := fn(sess)
	if changed {
		m.persistLocked(sess)
	}
	v := sess.view(m.settingsLocked(), notice)
	m.renderer.Render(v)
	return v, err
}

func (m *Manager) persistLocked(sess *Session) {
	if m.persister == nil {
		return
	}
	m.persister.Enqueue(sess.resourceID, sess.marks.Snapshot())
}

// Report opens resourceID if needed and hands the player report over while
// the session is still the active one. A report that loses a race with a
// resource switch is dropped with ErrResourceChanged.
func (m *Manager) Report(ctx context.Context, resourceID string, rep player.Report) error {
	if err := m.Open(ctx, resourceID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.resourceID != resourceID {
		return ErrResourceChanged
	}
	if m.reports != nil {
		m.reports.Update(rep)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// User actions
// ─────────────────────────────────────────────────────────────────

// View opens resourceID if needed and returns its current view.
func (m *Manager) View(ctx context.Context, resourceID string) (View, error) {
	return m.with(ctx, resourceID, func(*Session) (bool, string, error) {
		return false, "", nil
	})
}

// AddMark adds a mark at position, or at the time source's current position
// when position is nil.
func (m *Manager) AddMark(ctx context.Context, resourceID, label string, position *float64) (domain.Mark, View, error) {
	var added domain.Mark
	v, err := m.with(ctx, resourceID, func(s *Session) (bool, string, error) {
		pos, err := m.position(position)
		if err != nil {
			return false, "", err
		}
		mark, err := s.add(pos, strings.TrimSpace(label))
		if err != nil {
			return false, "", err
		}
		added = mark
		return true, "", nil
	})
	return added, v, err
}

func (m *Manager) position(explicit *float64) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if m.player == nil {
		return 0, player.ErrUnavailable
	}
	pos, err := m.player.CurrentTime()
	if err != nil {
		return 0, fmt.Errorf("could not get current time: %w", err)
	}
	return pos, nil
}

// EditMark changes a mark's label. Unknown marks and unchanged labels are
// no-ops and are not persisted.
func (m *Manager) EditMark(ctx context.Context, resourceID, id, label string) (View, error) {
	return m.with(ctx, resourceID, func(s *Session) (bool, string, error) {
		return s.edit(id, strings.TrimSpace(label)), "", nil
	})
}

// DeleteMark removes a mark on the second request inside the confirmation
// window, or immediately when force is set.
func (m *Manager) DeleteMark(ctx context.Context, resourceID, id string, force bool) (DeleteOutcome, View, error) {
	outcome := DeleteIgnored
	v, err := m.with(ctx, resourceID, func(s *Session) (bool, string, error) {
		if _, ok := s.marks.Get(id); !ok {
			return false, "", nil
		}
		if !force && !s.deletes.confirm(id) {
			outcome = DeleteArmed
			return false, "", nil
		}
		outcome = DeleteDone
		return s.remove(id), "", nil
	})
	return outcome, v, err
}

// Reorder applies a final ordering reported by the reordering surface.
func (m *Manager) Reorder(ctx context.Context, resourceID string, ids []string) (View, error) {
	return m.with(ctx, resourceID, func(s *Session) (bool, string, error) {
		s.reorder(ids)
		return true, "", nil
	})
}

// ToggleLoop is the loop button of a mark. The loop is runtime-only, so
// nothing is persisted; a failed selection is reported in View.Notice.
func (m *Manager) ToggleLoop(ctx context.Context, resourceID, id string) (View, error) {
	return m.with(ctx, resourceID, func(s *Session) (bool, string, error) {
		return false, s.toggleLoop(id, m.timeSource()), nil
	})
}

// Jump moves playback to a mark and plays or pauses per settings.
func (m *Manager) Jump(ctx context.Context, resourceID, id string) (View, error) {
	return m.with(ctx, resourceID, func(s *Session) (bool, string, error) {
		autoPlay := m.settingsLocked().AutoPlayOnJump
		if _, err := s.jump(id, autoPlay, m.timeSource()); err != nil {
			return false, "", err
		}
		return false, "", nil
	})
}

// Export renders the collection as text lines. An empty mode uses the
// copy mode from settings.
func (m *Manager) Export(ctx context.Context, resourceID, title string, mode domain.CopyMode) ([]string, error) {
	var lines []string
	_, err := m.with(ctx, resourceID, func(s *Session) (bool, string, error) {
		if mode == "" {
			mode = m.settingsLocked().CopyMode
		}
		var err error
		lines, err = domain.ExportLines(s.marks.Marks(), mode, domain.ExportMeta{
			Title:    strings.TrimSpace(title),
			VideoURL: m.baseURL + resourceID,
		})
		return false, "", err
	})
	return lines, err
}

// Tick is one loop monitor step against the active session.
func (m *Manager) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return
	}
	m.active.tick(m.timeSource())
}

func (m *Manager) timeSource() player.TimeSource {
	if m.player == nil {
		return unavailable{}
	}
	return m.player
}

// unavailable is the time source used when none is wired.
type unavailable struct{}

func (unavailable) CurrentTime() (float64, error) { return 0, player.ErrUnavailable }
func (unavailable) Paused() (bool, error)         { return false, player.ErrUnavailable }
func (unavailable) Seek(float64) error            { return player.ErrUnavailable }
func (unavailable) Play() error                   { return player.ErrUnavailable }
func (unavailable) Pause() error                  { return player.ErrUnavailable }
