package session

import (
	"errors"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/idgen"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/player"
)

// Session is the state of one watched resource: its marks, the runtime
// loop and pending delete confirmations. It is not safe for concurrent use;
// the Manager serialises access.
type Session struct {
	resourceID string
	marks      *domain.Collection
	loop       domain.Loop
	deletes    *confirmGuard
	logger     logger.Logger
}

func newSession(resourceID string, snap *domain.Snapshot, gen idgen.Generator, window time.Duration, log logger.Logger) *Session {
	return &Session{
		resourceID: resourceID,
		marks:      domain.FromSnapshot(snap, gen),
		deletes:    newConfirmGuard(window),
		logger:     log,
	}
}

func (s *Session) add(position float64, label string) (domain.Mark, error) {
	return s.marks.Add(position, label)
}

func (s *Session) edit(id, label string) bool {
	return s.marks.Edit(id, label)
}

// remove deletes a mark, resetting the loop first if it references it.
func (s *Session) remove(id string) bool {
	if _, ok := s.marks.Get(id); !ok {
		return false
	}
	if s.loop.Invalidates(id) {
		s.logger.Debug("loop reset by mark deletion",
			logger.String("resource_id", s.resourceID),
			logger.String("mark_id", id))
		s.loop = domain.Loop{}
	}
	s.deletes.cancel(id)
	return s.marks.Remove(id)
}

func (s *Session) reorder(ids []string) {
	s.marks.Reorder(ids)
}

// toggleLoop runs the loop transition for a mark and applies its effects.
// It returns the user-facing error message, if any. Unknown marks are a
// silent no-op.
func (s *Session) toggleLoop(id string, ts player.TimeSource) string {
	if _, ok := s.marks.Get(id); !ok {
		return ""
	}
	next, effects := domain.ToggleLoop(s.loop, id, s.marks.Get)
	s.logger.Debug("loop transition",
		logger.String("resource_id", s.resourceID),
		logger.String("mark_id", id),
		logger.String("from", s.loop.Phase.String()),
		logger.String("to", next.Phase.String()))
	s.loop = next
	return s.apply(effects, ts)
}

// jump seeks to a mark, then plays or pauses according to autoPlay.
func (s *Session) jump(id string, autoPlay bool, ts player.TimeSource) (bool, error) {
	m, ok := s.marks.Get(id)
	if !ok {
		return false, nil
	}
	if err := ts.Seek(float64(m.Seconds)); err != nil {
		return false, err
	}
	if autoPlay {
		return true, ts.Play()
	}
	return true, ts.Pause()
}

// tick is one loop monitor step. It re-reads the loop phase on every call.
func (s *Session) tick(ts player.TimeSource) {
	if !s.loop.Active() {
		return
	}
	pos, err := ts.CurrentTime()
	if err != nil {
		return
	}
	paused, err := ts.Paused()
	if err != nil {
		return
	}
	s.apply(domain.CheckLoop(s.loop, pos, paused), ts)
}

func (s *Session) apply(effects []domain.Effect, ts player.TimeSource) string {
	var notice string
	for _, e := range effects {
		var err error
		switch e.Kind {
		case domain.EffectSeek:
			err = ts.Seek(e.Seconds)
		case domain.EffectPlay:
			err = ts.Play()
		case domain.EffectError:
			notice = e.Message
		}
		if err != nil && !errors.Is(err, player.ErrUnavailable) {
			s.logger.Warn("player command failed",
				logger.String("resource_id", s.resourceID),
				logger.Error(err))
		}
	}
	return notice
}

func (s *Session) view(settings domain.Settings, notice string) View {
	marks := s.marks.Marks()
	rows := make([]MarkView, 0, len(marks))
	for _, m := range marks {
		rows = append(rows, MarkView{
			Mark:          m,
			LoopRole:      loopRole(s.loop, m.ID),
			ConfirmDelete: s.deletes.armed(m.ID),
		})
	}
	return View{
		ResourceID: s.resourceID,
		Marks:      rows,
		Loop:       newLoopView(s.loop),
		Settings:   settings,
		Notice:     notice,
	}
}

func (s *Session) close() {
	s.deletes.stop()
}
