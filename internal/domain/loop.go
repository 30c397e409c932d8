package domain

import "math"

// LoopRangeError is the message shown when two marks cannot bound a loop.
const LoopRangeError = "Cannot determine loop range"

// LoopPhase is the state tag of the A/B loop controller.
type LoopPhase int

const (
	// LoopIdle: no point selected, nothing looping.
	LoopIdle LoopPhase = iota
	// LoopPending: a mark is selected as the tentative A point.
	LoopPending
	// LoopActive: playback repeats between Start and End.
	LoopActive
)

func (p LoopPhase) String() string {
	switch p {
	case LoopPending:
		return "pending"
	case LoopActive:
		return "active"
	default:
		return "idle"
	}
}

// Loop is the runtime-only A/B loop state. Fields are only meaningful for
// their phase: PendingStartID while Pending, the rest while Active.
type Loop struct {
	Phase          LoopPhase
	PendingStartID string
	StartEntryID   string
	EndEntryID     string
	Start          int
	End            int
}

// Active reports whether a loop is currently playing.
func (l Loop) Active() bool { return l.Phase == LoopActive }

// Invalidates reports whether removing the mark id leaves a dangling
// reference in the loop.
func (l Loop) Invalidates(id string) bool {
	switch l.Phase {
	case LoopPending:
		return l.PendingStartID == id
	case LoopActive:
		return l.StartEntryID == id || l.EndEntryID == id
	default:
		return false
	}
}

// EffectKind names a side effect requested from the time source or the user.
type EffectKind int

const (
	EffectSeek EffectKind = iota
	EffectPlay
	EffectError
)

// Effect is an action the caller must carry out after a transition.
type Effect struct {
	Kind    EffectKind
	Seconds float64
	Message string
}

func seek(seconds int) Effect { return Effect{Kind: EffectSeek, Seconds: float64(seconds)} }

// MarkLookup resolves a mark id.
type MarkLookup func(id string) (Mark, bool)

// ToggleLoop applies the "toggle loop on mark id" action.
//
//	Active  + id is the start      -> Idle
//	Idle    + any id               -> Pending(id)
//	Pending + same id              -> Idle
//	Pending + other id             -> Active(A,B) or Idle with an error effect
//	Active  + any other id         -> unchanged
func ToggleLoop(l Loop, id string, lookup MarkLookup) (Loop, []Effect) {
	switch l.Phase {
	case LoopActive:
		if l.StartEntryID == id {
			return Loop{}, nil
		}
		return l, nil

	case LoopPending:
		if l.PendingStartID == id {
			return Loop{}, nil
		}
		return establish(l.PendingStartID, id, lookup)

	default:
		return Loop{Phase: LoopPending, PendingStartID: id}, nil
	}
}

// establish builds an active loop from two marks, earlier one first.
func establish(aID, bID string, lookup MarkLookup) (Loop, []Effect) {
	a, okA := lookup(aID)
	b, okB := lookup(bID)
	if !okA || !okB {
		return Loop{}, []Effect{{Kind: EffectError, Message: LoopRangeError}}
	}
	if a.Seconds > b.Seconds {
		a, b = b, a
	}
	if b.Seconds <= a.Seconds {
		return Loop{}, []Effect{{Kind: EffectError, Message: LoopRangeError}}
	}

	l := Loop{
		Phase:        LoopActive,
		StartEntryID: a.ID,
		EndEntryID:   b.ID,
		Start:        a.Seconds,
		End:          b.Seconds,
	}
	return l, []Effect{seek(l.Start), {Kind: EffectPlay}}
}

// CheckLoop is one tick of the loop monitor: once playback reaches End it
// goes back to Start, resuming if paused. Unusable positions are ignored.
func CheckLoop(l Loop, position float64, paused bool) []Effect {
	if l.Phase != LoopActive {
		return nil
	}
	if math.IsNaN(position) || math.IsInf(position, 0) {
		return nil
	}
	if position < float64(l.End) {
		return nil
	}
	effects := []Effect{seek(l.Start)}
	if paused {
		effects = append(effects, Effect{Kind: EffectPlay})
	}
	return effects
}
