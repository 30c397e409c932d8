package session

import "github.com/MrSnakeDoc/stamp/internal/domain"

// Loop roles of a mark in the rendered list.
const (
	RolePending = "pending"
	RoleStart   = "start"
	RoleEnd     = "end"
)

// View is what the render sink draws: the collection in display order, the
// loop state, the settings in effect and an optional transient notice.
type View struct {
	ResourceID string          `json:"resourceId"`
	Marks      []MarkView      `json:"marks"`
	Loop       LoopView        `json:"loop"`
	Settings   domain.Settings `json:"settings"`
	Notice     string          `json:"error,omitempty"`
}

// MarkView is a mark plus its per-row UI state.
type MarkView struct {
	domain.Mark
	LoopRole      string `json:"loopRole,omitempty"`
	ConfirmDelete bool   `json:"confirmDelete,omitempty"`
}

// LoopView is the JSON shape of the loop state.
type LoopView struct {
	State          string `json:"state"`
	PendingStartID string `json:"pendingStartId,omitempty"`
	StartEntryID   string `json:"startEntryId,omitempty"`
	EndEntryID     string `json:"endEntryId,omitempty"`
	Start          *int   `json:"start,omitempty"`
	End            *int   `json:"end,omitempty"`
}

// Renderer receives a fresh View after every state change.
type Renderer interface {
	Render(View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(View)

func (f RendererFunc) Render(v View) { f(v) }

func newLoopView(l domain.Loop) LoopView {
	lv := LoopView{State: l.Phase.String()}
	switch l.Phase {
	case domain.LoopPending:
		lv.PendingStartID = l.PendingStartID
	case domain.LoopActive:
		start, end := l.Start, l.End
		lv.StartEntryID = l.StartEntryID
		lv.EndEntryID = l.EndEntryID
		lv.Start = &start
		lv.End = &end
	}
	return lv
}

func loopRole(l domain.Loop, id string) string {
	switch {
	case l.Phase == domain.LoopActive && l.StartEntryID == id:
		return RoleStart
	case l.Phase == domain.LoopActive && l.EndEntryID == id:
		return RoleEnd
	case l.Phase == domain.LoopPending && l.PendingStartID == id:
		return RolePending
	}
	return ""
}
