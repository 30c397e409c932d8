package session

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/domain"
)

func TestLoopRoles(t *testing.T) {
	active := domain.Loop{Phase: domain.LoopActive, StartEntryID: "a", EndEntryID: "b", Start: 10, End: 20}
	pending := domain.Loop{Phase: domain.LoopPending, PendingStartID: "a"}

	tests := []struct {
		name string
		loop domain.Loop
		id   string
		want string
	}{
		{"start", active, "a", RoleStart},
		{"end", active, "b", RoleEnd},
		{"other", active, "c", ""},
		{"pending", pending, "a", RolePending},
		{"idle", domain.Loop{}, "a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loopRole(tt.loop, tt.id); got != tt.want {
				t.Errorf("loopRole() = %q, want %q", got, tt.want)
			}
		})
	}

	lv := newLoopView(active)
	if lv.State != "active" || lv.Start == nil || *lv.Start != 10 || *lv.End != 20 || lv.PendingStartID != "" {
		t.Errorf("newLoopView(active) = %+v", lv)
	}
	lv = newLoopView(pending)
	if lv.State != "pending" || lv.Start != nil || lv.PendingStartID != "a" {
		t.Errorf("newLoopView(pending) = %+v", lv)
	}
}

func TestConfirmGuard(t *testing.T) {
	g := newConfirmGuard(20 * time.Millisecond)
	defer g.stop()

	if g.confirm("a") {
		t.Fatal("first confirm should only arm")
	}
	if !g.armed("a") || g.armed("b") {
		t.Fatal("only a should be armed")
	}
	if !g.confirm("a") {
		t.Fatal("second confirm inside the window should confirm")
	}
	if g.armed("a") {
		t.Fatal("confirmed key should be disarmed")
	}

	g.confirm("b")
	time.Sleep(60 * time.Millisecond)
	if g.armed("b") {
		t.Fatal("window should have expired")
	}

	g.confirm("c")
	g.cancel("c")
	if g.confirm("c") {
		t.Fatal("cancelled key must re-arm, not confirm")
	}
}
