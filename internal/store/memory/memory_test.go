package memory

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/MrSnakeDoc/stamp/internal/domain"
)

func TestNewStore(t *testing.T) {
	s := NewStore()
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	if s.Count() != 0 {
		t.Errorf("NewStore() should start empty, got %d", s.Count())
	}
	snap, err := s.GetSnapshot(context.Background(), "missing")
	if err != nil || snap != nil {
		t.Errorf("GetSnapshot(missing) = %v, %v; want nil, nil", snap, err)
	}
}

func TestSnapshotIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	snap := domain.Snapshot{
		Entries: map[string]domain.Mark{"a": {ID: "a", Seconds: 1, DisplayTime: "0:01"}},
		Order:   []string{"a"},
	}
	if err := s.SaveSnapshot(ctx, "vid", snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	snap.Order[0] = "tampered"
	delete(snap.Entries, "a")

	got, err := s.GetSnapshot(ctx, "vid")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if !slices.Equal(got.Order, []string{"a"}) || len(got.Entries) != 1 {
		t.Errorf("GetSnapshot() = %+v, want stored copy", got)
	}
}

func TestListResources(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := s.SaveSnapshot(ctx, id, domain.Snapshot{}); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := s.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if !slices.Equal(ids, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("ListResources() = %v", ids)
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p, err := s.GetSettings(ctx)
	if err != nil || p != nil {
		t.Fatalf("GetSettings() on empty store = %v, %v; want nil, nil", p, err)
	}

	want := domain.Settings{AutoPlayOnJump: true, CopyMode: domain.CopyTitleURLAndTimestamps}
	if err := s.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	p, err = s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if got := p.Apply(domain.DefaultSettings()); got != want {
		t.Errorf("GetSettings() = %+v, want %+v", got, want)
	}
}

func TestFailWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("disk full")
	s.FailWrites(boom)

	if err := s.SaveSnapshot(ctx, "vid", domain.Snapshot{}); !errors.Is(err, boom) {
		t.Errorf("SaveSnapshot() error = %v, want %v", err, boom)
	}
	if err := s.SaveSettings(ctx, domain.DefaultSettings()); !errors.Is(err, boom) {
		t.Errorf("SaveSettings() error = %v, want %v", err, boom)
	}

	s.FailWrites(nil)
	if err := s.SaveSnapshot(ctx, "vid", domain.Snapshot{}); err != nil {
		t.Errorf("SaveSnapshot() after restore error = %v", err)
	}
}
