package sqlite

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/MrSnakeDoc/stamp/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "stamp.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	got, err := s.GetSnapshot(ctx, "vid")
	if err != nil || got != nil {
		t.Fatalf("GetSnapshot() before save = %v, %v; want nil, nil", got, err)
	}

	snap := domain.Snapshot{
		Entries: map[string]domain.Mark{
			"a": {ID: "a", Seconds: 75, DisplayTime: "1:15", Label: "Intro"},
			"b": {ID: "b", Seconds: 10, DisplayTime: "0:10", Label: ""},
		},
		Order: []string{"a", "b"},
	}
	if err := s.SaveSnapshot(ctx, "vid", snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err = s.GetSnapshot(ctx, "vid")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if !got.Valid() || !slices.Equal(got.Order, snap.Order) || got.Entries["a"] != snap.Entries["a"] {
		t.Errorf("GetSnapshot() = %+v, want %+v", got, snap)
	}

	// Overwrite keeps a single row per resource.
	snap.Order = []string{"b", "a"}
	if err := s.SaveSnapshot(ctx, "vid", snap); err != nil {
		t.Fatalf("SaveSnapshot() overwrite error = %v", err)
	}
	got, _ = s.GetSnapshot(ctx, "vid")
	if !slices.Equal(got.Order, []string{"b", "a"}) {
		t.Errorf("GetSnapshot() after overwrite order = %v", got.Order)
	}
}

func TestListResources(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	for _, id := range []string{"b_vid", "a-vid"} {
		if err := s.SaveSnapshot(ctx, id, domain.Snapshot{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveSettings(ctx, domain.DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	ids, err := s.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if !slices.Equal(ids, []string{"a-vid", "b_vid"}) {
		t.Errorf("ListResources() = %v, want [a-vid b_vid]", ids)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	p, err := s.GetSettings(ctx)
	if err != nil || p != nil {
		t.Fatalf("GetSettings() before save = %v, %v; want nil, nil", p, err)
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
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
