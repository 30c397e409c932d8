package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/store/memory"
)

// recordingGateway remembers the order of SaveSnapshot calls
type recordingGateway struct {
	*memory.Store
	mu     sync.Mutex
	writes []string
	gate   chan struct{}
}

func (g *recordingGateway) SaveSnapshot(ctx context.Context, resourceID string, snap domain.Snapshot) error {
	if g.gate != nil {
		<-g.gate
	}
	g.mu.Lock()
	g.writes = append(g.writes, resourceID+":"+snap.Order[len(snap.Order)-1])
	g.mu.Unlock()
	return g.Store.SaveSnapshot(ctx, resourceID, snap)
}

func (g *recordingGateway) recorded() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.writes)
}

func snapWith(ids ...string) domain.Snapshot {
	entries := make(map[string]domain.Mark, len(ids))
	for i, id := range ids {
		entries[id] = domain.Mark{ID: id, Seconds: i, DisplayTime: domain.FormatTime(i)}
	}
	return domain.Snapshot{Entries: entries, Order: slices.Clone(ids)}
}

func TestPersistQueueWritesInOrder(t *testing.T) {
	gw := &recordingGateway{Store: memory.NewStore(), gate: make(chan struct{})}
	q := NewPersistQueue(gw, logger.Nop(), time.Second)
	if err := q.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	q.Enqueue("vid", snapWith("a"))
	q.Enqueue("vid", snapWith("a", "b"))
	q.Enqueue("other", snapWith("x"))
	q.Enqueue("vid", snapWith("a", "b", "c"))
	close(gw.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []string{"vid:a", "vid:b", "other:x", "vid:c"}
	if got := gw.recorded(); !slices.Equal(got, want) {
		t.Fatalf("writes = %v, want %v", got, want)
	}

	snap, err := gw.GetSnapshot(context.Background(), "vid")
	if err != nil || snap == nil {
		t.Fatalf("GetSnapshot() = %v, %v", snap, err)
	}
	if !slices.Equal(snap.Order, []string{"a", "b", "c"}) {
		t.Fatalf("stored order = %v, want latest snapshot", snap.Order)
	}
	if q.Pending() != 0 {
		t.Fatalf("Pending() = %d", q.Pending())
	}
}

func TestPersistQueueWriteFailureKeepsGoing(t *testing.T) {
	gw := memory.NewStore()
	gw.FailWrites(errors.New("disk full"))
	q := NewPersistQueue(gw, logger.Nop(), time.Second)
	_ = q.Start(context.Background())

	q.Enqueue("vid", snapWith("a"))
	q.Enqueue("vid", snapWith("a", "b"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if gw.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", gw.Count())
	}
}

func TestPersistQueueStopDeadline(t *testing.T) {
	gw := &recordingGateway{Store: memory.NewStore(), gate: make(chan struct{})}
	defer close(gw.gate)

	q := NewPersistQueue(gw, logger.Nop(), time.Second)
	_ = q.Start(context.Background())
	q.Enqueue("vid", snapWith("a"))
	q.Enqueue("vid", snapWith("a", "b"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop() error = %v, want deadline exceeded", err)
	}
}

func TestPersistQueueSurvivesContextCancel(t *testing.T) {
	gw := memory.NewStore()
	q := NewPersistQueue(gw, logger.Nop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	_ = q.Start(ctx)
	cancel()

	q.Enqueue("vid", snapWith("a"))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := q.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if gw.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", gw.Count())
	}
}

func TestPersistQueueLatestSeesUnwrittenSnapshots(t *testing.T) {
	gw := &recordingGateway{Store: memory.NewStore(), gate: make(chan struct{})}
	q := NewPersistQueue(gw, logger.Nop(), time.Second)
	_ = q.Start(context.Background())

	q.Enqueue("vid", snapWith("a"))
	deadline := time.Now().Add(2 * time.Second)
	for q.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	// The first write is blocked in the gateway.
	snap, ok := q.Latest("vid")
	if !ok || !slices.Equal(snap.Order, []string{"a"}) {
		t.Fatalf("Latest() in flight = %v, %v", snap.Order, ok)
	}

	q.Enqueue("vid", snapWith("a", "b"))
	q.Enqueue("other", snapWith("x"))
	snap, ok = q.Latest("vid")
	if !ok || !slices.Equal(snap.Order, []string{"a", "b"}) {
		t.Fatalf("Latest() queued = %v, %v", snap.Order, ok)
	}
	if _, ok := q.Latest("missing"); ok {
		t.Fatal("Latest() reported a snapshot for an unknown resource")
	}

	close(gw.gate)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if _, ok := q.Latest("vid"); ok {
		t.Fatal("Latest() after drain should defer to the gateway")
	}
}
