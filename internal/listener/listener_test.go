package listener

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sandcourt/rallyrank/internal/standings"
)

type countingRecomputer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingRecomputer) Recompute(ctx context.Context) (*standings.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil, nil
}

func (c *countingRecomputer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestScheduleCoalesces(t *testing.T) {
	kick := make(chan struct{}, 1)
	schedule(kick)
	schedule(kick)
	schedule(kick)
	if len(kick) != 1 {
		t.Fatalf("pending requests = %d, want 1", len(kick))
	}
}

func TestRecomputeWorkerCollapsesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &countingRecomputer{}
	kick := make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		recomputeWorker(ctx, kick, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	// A burst inside the debounce window yields a single pass.
	schedule(kick)
	schedule(kick)
	schedule(kick)

	deadline := time.After(2 * time.Second)
	for rec.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("recompute never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
	// Let any erroneous extra passes surface.
	time.Sleep(2 * debounce)
	if got := rec.count(); got != 1 {
		t.Fatalf("recompute ran %d times, want 1", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}
