package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"paydash/internal/core"
)

type blockingRecorder struct {
	fakeRecorder
	release chan struct{}
}

func (b *blockingRecorder) Record(ctx context.Context, o core.RenderOutcome) error {
	<-b.release
	return b.fakeRecorder.Record(ctx, o)
}

func TestAsyncRecorder_RenderDoesNotWait(t *testing.T) {
	path := writeData(t, t.TempDir(), sample)
	slow := &blockingRecorder{release: make(chan struct{})}
	async := NewAsyncRecorder(slow, 4, nil)
	svc := newService(path, async)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Render(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("render: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("render blocked on a stalled recorder")
	}

	close(slow.release)
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(slow.outcomes) != 1 || slow.outcomes[0].Status != core.StatusOK {
		t.Fatalf("queued outcome should be forwarded before close, got %+v", slow.outcomes)
	}
	if !slow.closed {
		t.Error("wrapped recorder should be closed")
	}
}

func TestAsyncRecorder_QueueFullAndClosed(t *testing.T) {
	slow := &blockingRecorder{release: make(chan struct{})}
	async := NewAsyncRecorder(slow, 1, nil)
	ctx := context.Background()

	// The first outcome is taken by the worker, the second fills the queue.
	if err := async.Record(ctx, core.RenderOutcome{ID: "1"}); err != nil {
		t.Fatalf("record 1: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := async.Record(ctx, core.RenderOutcome{ID: "2"}); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("queue never drained to the worker")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := async.Record(ctx, core.RenderOutcome{ID: "3"}); !errors.Is(err, errQueueFull) {
		t.Fatalf("expected errQueueFull, got %v", err)
	}

	close(slow.release)
	if err := async.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := async.Record(ctx, core.RenderOutcome{ID: "4"}); !errors.Is(err, errRecorderClosed) {
		t.Fatalf("expected errRecorderClosed, got %v", err)
	}
	if len(slow.outcomes) != 2 {
		t.Fatalf("expected 2 forwarded outcomes, got %d", len(slow.outcomes))
	}
}
