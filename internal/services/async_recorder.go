package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"paydash/internal/core"
	applog "paydash/internal/log"
)

const defaultQueueSize = 64

var (
	errRecorderClosed = errors.New("recorder closed")
	errQueueFull      = errors.New("outcome queue full")
)

// AsyncRecorder forwards outcomes to another recorder from a background
// goroutine, so a render never waits on a slow or unreachable broker.
// Outcomes are dropped when the queue is full.
type AsyncRecorder struct {
	next    Recorder
	logger  *applog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan core.RenderOutcome
	done   chan struct{}
}

// NewAsyncRecorder starts the forwarding goroutine. A non-positive size uses
// the default queue length.
func NewAsyncRecorder(next Recorder, size int, logger *applog.Logger) *AsyncRecorder {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = applog.Discard()
	}
	a := &AsyncRecorder{
		next:    next,
		logger:  logger.WithComponent(applog.ComponentReport),
		timeout: recordTimeout,
		queue:   make(chan core.RenderOutcome, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Record queues o and returns immediately.
func (a *AsyncRecorder) Record(_ context.Context, o core.RenderOutcome) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errRecorderClosed
	}
	select {
	case a.queue <- o:
		return nil
	default:
		return errQueueFull
	}
}

func (a *AsyncRecorder) run() {
	defer close(a.done)
	for o := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Record(ctx, o); err != nil {
			a.logger.Warn("Failed to forward render outcome",
				applog.FieldRenderID, o.ID,
				applog.FieldOperation, applog.OpRecord,
				applog.FieldError, err.Error())
		}
		cancel()
	}
}

// Close stops accepting outcomes, waits for the queued ones to be forwarded
// and then closes the wrapped recorder if it holds resources.
func (a *AsyncRecorder) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	<-a.done
	if c, ok := a.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
