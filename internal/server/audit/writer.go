package audit

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

// Store persists audit entries.
type Store interface {
	Append(ctx context.Context, e *models.AuditEntry) error
}

// Writer owns the bounded audit queue and the goroutine that drains it.
type Writer struct {
	store   Store
	queue   chan models.AuditEntry
	log     logging.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewWriter(store Store, size int, log logging.Logger, m *metrics.Metrics) *Writer {
	if size <= 0 {
		size = 1
	}
	return &Writer{
		store:   store,
		queue:   make(chan models.AuditEntry, size),
		log:     log.With("module", "audit"),
		metrics: m,
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
}

// Enqueue hands e to the writer without blocking. It returns false when the
// queue is full or the writer is closed; the entry is then dropped.
func (w *Writer) Enqueue(e models.AuditEntry) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.closed {
		select {
		case w.queue <- e:
			return true
		default:
		}
	}

	w.metrics.AuditDropped.Inc()
	w.log.Warn(context.Background(), "audit entry dropped", "actor_id", e.ActorID, "action", string(e.Action))
	return false
}

// Run writes queued entries until Close is called or ctx is cancelled, and
// in both cases writes whatever is still queued before returning. Run must
// be called once.
func (w *Writer) Run(ctx context.Context) error {
	defer close(w.done)
	writeCtx := context.WithoutCancel(ctx)

	for {
		select {
		case e, ok := <-w.queue:
			if !ok {
				return nil
			}
			w.write(writeCtx, e)
		case <-ctx.Done():
			w.stop()
			for e := range w.queue {
				w.write(writeCtx, e)
			}
			return nil
		}
	}
}

// Close stops intake and waits for Run to drain the queue or ctx to expire.
func (w *Writer) Close(ctx context.Context) error {
	w.stop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordSync writes e immediately, bypassing the queue.
func (w *Writer) RecordSync(ctx context.Context, e models.AuditEntry) error {
	return w.write(ctx, e)
}

func (w *Writer) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
}

func (w *Writer) write(ctx context.Context, e models.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.store.Append(ctx, &e); err != nil {
		w.metrics.AuditWriteFailures.Inc()
		w.log.Error(ctx, "audit write failed", "actor_id", e.ActorID, "action", string(e.Action), "error", err)
		return err
	}
	w.metrics.AuditWritten.Inc()
	return nil
}
