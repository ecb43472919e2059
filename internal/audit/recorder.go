package audit

import (
	"sync"

	"go.uber.org/zap"
)

// Writer persists a single entry. *Store satisfies it.
type Writer interface {
	Insert(Entry) error
}

// Recorder queues audit writes so persistence latency never sits on the
// pricing critical path. A full queue or a failing writer is logged and the
// entry dropped; audit is best-effort relative to the calculation, never
// the reverse.
type Recorder struct {
	writer Writer
	log    *zap.Logger

	queue chan Entry
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

const defaultQueueSize = 256

// NewRecorder starts the background drain goroutine.
func NewRecorder(writer Writer, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Recorder{
		writer: writer,
		log:    log,
		queue:  make(chan Entry, defaultQueueSize),
	}
	r.wg.Add(1)
	go r.drain()
	return r
}

// Record enqueues an entry without blocking.
func (r *Recorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warn("audit entry dropped, recorder closed", zap.String("entity_id", e.EntityID), zap.String("field", e.Field))
		return
	}

	select {
	case r.queue <- e:
	default:
		r.log.Warn("audit entry dropped, queue full", zap.String("entity_id", e.EntityID), zap.String("field", e.Field))
	}
}

// Close flushes queued entries and stops the drain goroutine.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	for e := range r.queue {
		if err := r.writer.Insert(e); err != nil {
			r.log.Warn("audit write failed",
				zap.String("entity_id", e.EntityID),
				zap.String("field", e.Field),
				zap.Error(err),
			)
		}
	}
}
