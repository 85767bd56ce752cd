package evidence

import (
	"sync"
)

// WriteQueue is a single-worker background job queue for evidence I/O.
// One worker preserves submission order, so frames within one episode's
// clip are never reordered.  Submit never blocks, when the queue is full
// the job is dropped and the caller logs it.
type WriteQueue struct {
	mu     sync.Mutex
	closed bool
	jobs   chan func()
	done   chan struct{}
}

// NewWriteQueue creates a WriteQueue holding up to depth pending jobs and
// starts its worker
func NewWriteQueue(depth int) *WriteQueue {

	q := &WriteQueue{
		jobs: make(chan func(), depth),
		done: make(chan struct{}),
	}

	go q.run()

	return q
}

// Submit enqueues a job for the background worker.  Returns false when
// the queue is full or closed and the job was dropped.
func (q *WriteQueue) Submit(job func()) bool {

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	select {
	case q.jobs <- job:
		return true
	default:
		// queue is full
		return false
	}
}

// Close stops accepting jobs, drains the pending ones and waits for the
// worker to finish
func (q *WriteQueue) Close() {

	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}

	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	<-q.done
}

func (q *WriteQueue) run() {

	defer close(q.done)

	for job := range q.jobs {
		job()
	}
}
