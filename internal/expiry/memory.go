package expiry

import (
	"container/heap"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-seat-inventory/internal/clock"
)

const defaultRetryDelay = 5 * time.Second

// MemoryQueue is an in-process delayed queue ordered by deadline.  It is
// the default runner for a single server instance and the one tests drive
// with a manual clock.
type MemoryQueue struct {
	mu      sync.Mutex
	clock   clock.Clock
	handler Handler
	log     zerolog.Logger
	retry   time.Duration
	byKey   map[string]*item
	pending jobHeap
}

// NewMemoryQueue returns an empty queue that calls handler for due jobs.
func NewMemoryQueue(clk clock.Clock, handler Handler, log zerolog.Logger) *MemoryQueue {
	return &MemoryQueue{
		clock:   clk,
		handler: handler,
		log:     log,
		retry:   defaultRetryDelay,
		byKey:   make(map[string]*item),
	}
}

// Schedule adds job or, when a job with the same key is pending, moves
// that job to the new deadline.
func (q *MemoryQueue) Schedule(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.scheduleLocked(job)
	return nil
}

func (q *MemoryQueue) scheduleLocked(job Job) {
	key := job.Key()
	if it, ok := q.byKey[key]; ok {
		it.job = job
		heap.Fix(&q.pending, it.index)
		return
	}
	it := &item{job: job}
	q.byKey[key] = it
	heap.Push(&q.pending, it)
}

// RunDue pops and handles every job due at the clock's current time.
// Failed jobs are put back with a short delay unless a newer job for the
// same lock was scheduled meanwhile.
func (q *MemoryQueue) RunDue(ctx context.Context) (int, error) {
	now := q.clock.Now()
	q.mu.Lock()
	var due []Job
	for q.pending.Len() > 0 && !q.pending[0].job.DueAt.After(now) {
		it := heap.Pop(&q.pending).(*item)
		delete(q.byKey, it.job.Key())
		due = append(due, it.job)
	}
	q.mu.Unlock()

	fired := 0
	for _, job := range due {
		if err := q.handler(ctx, job); err != nil {
			q.log.Warn().Err(err).Int64("event_id", job.EventID).Str("seats", job.Seats.Key()).Msg("lock expiry failed, will retry")
			q.mu.Lock()
			if _, exists := q.byKey[job.Key()]; !exists {
				job.DueAt = now.Add(q.retry)
				q.scheduleLocked(job)
			}
			q.mu.Unlock()
			continue
		}
		fired++
	}
	return fired, nil
}

// Pending returns a snapshot of queued jobs ordered by deadline.
func (q *MemoryQueue) Pending() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, 0, len(q.pending))
	for _, it := range q.pending {
		out = append(out, it.job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

type item struct {
	job   Job
	index int
}

type jobHeap []*item

func (h jobHeap) Len() int           { return len(h) }
func (h jobHeap) Less(i, j int) bool { return h[i].job.DueAt.Before(h[j].job.DueAt) }
func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *jobHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}
