package engine

import (
	"sync"

	contentengine "github.com/wippyai/content-engine"
)

// request is one queued load or release command, tagged with the
// generation it was issued under so stale cross-generation requests
// never alias into a fresh registry set.
type request struct {
	id  contentengine.ObjectID
	gen uint32
}

// requestQueue is a many-producer/single-consumer queue. Producers only
// append under a short critical section; the consumer swaps the whole
// backlog out, so pushes never wait on request processing.
type requestQueue struct {
	mu    sync.Mutex
	items []request
}

func newRequestQueue() *requestQueue {
	return &requestQueue{}
}

// Push enqueues a request. Safe from any goroutine.
func (q *requestQueue) Push(r request) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

// Drain removes and returns the entire backlog in push order.
func (q *requestQueue) Drain() []request {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// Len returns the current backlog size.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
