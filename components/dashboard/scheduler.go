package dashboard

import "sync"

// Scheduler queues deferred effects for the owning session's next turn.
type Scheduler struct {
	mu    sync.Mutex
	queue []func()
}

// Defer enqueues fn. It never runs fn synchronously.
func (s *Scheduler) Defer(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Pending reports the number of queued effects.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Drain runs the effects queued before the call, in FIFO order. Effects
// deferred while draining wait for the next Drain.
func (s *Scheduler) Drain() int {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}
