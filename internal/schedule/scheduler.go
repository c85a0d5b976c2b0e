// Package schedule implements the scheduler contract (§5): a FIFO
// queue of pending (state, value) resumptions. Parallelism in this
// core comes entirely from having many outstanding continuations a
// scheduler can interleave — never from OS threads.
package schedule

import "sentracore/internal/types"

type job struct {
	state types.State
	value types.Value
}

// Scheduler exposes Schedule(state, value), which will eventually
// invoke state.Run(value) — FIFO-by-submission, legal to run inline.
// This core chooses to always defer (never run inline from within
// Schedule itself) and instead drains the queue from Drain, which the
// embedder (the CLI's run helper, the task package's tests) calls once
// it has nothing synchronous left to do; task completion and tasks
// fan-out only enqueue.
type Scheduler struct {
	queue []job
}

func New() *Scheduler { return &Scheduler{} }

// Schedule enqueues (state, value) for later resumption.
func (s *Scheduler) Schedule(state types.State, value types.Value) {
	if state == nil {
		return
	}
	s.queue = append(s.queue, job{state: state, value: value})
}

// Drain runs every queued resumption to completion (via types.Drive),
// including any further jobs newly scheduled while draining, until the
// queue is empty.
func (s *Scheduler) Drain() {
	for len(s.queue) > 0 {
		j := s.queue[0]
		s.queue = s.queue[1:]
		types.Drive(j.state, j.value)
	}
}

// Pending reports whether any job is still queued.
func (s *Scheduler) Pending() bool { return len(s.queue) > 0 }
