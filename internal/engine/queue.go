package engine

import (
	"context"
	"sync"
)

// job is one engine call waiting for its match's lane.
type job struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error // buffered, size 1
}

// lane is a thread-safe FIFO of jobs for one match. A single goroutine
// drains it, so calls against the same match never interleave while calls
// against different matches proceed in parallel.
//
// The lane uses a channel for signaling so the drain loop can wait on it
// together with engine shutdown.
type lane struct {
	mu     sync.Mutex
	jobs   []job
	closed bool
	signal chan struct{} // Signals job availability (buffered, size 1)
}

func newLane() *lane {
	return &lane{
		jobs:   make([]job, 0, 8),
		signal: make(chan struct{}, 1),
	}
}

// enqueue adds a job to the back of the lane.
// Returns false if the lane is closed.
func (l *lane) enqueue(j job) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}
	l.jobs = append(l.jobs, j)

	// Non-blocking: the buffer of 1 coalesces multiple signals
	select {
	case l.signal <- struct{}{}:
	default:
	}
	return true
}

// tryDequeue removes the front job without blocking.
func (l *lane) tryDequeue() (job, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.jobs) == 0 {
		return job{}, false
	}
	j := l.jobs[0]
	// Release the closure held by the slot.
	l.jobs[0] = job{}
	if len(l.jobs) == 1 {
		l.jobs = l.jobs[:0]
	} else {
		l.jobs = l.jobs[1:]
	}
	return j, true
}

// wait returns a channel that signals when jobs may be available. The
// channel is closed when the lane is closed.
func (l *lane) wait() <-chan struct{} {
	return l.signal
}

// drained reports whether the lane is closed and empty.
func (l *lane) drained() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed && len(l.jobs) == 0
}

func (l *lane) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.jobs)
}

// close stops new jobs; queued jobs still run.
func (l *lane) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.signal)
}

// drain runs the lane's jobs in order until the lane is closed and empty.
// When stop fires, jobs still queued are failed with ErrClosed.
func (l *lane) drain(stop <-chan struct{}) {
	for {
		if j, ok := l.tryDequeue(); ok {
			if err := j.ctx.Err(); err != nil {
				// Caller gave up before its turn.
				j.done <- err
				continue
			}
			j.done <- j.run(j.ctx)
			continue
		}

		select {
		case <-stop:
			l.close()
			for {
				j, ok := l.tryDequeue()
				if !ok {
					return
				}
				j.done <- ErrClosed
			}
		case <-l.wait():
			if l.drained() {
				return
			}
		}
	}
}
