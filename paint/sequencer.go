package paint

import (
	"context"
	"sync"
)

// step is one unit of queued work. Exactly one of run or barrier is set.
type step struct {
	name string
	run  func(ctx context.Context) error
	// barrier receives the error of the chain it terminates (nil on success)
	// and runs even when that chain failed.
	barrier func(ctx context.Context, chainErr error)
}

// sequencer executes steps one at a time, in the order they were enqueued.
// Enqueue never blocks. A worker goroutine is started when work arrives on an
// idle sequencer and exits as soon as the queue is drained.
//
// Steps between two barriers form a chain. Once a step fails, the rest of its
// chain is skipped and the failure is handed to the next barrier; the chain
// after that barrier starts clean.
type sequencer struct {
	mu      sync.Mutex
	queue   []step
	closed  bool
	running bool
	// idle is closed by the current worker when it exits.
	idle chan struct{}

	// chainErr is owned by whichever worker is running; workers never overlap.
	chainErr error

	ctx   context.Context
	debug bool
}

func newSequencer(ctx context.Context, debug bool) *sequencer {
	return &sequencer{ctx: ctx, debug: debug}
}

// enqueue appends st to the queue. It reports false once the sequencer is closed.
func (s *sequencer) enqueue(st step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.queue = append(s.queue, st)
	if !s.running {
		s.running = true
		s.idle = make(chan struct{})
		go s.drain(s.idle)
	}
	return true
}

// close stops accepting steps and waits until everything queued has run.
func (s *sequencer) close() {
	s.mu.Lock()
	s.closed = true
	running, idle := s.running, s.idle
	s.mu.Unlock()
	if running {
		<-idle
	}
}

func (s *sequencer) next() (step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		s.running = false
		s.queue = nil
		return step{}, false
	}
	st := s.queue[0]
	s.queue[0] = step{}
	s.queue = s.queue[1:]
	return st, true
}

func (s *sequencer) drain(idle chan struct{}) {
	defer close(idle)
	for {
		st, ok := s.next()
		if !ok {
			return
		}
		if st.barrier != nil {
			st.barrier(s.ctx, s.chainErr)
			s.chainErr = nil
			continue
		}
		if s.chainErr != nil {
			if s.debug {
				Logger().Debug("canvasbuilder: skipping step after chain failure", "step", st.name)
			}
			continue
		}
		s.chainErr = st.run(s.ctx)
	}
}
