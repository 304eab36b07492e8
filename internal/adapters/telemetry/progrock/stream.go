package progrock

import (
	"io"
	"sync"

	"github.com/vito/progrock"
)

// Stream is a progrock.Writer whose updates are read back in order, so a live
// view can follow a pass while it is recorded. Writes never block.
type Stream struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*progrock.StatusUpdate
	closed bool
}

var _ progrock.Writer = (*Stream)(nil)

// NewStream creates an open Stream.
func NewStream() *Stream {
	s := &Stream{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// WriteStatus queues an update. Updates written after Close are dropped.
func (s *Stream) WriteStatus(update *progrock.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.queue = append(s.queue, update)
	s.cond.Signal()
	return nil
}

// Close ends the stream. Queued updates can still be read.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
	return nil
}

// Read blocks until an update is queued. It returns io.EOF once the stream is
// closed and drained.
func (s *Stream) Read() (*progrock.StatusUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return nil, io.EOF
	}
	update := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return update, nil
}
