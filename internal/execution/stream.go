package execution

import "sync"

// fragment is one item on a channel-backed stream. A non-nil err ends the
// stream.
type fragment struct {
	text string
	err  error
}

// chanStream adapts a producer goroutine into a [Stream].
type chanStream struct {
	c       <-chan fragment
	closeFn func() error

	curr string
	err  error
	done bool

	closeOnce sync.Once
	closeErr  error
}

func newChanStream(c <-chan fragment, closeFn func() error) *chanStream {
	return &chanStream{c: c, closeFn: closeFn}
}

func (s *chanStream) Next() bool {
	if s.done {
		return false
	}

	f, ok := <-s.c
	if !ok {
		s.done = true
		return false
	}
	if f.err != nil {
		s.err = f.err
		s.done = true
		return false
	}

	s.curr = f.text
	return true
}

func (s *chanStream) Current() string { return s.curr }
func (s *chanStream) Err() error      { return s.err }

func (s *chanStream) Close() error {
	s.closeOnce.Do(func() {
		s.done = true
		if s.closeFn != nil {
			s.closeErr = s.closeFn()
		}
	})
	return s.closeErr
}

// sliceStream replays a fixed list of fragments.
type sliceStream struct {
	parts []string
	pos   int
	err   error
}

// NewSliceStream returns a Stream that yields parts in order, then err (which
// may be nil).
func NewSliceStream(parts []string, err error) Stream {
	return &sliceStream{parts: parts, pos: -1, err: err}
}

func (s *sliceStream) Next() bool {
	if s.pos+1 >= len(s.parts) {
		s.pos = len(s.parts)
		return false
	}
	s.pos++
	return true
}

func (s *sliceStream) Current() string {
	if s.pos < 0 || s.pos >= len(s.parts) {
		return ""
	}
	return s.parts[s.pos]
}

func (s *sliceStream) Err() error {
	if s.pos < len(s.parts) {
		return nil
	}
	return s.err
}

func (s *sliceStream) Close() error { return nil }
