package execution

import (
	"sync"

	copilot "github.com/github/copilot-sdk/go"
)

const sessionFailedUnknown = "session failed with unknown error"

// responseCollector receives copilot session events and forwards assistant
// text deltas to a stream consumer, in the order the session emits them.
type responseCollector struct {
	out  chan<- fragment
	done <-chan struct{}

	mu       sync.Mutex
	closed   bool
	sawDelta bool
	final    string
	errorMsg string
}

func newResponseCollector(out chan<- fragment, done <-chan struct{}) *responseCollector {
	return &responseCollector{out: out, done: done}
}

// On is a callback, intended to be passed to [copilot.Session.On].
func (coll *responseCollector) On(event copilot.SessionEvent) {
	switch event.Type {
	case copilot.AssistantMessageDelta:
		if event.Data.DeltaContent != nil && *event.Data.DeltaContent != "" {
			coll.send(*event.Data.DeltaContent)
		}

	case copilot.AssistantMessage:
		if event.Data.Content != nil {
			coll.mu.Lock()
			coll.final = *event.Data.Content
			coll.mu.Unlock()
		}

	case copilot.SessionError:
		msg := sessionFailedUnknown
		if event.Data.Message != nil && *event.Data.Message != "" {
			msg = *event.Data.Message
		}
		coll.mu.Lock()
		coll.errorMsg = msg
		coll.mu.Unlock()
	}
}

func (coll *responseCollector) send(text string) {
	coll.mu.Lock()
	defer coll.mu.Unlock()

	if coll.closed {
		return
	}
	coll.sawDelta = true

	select {
	case coll.out <- fragment{text: text}:
	case <-coll.done:
	}
}

// finish flushes the full assistant message when the session never streamed
// deltas, reports err (or a session error) and closes the output channel.
// Events that arrive afterwards are dropped.
func (coll *responseCollector) finish(err error) {
	coll.mu.Lock()
	defer coll.mu.Unlock()

	if coll.closed {
		return
	}
	coll.closed = true
	defer close(coll.out)

	if err == nil && coll.errorMsg != "" {
		err = &copilotSessionError{msg: coll.errorMsg}
	}

	var pending []fragment
	if err == nil && !coll.sawDelta && coll.final != "" {
		pending = append(pending, fragment{text: coll.final})
	}
	if err != nil {
		pending = append(pending, fragment{err: err})
	}

	for _, f := range pending {
		select {
		case coll.out <- f:
		case <-coll.done:
			return
		}
	}
}

type copilotSessionError struct {
	msg string
}

func (e *copilotSessionError) Error() string {
	return "copilot session error: " + e.msg
}
