package mailbox

import (
	"context"
	"sync/atomic"
)

// FutureMailbox holds at most one message. Whatever arrives after the first one is dropped,
// so senders never block on it.
type FutureMailbox struct {
	m        chan interface{}
	done     chan struct{}
	disposed int32
}

func NewFutureMailbox() *FutureMailbox {
	return &FutureMailbox{
		m:    make(chan interface{}, 1),
		done: make(chan struct{}),
	}
}

func (f *FutureMailbox) SendUserMessage(message interface{}) {
	select {
	case <-f.done:
	case f.m <- message:
	default:
	}
}

func (f *FutureMailbox) SendSystemMessage(message interface{}) {
	f.SendUserMessage(message)
}

// Receive waits for the single message. It returns ErrDisposed if the mailbox gets disposed
// first and the context's error if ctx is done first.
func (f *FutureMailbox) Receive(ctx context.Context) (interface{}, error) {
	select {
	case msg := <-f.m:
		return msg, nil
	case <-f.done:
		return nil, ErrDisposed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *FutureMailbox) Dispose() {
	if atomic.CompareAndSwapInt32(&f.disposed, 0, 1) {
		close(f.done)
	}
}
