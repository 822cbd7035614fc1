package mailbox

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/t3rm1n4l/go-mpscqueue"

	"github.com/hedisam/goactor/internal/logging"
	"github.com/hedisam/goactor/sysmsg"
)

type queueMailbox struct {
	userMailbox *queue.RingBuffer
	sysMailbox  *mpsc.MPSCQueue
	done        chan struct{}
	disposed    int32
	// signal has a buffer of one; a pending signal means "look at the queues again"
	signal     chan struct{}
	sysHandler SystemHandler
}

// NewQueueMailbox returns a mailbox with a bounded user queue and an unbounded system queue.
// System messages are always handled before user messages.
func NewQueueMailbox(sysHandler SystemHandler) Mailbox {
	return &queueMailbox{
		userMailbox: queue.NewRingBuffer(defaultUserMailboxCap),
		sysMailbox:  mpsc.New(),
		done:        make(chan struct{}),
		signal:      make(chan struct{}, 1),
		sysHandler:  sysHandler,
	}
}

func (m *queueMailbox) SendUserMessage(message interface{}) {
	if atomic.LoadInt32(&m.disposed) == 1 {
		return
	}
	// Put blocks while the ring buffer is full and fails once it's disposed
	err := m.userMailbox.Put(message)
	if err != nil {
		logging.Debug().Err(err).Msg("queue mailbox: user message dropped")
		return
	}
	m.notify()
}

func (m *queueMailbox) SendSystemMessage(message interface{}) {
	if atomic.LoadInt32(&m.disposed) == 1 {
		return
	}
	m.sysMailbox.Push(message)
	m.notify()
}

func (m *queueMailbox) notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *queueMailbox) Receive(handler MessageHandler) {
	for {
		if !m.drain(handler) {
			return
		}
		select {
		case <-m.done:
			return
		case <-m.signal:
		}
	}
}

func (m *queueMailbox) ReceiveWithTimeout(d time.Duration, handler MessageHandler) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		if !m.drain(handler) {
			return
		}
		select {
		case <-m.done:
			return
		case <-m.signal:
			resetTimer(timer, d)
		case <-timer.C:
			if !handler(sysmsg.Timeout{Duration: d}) {
				return
			}
			timer.Reset(d)
		}
	}
}

// drain handles everything queued so far. It returns false as soon as the handler asks to stop.
func (m *queueMailbox) drain(handler MessageHandler) bool {
	for {
		for m.sysMailbox.Size() != 0 {
			msg := m.sysMailbox.Pop()
			if msg == nil {
				// a producer is half way through its push
				runtime.Gosched()
				continue
			}
			pass, msg := m.sysHandler(msg)
			if pass && !handler(msg) {
				return false
			}
		}

		if m.userMailbox.Len() == 0 {
			return true
		}
		msg, err := m.userMailbox.Get()
		if err != nil {
			return true
		}
		if !handler(msg) {
			return false
		}
	}
}

func (m *queueMailbox) Dispose() {
	if !atomic.CompareAndSwapInt32(&m.disposed, 0, 1) {
		return
	}
	close(m.done)
	m.userMailbox.Dispose()
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}
