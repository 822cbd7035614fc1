package actor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hedisam/goactor/internal/mailbox"
	"github.com/hedisam/goactor/sysmsg"
)

// Future is a one-shot receiver for a reply. It has a PID so it can be sent to and it can
// monitor the process it's waiting on.
type Future struct {
	pid     *PID
	mailbox *mailbox.FutureMailbox
}

func NewFuture() *Future {
	m := mailbox.NewFutureMailbox()
	return &Future{
		pid:     newPID(m, newProcess(func() {})),
		mailbox: m,
	}
}

func (f *Future) Self() *PID {
	return f.pid
}

func (f *Future) Monitor(pid *PID) sysmsg.Ref {
	return monitor(f.pid, pid)
}

// Receive returns the first message, which is a sysmsg.Down if a monitored process died first.
func (f *Future) Receive(ctx context.Context) (interface{}, error) {
	msg, err := f.mailbox.Receive(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return msg, err
}

// Dispose removes the future's monitors and closes it.
func (f *Future) Dispose() {
	conns, ok := f.pid.proc.markDead(sysmsg.NormalReason())
	if ok {
		for ref, target := range conns.watching {
			target.proc.removeMonitor(ref)
		}
		close(f.pid.proc.done)
	}
	f.mailbox.Dispose()
}

// Request is what Call delivers to the callee, which answers with Reply.
type Request struct {
	From *PID
	Body interface{}
}

func (r Request) Reply(message interface{}) {
	Send(r.From, message)
}

// Call sends body to pid wrapped in a Request and waits for the reply. It returns ErrNoProc
// if pid dies before replying and ErrTimeout if ctx's deadline passes first.
func Call(ctx context.Context, pid *PID, body interface{}) (interface{}, error) {
	f := NewFuture()
	defer f.Dispose()

	f.Monitor(pid)
	Send(pid, Request{From: f.pid, Body: body})

	reply, err := f.Receive(ctx)
	if err != nil {
		return nil, err
	}
	if down, ok := reply.(sysmsg.Down); ok && down.Who == sysmsg.Process(pid) {
		return nil, fmt.Errorf("%w: exited with %s", ErrNoProc, down.Reason)
	}
	return reply, nil
}
