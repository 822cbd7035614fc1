// Package actor is a small process runtime: goroutines with mailboxes that can be
// linked, monitored and asked to exit.
package actor

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/xid"

	"github.com/hedisam/goactor/internal/logging"
	"github.com/hedisam/goactor/internal/mailbox"
	"github.com/hedisam/goactor/sysmsg"
)

type Func func(actor *Actor)

type Actor struct {
	pid     *PID
	mailbox mailbox.Mailbox
	ctx     context.Context
	args    []interface{}
}

func createActor(args ...interface{}) *Actor {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Actor{
		ctx:  ctx,
		args: args,
	}
	a.mailbox = mailbox.NewQueueMailbox(a.handleSystemMessage)
	a.pid = newPID(a.mailbox, newProcess(cancel))
	return a
}

func (a *Actor) Self() *PID {
	return a.pid
}

func (a *Actor) Args() []interface{} {
	return a.args
}

// Context is cancelled as soon as the process gets an exit signal it doesn't trap,
// so long running work can stop before the next receive raises the signal.
func (a *Actor) Context() context.Context {
	return a.ctx
}

func (a *Actor) Receive(handler mailbox.MessageHandler) {
	a.mailbox.Receive(handler)
}

// ReceiveWithTimeout passes a sysmsg.Timeout to the handler after d without messages.
func (a *Actor) ReceiveWithTimeout(d time.Duration, handler mailbox.MessageHandler) {
	a.mailbox.ReceiveWithTimeout(d, handler)
}

// TrapExit turns exit signals, including those of linked processes, into sysmsg.Exit messages.
// Kill can't be trapped.
func (a *Actor) TrapExit(trapExit bool) {
	a.pid.proc.setTrapExit(trapExit)
}

// Link links the two processes. If pid is already dead the caller gets a noproc exit signal.
func (a *Actor) Link(pid *PID) {
	if pid == a.pid {
		return
	}
	if !pid.proc.addLink(a.pid) {
		a.pid.signal(pid, sysmsg.Reason{Type: sysmsg.NoProc}, false)
		return
	}
	a.pid.proc.addLink(pid)
}

func (a *Actor) Unlink(pid *PID) {
	a.pid.proc.removeLink(pid)
	pid.proc.removeLink(a.pid)
}

// Monitor makes the runtime send one sysmsg.Down when pid terminates. A dead pid
// gets its Down right away.
func (a *Actor) Monitor(pid *PID) sysmsg.Ref {
	return monitor(a.pid, pid)
}

// Demonitor drops the monitor. A Down that's already queued is still delivered.
func (a *Actor) Demonitor(ref sysmsg.Ref) {
	demonitor(a.pid, ref)
}

func (a *Actor) SpawnLink(fn Func, args ...interface{}) *PID {
	child := createActor(args...)
	child.pid.proc.addLink(a.pid)
	a.pid.proc.addLink(child.pid)
	spawn(fn, child)
	return child.pid
}

func (a *Actor) SpawnMonitor(fn Func, args ...interface{}) (*PID, sysmsg.Ref) {
	child := createActor(args...)
	ref := monitor(a.pid, child.pid)
	spawn(fn, child)
	return child.pid, ref
}

// Exit sends an exit signal to pid on behalf of this process.
func (a *Actor) Exit(pid *PID, reason sysmsg.Reason) {
	pid.signal(a.pid, reason, reason.Type == sysmsg.Kill)
}

func monitor(watcher, target *PID) sysmsg.Ref {
	ref := sysmsg.Ref(xid.New().String())
	if !target.proc.addMonitor(ref, watcher) {
		watcher.mailbox.SendSystemMessage(sysmsg.Down{Ref: ref, Who: target, Reason: target.proc.exitReason()})
		return ref
	}
	watcher.proc.addWatching(ref, target)
	return ref
}

func demonitor(watcher *PID, ref sysmsg.Ref) {
	if target := watcher.proc.takeWatching(ref); target != nil {
		target.proc.removeMonitor(ref)
	}
}

func (a *Actor) handleSystemMessage(message interface{}) (bool, interface{}) {
	switch msg := message.(type) {
	case exitSignal:
		// a kill queued later may have replaced the reason
		reason, ok := a.pid.proc.pendingExit()
		if !ok {
			reason = msg.reason
		}
		panic(exitPanic{reason: reason})
	case sysmsg.Exit:
		if a.pid.proc.trapping() {
			return true, msg
		}
		// trap exit was turned off after the message got queued
		if msg.Reason.IsNormal() {
			return false, nil
		}
		panic(exitPanic{reason: msg.Reason})
	case sysmsg.Down:
		return true, msg
	default:
		logging.Debug().Str("pid", a.pid.id).Interface("message", msg).Msg("actor: unknown system message")
	}
	return false, nil
}

func (a *Actor) handleTermination() {
	reason := sysmsg.NormalReason()
	switch r := recover().(type) {
	case nil:
		// the function may return on its own after its context got cancelled by an exit signal
		if pending, ok := a.pid.proc.pendingExit(); ok {
			reason = pending
		}
	case exitPanic:
		reason = r.reason
	default:
		reason = sysmsg.Reason{Type: sysmsg.Panic, Details: r}
		logging.Debug().Str("pid", a.pid.id).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("actor: process panicked")
	}
	a.terminate(reason)
}

func (a *Actor) terminate(reason sysmsg.Reason) {
	proc := a.pid.proc
	conns, ok := proc.markDead(reason)
	if !ok {
		return
	}
	proc.cancel()
	a.mailbox.Dispose()

	for ref, target := range conns.watching {
		target.proc.removeMonitor(ref)
	}
	for linked := range conns.links {
		linked.proc.removeLink(a.pid)
		linked.signal(a.pid, reason, false)
	}
	for ref, watcher := range conns.monitors {
		watcher.mailbox.SendSystemMessage(sysmsg.Down{Ref: ref, Who: a.pid, Reason: reason})
	}
	close(proc.done)
}
