package actor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"

	"github.com/hedisam/goactor/sysmsg"
)

// postbox is what a PID needs from a mailbox: actors and futures both provide it.
type postbox interface {
	SendUserMessage(message interface{})
	SendSystemMessage(message interface{})
}

// PID is the address of a process. It's safe to share between goroutines.
type PID struct {
	id      string
	mailbox postbox
	proc    *process
}

func newPID(m postbox, proc *process) *PID {
	return &PID{
		id:      xid.New().String(),
		mailbox: m,
		proc:    proc,
	}
}

func (p *PID) ID() string {
	return p.id
}

func (p *PID) String() string {
	return "<" + p.id + ">"
}

// Alive reports whether the process hasn't terminated yet.
func (p *PID) Alive() bool {
	return !p.proc.isDead()
}

// Done is closed once the process has terminated and notified its links and monitors.
func (p *PID) Done() <-chan struct{} {
	return p.proc.done
}

// ExitReason returns the reason the process terminated with. ok is false while it's alive.
func (p *PID) ExitReason() (reason sysmsg.Reason, ok bool) {
	p.proc.mu.Lock()
	defer p.proc.mu.Unlock()
	return p.proc.reason, p.proc.dead
}

// process holds the bookkeeping other processes touch: links, monitors, pending exit signals.
type process struct {
	mu     sync.Mutex
	dead   bool
	reason sysmsg.Reason
	// processes linked to me. two way
	links map[*PID]struct{}
	// processes monitoring me, by monitor ref
	monitors map[sysmsg.Ref]*PID
	// processes I'm monitoring, by monitor ref
	watching map[sysmsg.Ref]*PID
	// an exit signal that's waiting to be raised at the next receive
	pending  *sysmsg.Reason
	trapExit int32
	cancel   context.CancelFunc
	done     chan struct{}
}

func newProcess(cancel context.CancelFunc) *process {
	return &process{
		links:    make(map[*PID]struct{}),
		monitors: make(map[sysmsg.Ref]*PID),
		watching: make(map[sysmsg.Ref]*PID),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

func (p *process) isDead() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dead
}

func (p *process) exitReason() sysmsg.Reason {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.dead {
		return sysmsg.Reason{Type: sysmsg.NoProc}
	}
	return p.reason
}

func (p *process) trapping() bool {
	return atomic.LoadInt32(&p.trapExit) == 1
}

func (p *process) setTrapExit(trap bool) {
	var v int32
	if trap {
		v = 1
	}
	atomic.StoreInt32(&p.trapExit, v)
}

// addLink returns false if the process is already dead.
func (p *process) addLink(pid *PID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return false
	}
	p.links[pid] = struct{}{}
	return true
}

func (p *process) removeLink(pid *PID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.links, pid)
}

// addMonitor returns false if the process is already dead.
func (p *process) addMonitor(ref sysmsg.Ref, watcher *PID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return false
	}
	p.monitors[ref] = watcher
	return true
}

func (p *process) removeMonitor(ref sysmsg.Ref) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.monitors, ref)
}

func (p *process) addWatching(ref sysmsg.Ref, target *PID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return
	}
	p.watching[ref] = target
}

func (p *process) takeWatching(ref sysmsg.Ref) *PID {
	p.mu.Lock()
	defer p.mu.Unlock()
	target := p.watching[ref]
	delete(p.watching, ref)
	return target
}

// markPending stores the exit signal to raise. Only the first one counts, except for a
// kill which replaces any other pending reason.
func (p *process) markPending(reason sysmsg.Reason) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return false
	}
	if p.pending != nil && (reason.Type != sysmsg.Kill || p.pending.Type == sysmsg.Kill) {
		return false
	}
	p.pending = &reason
	return true
}

func (p *process) pendingExit() (sysmsg.Reason, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return sysmsg.Reason{}, false
	}
	return *p.pending, true
}

// connections is what a terminating process has to notify.
type connections struct {
	links    map[*PID]struct{}
	monitors map[sysmsg.Ref]*PID
	watching map[sysmsg.Ref]*PID
}

// markDead records the exit reason and hands over the connections. ok is false if it was already dead.
func (p *process) markDead(reason sysmsg.Reason) (conns connections, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return conns, false
	}
	p.dead = true
	p.reason = reason
	conns = connections{links: p.links, monitors: p.monitors, watching: p.watching}
	p.links, p.monitors, p.watching = nil, nil, nil
	return conns, true
}

// signal delivers an exit signal from `from` (nil for anonymous signals).
// A trapping process gets it as a sysmsg.Exit message unless it's an untrappable kill.
// Otherwise any reason but Normal terminates the process at its next receive.
func (p *PID) signal(from *PID, reason sysmsg.Reason, untrappable bool) {
	if !untrappable && p.proc.trapping() {
		p.mailbox.SendSystemMessage(sysmsg.Exit{Who: who(from), Reason: reason})
		return
	}
	if reason.IsNormal() {
		return
	}
	if !p.proc.markPending(reason) {
		return
	}
	p.proc.cancel()
	p.mailbox.SendSystemMessage(exitSignal{reason: reason})
}

// who avoids handing out a typed nil as a sysmsg.Process.
func who(pid *PID) sysmsg.Process {
	if pid == nil {
		return nil
	}
	return pid
}
