package actor

import (
	"errors"
	"fmt"

	"github.com/hedisam/goactor/sysmsg"
)

var (
	// ErrNoProc is returned when the target process is not alive
	ErrNoProc = errors.New("no such process")
	// ErrTimeout is returned when a call's context expires before the reply
	ErrTimeout = errors.New("call timed out")
	// ErrAlreadyRegistered is returned when registering a name that's taken
	ErrAlreadyRegistered = errors.New("name already registered")
)

func Send(pid *PID, message interface{}) {
	pid.mailbox.SendUserMessage(message)
}

func SendNamed(name string, message interface{}) error {
	pid := WhereIs(name)
	if pid == nil {
		return fmt.Errorf("%w: %s", ErrNoProc, name)
	}
	Send(pid, message)
	return nil
}

func Spawn(fn Func, args ...interface{}) *PID {
	a := createActor(args...)
	spawn(fn, a)
	return a.pid
}

func spawn(fn Func, a *Actor) {
	go func() {
		defer a.handleTermination()
		fn(a)
	}()
}

// Exit sends an anonymous exit signal to pid. Kill terminates it even if it traps exits.
func Exit(pid *PID, reason sysmsg.Reason) {
	pid.signal(nil, reason, reason.Type == sysmsg.Kill)
}

// exitSignal is queued on the system mailbox of a process that must exit at its next receive
type exitSignal struct {
	reason sysmsg.Reason
}

// exitPanic unwinds a process with the given reason
type exitPanic struct {
	reason sysmsg.Reason
}

func (e exitPanic) String() string {
	return "exit: " + e.reason.String()
}

// Abort terminates the calling process with reason. Deferred functions run as with a panic.
func Abort(reason sysmsg.Reason) {
	panic(exitPanic{reason: reason})
}

// AbortReason tells whether a recovered value was raised by Abort.
func AbortReason(recovered interface{}) (sysmsg.Reason, bool) {
	e, ok := recovered.(exitPanic)
	if !ok {
		return sysmsg.Reason{}, false
	}
	return e.reason, true
}

// NewParentActor returns an Actor for the calling goroutine along with its termination handler,
// which should be deferred right away.
func NewParentActor() (*Actor, func()) {
	a := createActor()
	return a, a.handleTermination
}
