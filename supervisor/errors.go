package supervisor

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/hedisam/goactor/actor"
	"github.com/hedisam/goactor/sysmsg"
)

var (
	// ErrNoPID declines a start whose StartFunc returned neither a pid nor an error
	ErrNoPID = errors.New("start function returned no pid")
	// ErrMaxChildren is returned by StartChild once the supervisor has MaxChildren children
	ErrMaxChildren = errors.New("max children reached")
	// ErrNotFound is returned by TerminateChild for a pid that isn't a child
	ErrNotFound = errors.New("child not found")
	// ErrTerminating is returned for requests reaching a supervisor that is shutting down
	ErrTerminating = errors.New("supervisor is terminating")
)

// StartError is a start the StartFunc declined by returning an error.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return "start declined: " + e.Err.Error()
}

func (e *StartError) Unwrap() error {
	return e.Err
}

type FaultClass int

const (
	// FaultThrow is a panic with a value that isn't an error
	FaultThrow FaultClass = iota
	// FaultError is a panic with an error
	FaultError
	// FaultExit is a call to actor.Abort
	FaultExit
)

func (c FaultClass) String() string {
	switch c {
	case FaultThrow:
		return "throw"
	case FaultError:
		return "error"
	case FaultExit:
		return "exit"
	}
	return "unknown"
}

// Fault is a StartFunc (or InitFunc) that didn't return.
type Fault struct {
	Class FaultClass
	// Value is what was passed to panic, nil for FaultExit
	Value interface{}
	// Reason is what was passed to actor.Abort
	Reason sysmsg.Reason
	// Stack is captured for FaultThrow and FaultError
	Stack pkgerrors.StackTrace
}

func (f *Fault) Error() string {
	switch f.Class {
	case FaultExit:
		return "start function exited: " + f.Reason.String()
	case FaultError:
		return fmt.Sprintf("start function raised: %v", f.Value)
	default:
		return fmt.Sprintf("start function panicked: %v", f.Value)
	}
}

func (f *Fault) Unwrap() error {
	err, _ := f.Value.(error)
	return err
}

// Format prints the stack trace with %+v.
func (f *Fault) Format(s fmt.State, verb rune) {
	_, _ = fmt.Fprint(s, f.Error())
	if verb == 'v' && s.Flag('+') && f.Stack != nil {
		f.Stack.Format(s, verb)
	}
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// classify turns a recovered value into a Fault. It must be called from the deferred
// function that recovered, so the stack still holds the panicking frames.
func classify(recovered interface{}) *Fault {
	if reason, ok := actor.AbortReason(recovered); ok {
		return &Fault{Class: FaultExit, Reason: reason}
	}
	if err, ok := recovered.(error); ok {
		return &Fault{Class: FaultError, Value: err, Stack: callers()}
	}
	return &Fault{Class: FaultThrow, Value: recovered, Stack: callers()}
}

func callers() pkgerrors.StackTrace {
	st := pkgerrors.New("").(stackTracer).StackTrace()
	// drop callers and classify
	if len(st) > 2 {
		return st[2:]
	}
	return st
}
