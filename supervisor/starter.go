package supervisor

import (
	"errors"

	"github.com/hedisam/goactor/actor"
)

// outcome of one StartFunc invocation: started, ignored, declined or faulted.
type outcome interface {
	isOutcome()
}

type started struct {
	pid   *actor.PID
	extra interface{}
}

type ignored struct{}

type declined struct {
	err error
}

type faulted struct {
	fault *Fault
}

func (started) isOutcome()  {}
func (ignored) isOutcome()  {}
func (declined) isOutcome() {}
func (faulted) isOutcome()  {}

// startChild invokes start and captures anything it raises. It never panics.
func startChild(sup *actor.Actor, start StartFunc, args []interface{}) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = faulted{fault: classify(r)}
		}
	}()

	pid, extra, err := start(sup, args...)
	switch {
	case errors.Is(err, ErrIgnore):
		return ignored{}
	case err != nil:
		return declined{err: err}
	case pid == nil:
		return declined{err: ErrNoPID}
	}
	return started{pid: pid, extra: extra}
}

// runInit invokes the initializer the same way, so a panicking init comes back as a *Fault.
func runInit(init InitFunc, args []interface{}) (spec Spec, fault *Fault, err error) {
	defer func() {
		if r := recover(); r != nil {
			fault = classify(r)
		}
	}()
	spec, err = init(args...)
	return spec, nil, err
}
