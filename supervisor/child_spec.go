package supervisor

import (
	"github.com/hedisam/goactor/actor"
)

type ChildType int32

const (
	Worker ChildType = iota
	Supervisor
)

func (t ChildType) String() string {
	switch t {
	case Worker:
		return "worker"
	case Supervisor:
		return "supervisor"
	}
	return "unknown"
}

type Restart int32

const (
	// Permanent children are always restarted
	Permanent Restart = iota
	// Transient children are restarted only if they terminate abnormally, i.e. not normal or shutdown
	Transient
	// Temporary children are never restarted
	Temporary
)

func (r Restart) String() string {
	switch r {
	case Permanent:
		return "permanent"
	case Transient:
		return "transient"
	case Temporary:
		return "temporary"
	}
	return "unknown"
}

const (
	ShutdownInfinity   int = iota - 1 // -1
	ShutdownBrutalKill                // 0
	// >= 1 as number of milliseconds
)

const defaultShutdown = 5000

// StartFunc starts one child. It runs on the supervisor's goroutine and must link the new
// process to sup, typically with sup.SpawnLink. extra is handed back to the StartChild caller.
// Returning ErrIgnore means nothing was started; any other error declines the start.
type StartFunc func(sup *actor.Actor, args ...interface{}) (pid *actor.PID, extra interface{}, err error)

// ChildSpec is the template every child of a dynamic supervisor is started from.
type ChildSpec struct {
	ID       string
	Start    StartFunc `validate:"required"`
	Restart  Restart   `validate:"gte=0,lte=2"`
	Shutdown int       `validate:"gte=-1"`
	Type     ChildType `validate:"gte=0,lte=1"`
}

// NewChildSpec returns a permanent worker spec with a 5s shutdown timeout.
func NewChildSpec(start StartFunc) ChildSpec {
	return ChildSpec{
		Start:    start,
		Restart:  Permanent,
		Shutdown: defaultShutdown,
		Type:     Worker,
	}
}

func (spec ChildSpec) SetID(id string) ChildSpec {
	spec.ID = id
	return spec
}

func (spec ChildSpec) SetRestart(restart Restart) ChildSpec {
	spec.Restart = restart
	return spec
}

func (spec ChildSpec) SetShutdown(shutdown int) ChildSpec {
	spec.Shutdown = shutdown
	return spec
}

func (spec ChildSpec) SetType(t ChildType) ChildSpec {
	spec.Type = t
	return spec
}

// SpawnWorker adapts an actor function into a StartFunc that spawn-links it with the child's args.
func SpawnWorker(fn actor.Func) StartFunc {
	return func(sup *actor.Actor, args ...interface{}) (*actor.PID, interface{}, error) {
		return sup.SpawnLink(fn, args...), nil, nil
	}
}
