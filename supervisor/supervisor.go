// Package supervisor implements a dynamic supervisor: a process that starts children
// on demand from a single ChildSpec, watches them, and restarts them according to
// their restart type until they fail more often than its restart intensity allows.
//
//	ref, err := supervisor.StartSpec(
//		supervisor.NewChildSpec(supervisor.SpawnWorker(worker)).SetRestart(supervisor.Transient),
//		supervisor.DefaultFlags(),
//	)
//	child, err := ref.StartChild(ctx, "arg")
package supervisor

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hedisam/goactor/actor"
	"github.com/hedisam/goactor/internal/clock"
	"github.com/hedisam/goactor/internal/logging"
	"github.com/hedisam/goactor/internal/metrics"
)

type startOptions struct {
	args   []interface{}
	name   string
	parent *actor.Actor
	logger *zerolog.Logger
	clock  clock.Clock
}

type Option func(*startOptions)

// WithArgs are passed to the InitFunc.
func WithArgs(args ...interface{}) Option {
	return func(o *startOptions) {
		o.args = args
	}
}

// WithName registers the supervisor under name. It takes precedence over Flags.Name.
func WithName(name string) Option {
	return func(o *startOptions) {
		o.name = name
	}
}

// WithParent links the supervisor to parent. The supervisor shuts down with its parent, and
// a parent that traps exits receives the supervisor's sysmsg.Exit when it gives up.
func WithParent(parent *actor.Actor) Option {
	return func(o *startOptions) {
		o.parent = parent
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *startOptions) {
		o.logger = &logger
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *startOptions) {
		o.clock = c
	}
}

// Start spawns the supervisor and waits for init to complete. The InitFunc's ErrIgnore
// is returned as is; any other failure is an *InitError or a *Fault. Either way no
// supervisor process is left behind.
func Start(init InitFunc, opts ...Option) (*Ref, error) {
	ref, _, err := start(init, opts...)
	return ref, err
}

// StartSpec starts a supervisor for the given template and flags.
func StartSpec(spec ChildSpec, flags Flags, opts ...Option) (*Ref, error) {
	return Start(func(...interface{}) (Spec, error) {
		return Spec{Children: []ChildSpec{spec}, Flags: flags}, nil
	}, opts...)
}

func start(init InitFunc, opts ...Option) (*Ref, *actor.PID, error) {
	o := &startOptions{
		clock: clock.Real(),
	}
	for _, opt := range opts {
		opt(o)
	}

	ack := make(chan error, 1)
	fn := func(a *actor.Actor) {
		run(a, init, o, ack)
	}

	var pid *actor.PID
	if o.parent != nil {
		pid = o.parent.SpawnLink(fn)
	} else {
		pid = actor.Spawn(fn)
	}

	select {
	case err := <-ack:
		if err != nil {
			<-pid.Done()
			return nil, pid, err
		}
	case <-pid.Done():
		reason, _ := pid.ExitReason()
		return nil, pid, fmt.Errorf("supervisor exited during init: %s", reason)
	}
	return &Ref{pid: pid}, pid, nil
}

func run(a *actor.Actor, init InitFunc, o *startOptions, ack chan<- error) {
	// children are linked to us, and so is the parent
	a.TrapExit(true)

	fail := func(err error) {
		if o.parent != nil {
			a.Unlink(o.parent.Self())
		}
		ack <- err
	}

	spec, fault, err := runInit(init, o.args)
	if fault != nil {
		fail(fault)
		return
	}
	childSpec, flags, err := checkInit(spec, err)
	if err != nil {
		fail(err)
		return
	}

	name := o.name
	if name == "" {
		name = flags.Name
	}
	label := name
	if name != "" {
		if err := actor.Register(name, a.Self()); err != nil {
			fail(err)
			return
		}
	} else {
		name = a.Self().ID()
		label = metrics.Anonymous
	}

	if o.logger == nil {
		l := logging.With().Str("component", "supervisor").Logger()
		o.logger = &l
	}
	s := newState(a, childSpec, flags, name, label, o)
	defer s.releaseMetrics()
	s.phase = phaseRunning
	ack <- nil

	a.Receive(s.handle)
}
