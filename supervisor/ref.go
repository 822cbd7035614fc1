package supervisor

import (
	"context"
	"fmt"

	"github.com/hedisam/goactor/actor"
	"github.com/hedisam/goactor/sysmsg"
)

// Ref is a handle on a running supervisor. Its methods are synchronous calls; they return
// actor.ErrNoProc once the supervisor is gone.
type Ref struct {
	pid *actor.PID
}

// Lookup finds a supervisor started with a name.
func Lookup(name string) (*Ref, error) {
	pid := actor.WhereIs(name)
	if pid == nil {
		return nil, fmt.Errorf("%w: %s", actor.ErrNoProc, name)
	}
	return &Ref{pid: pid}, nil
}

func (r *Ref) PID() *actor.PID {
	return r.pid
}

// Done is closed when the supervisor has terminated.
func (r *Ref) Done() <-chan struct{} {
	return r.pid.Done()
}

// Reason is the supervisor's exit reason, the zero Reason while it's alive.
func (r *Ref) Reason() sysmsg.Reason {
	reason, _ := r.pid.ExitReason()
	return reason
}

// StartChild starts a child with the template's StartFunc and args. The returned Child is
// Ignored if the StartFunc returned ErrIgnore. A declined start is a *StartError, a
// StartFunc that panicked or aborted is a *Fault; neither changes the supervisor's state.
func (r *Ref) StartChild(ctx context.Context, args ...interface{}) (Child, error) {
	reply, err := r.call(ctx, startChildRequest{args: args})
	if err != nil {
		return Child{}, err
	}
	return reply.(Child), nil
}

func (r *Ref) CountChildren(ctx context.Context) (Counts, error) {
	reply, err := r.call(ctx, countChildrenRequest{})
	if err != nil {
		return Counts{}, err
	}
	return reply.(Counts), nil
}

func (r *Ref) WhichChildren(ctx context.Context) ([]ChildInfo, error) {
	reply, err := r.call(ctx, whichChildrenRequest{})
	if err != nil {
		return nil, err
	}
	return reply.([]ChildInfo), nil
}

// TerminateChild shuts the child down and forgets it; it is not restarted.
func (r *Ref) TerminateChild(ctx context.Context, pid *actor.PID) error {
	_, err := r.call(ctx, terminateChildRequest{pid: pid})
	return err
}

// Stop shuts every child down, then terminates the supervisor with reason and waits for it.
func (r *Ref) Stop(ctx context.Context, reason sysmsg.Reason) error {
	if _, err := r.call(ctx, stopRequest{reason: reason}); err != nil {
		return err
	}
	select {
	case <-r.pid.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", actor.ErrTimeout, ctx.Err())
	}
}

func (r *Ref) call(ctx context.Context, request interface{}) (interface{}, error) {
	reply, err := actor.Call(ctx, r.pid, request)
	if err != nil {
		return nil, err
	}
	if err, ok := reply.(error); ok {
		return nil, err
	}
	return reply, nil
}
