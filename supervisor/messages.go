package supervisor

import (
	"github.com/google/uuid"

	"github.com/hedisam/goactor/actor"
	"github.com/hedisam/goactor/sysmsg"
)

// requests, sent through actor.Call

type startChildRequest struct {
	args []interface{}
}

type countChildrenRequest struct{}

type whichChildrenRequest struct{}

type terminateChildRequest struct {
	pid *actor.PID
}

type stopRequest struct {
	reason sysmsg.Reason
}

type ok struct{}

// retryRestart is sent by the supervisor to itself once a failed restart's backoff elapsed
type retryRestart struct {
	id uuid.UUID
}

// Child is the StartChild result. PID is nil when the StartFunc returned ErrIgnore.
type Child struct {
	PID   *actor.PID
	Extra interface{}
}

func (c Child) Ignored() bool {
	return c.PID == nil
}
