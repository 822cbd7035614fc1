package supervisor

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/hedisam/goactor/actor"
	"github.com/hedisam/goactor/internal/clock"
	"github.com/hedisam/goactor/sysmsg"
)

const maxRetryBackoff = time.Second

// child is one started child. pid is nil while a failed restart waits for its retry.
type child struct {
	id      uuid.UUID
	pid     *actor.PID
	monitor sysmsg.Ref
	// args the child was started with and gets restarted with
	args    []interface{}
	backoff *backoff.ExponentialBackOff
	retry   *clock.Timer
}

func newRetryBackoff(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = 2
	b.MaxInterval = maxRetryBackoff
	b.RandomizationFactor = 0
	// only the restart intensity stops the retries
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Counts is the CountChildren result. Supervisors and Workers break down Active.
type Counts struct {
	Specs       int
	Active      int
	Supervisors int
	Workers     int
}

// ChildInfo describes one child in WhichChildren. PID is nil while the child is restarting.
type ChildInfo struct {
	PID        *actor.PID
	Type       ChildType
	Restarting bool
}

type registry struct {
	children map[uuid.UUID]*child
	byPID    map[*actor.PID]*child
	// start order, for WhichChildren
	order []uuid.UUID
}

func newRegistry() *registry {
	return &registry{
		children: make(map[uuid.UUID]*child),
		byPID:    make(map[*actor.PID]*child),
	}
}

func (r *registry) add(args []interface{}, b *backoff.ExponentialBackOff) *child {
	c := &child{
		id:      uuid.New(),
		args:    args,
		backoff: b,
	}
	r.children[c.id] = c
	r.order = append(r.order, c.id)
	return c
}

func (r *registry) attach(c *child, pid *actor.PID, monitor sysmsg.Ref) {
	c.pid = pid
	c.monitor = monitor
	r.byPID[pid] = c
}

// detach keeps the record but forgets its dead process.
func (r *registry) detach(c *child) {
	if c.pid != nil {
		delete(r.byPID, c.pid)
	}
	c.pid = nil
	c.monitor = ""
}

func (r *registry) remove(c *child) {
	r.detach(c)
	if c.retry != nil {
		c.retry.Stop()
	}
	delete(r.children, c.id)
	for i, id := range r.order {
		if id == c.id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *registry) lookup(pid *actor.PID) (*child, bool) {
	c, ok := r.byPID[pid]
	return c, ok
}

func (r *registry) get(id uuid.UUID) (*child, bool) {
	c, ok := r.children[id]
	return c, ok
}

func (r *registry) len() int {
	return len(r.children)
}

func (r *registry) active() int {
	return len(r.byPID)
}

// list returns the records in start order.
func (r *registry) list() []*child {
	children := make([]*child, 0, len(r.order))
	for _, id := range r.order {
		children = append(children, r.children[id])
	}
	return children
}

// counts reports every child as being of the template's type t.
func (r *registry) counts(t ChildType) Counts {
	counts := Counts{
		Specs:  r.len(),
		Active: r.active(),
	}
	if t == Supervisor {
		counts.Supervisors = counts.Active
	} else {
		counts.Workers = counts.Active
	}
	return counts
}

func (r *registry) infos(t ChildType) []ChildInfo {
	infos := make([]ChildInfo, 0, r.len())
	for _, c := range r.list() {
		infos = append(infos, ChildInfo{
			PID:        c.pid,
			Type:       t,
			Restarting: c.pid == nil,
		})
	}
	return infos
}
