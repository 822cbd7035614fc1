package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hedisam/goactor/actor"
	"github.com/hedisam/goactor/internal/clock"
	"github.com/hedisam/goactor/internal/metrics"
	"github.com/hedisam/goactor/sysmsg"
)

type phase int32

const (
	phaseInitializing phase = iota
	phaseRunning
	phaseTerminating
)

type state struct {
	self *actor.Actor
	// name labels logs: the registered name or the pid
	name string
	// label labels metrics: the registered name or metrics.Anonymous
	label string
	// reported is what this supervisor added to the active children gauge
	reported  int
	spec      ChildSpec
	flags     Flags
	children  *registry
	intensity *intensity
	phase     phase
	parent    *actor.PID
	clock     clock.Clock
	logger    zerolog.Logger
}

func newState(self *actor.Actor, spec ChildSpec, flags Flags, name, label string, o *startOptions) *state {
	s := &state{
		self:      self,
		name:      name,
		label:     label,
		spec:      spec,
		flags:     flags,
		children:  newRegistry(),
		intensity: newIntensity(flags.MaxRestarts, flags.MaxSeconds),
		phase:     phaseInitializing,
		clock:     o.clock,
		logger:    o.logger.With().Str("supervisor", name).Logger(),
	}
	if o.parent != nil {
		s.parent = o.parent.Self()
	}
	return s
}

func (s *state) handle(message interface{}) (loop bool) {
	switch msg := message.(type) {
	case actor.Request:
		s.handleCall(msg)
	case sysmsg.Down:
		s.handleDown(msg)
	case sysmsg.Exit:
		s.handleExit(msg)
	case retryRestart:
		s.handleRetry(msg)
	default:
		s.logger.Debug().Interface("message", msg).Msg("unexpected message")
	}
	return true
}

func (s *state) handleCall(call actor.Request) {
	if s.phase == phaseTerminating {
		call.Reply(ErrTerminating)
		return
	}

	switch request := call.Body.(type) {
	case startChildRequest:
		call.Reply(s.startChild(request.args))
	case countChildrenRequest:
		call.Reply(s.children.counts(s.spec.Type))
	case whichChildrenRequest:
		call.Reply(s.children.infos(s.spec.Type))
	case terminateChildRequest:
		if err := s.terminateChild(request.pid); err != nil {
			call.Reply(err)
			return
		}
		call.Reply(ok{})
	case stopRequest:
		s.phase = phaseTerminating
		s.shutdownChildren()
		call.Reply(ok{})
		s.exit(request.reason)
	default:
		call.Reply(fmt.Errorf("unknown supervisor request %T", request))
	}
}

// startChild replies with a Child or an error.
func (s *state) startChild(args []interface{}) interface{} {
	if s.flags.MaxChildren > 0 && s.children.len() >= s.flags.MaxChildren {
		return ErrMaxChildren
	}
	args = s.childArgs(args)

	result := startChild(s.self, s.spec.Start, args)
	switch out := result.(type) {
	case started:
		c := s.children.add(args, newRetryBackoff(s.flags.RetryBackoff))
		s.subscribe(c, out.pid)
		metrics.RecordStart(s.label, metrics.ResultStarted)
		s.logger.Debug().Str("child", c.id.String()).Str("pid", out.pid.ID()).Msg("child started")
		return Child{PID: out.pid, Extra: out.extra}
	case ignored:
		metrics.RecordStart(s.label, metrics.ResultIgnored)
		return Child{}
	case declined:
		metrics.RecordStart(s.label, metrics.ResultDeclined)
		s.logger.Debug().Err(out.err).Msg("start_error")
		return &StartError{Err: out.err}
	case faulted:
		metrics.RecordStart(s.label, metrics.ResultFaulted)
		s.logger.Debug().Err(out.fault).Str("class", out.fault.Class.String()).Msg("start_error")
		return out.fault
	}
	panic(fmt.Sprintf("unknown start outcome %T", result))
}

func (s *state) childArgs(args []interface{}) []interface{} {
	if len(s.flags.ExtraArgs) == 0 {
		return args
	}
	all := make([]interface{}, 0, len(s.flags.ExtraArgs)+len(args))
	all = append(all, s.flags.ExtraArgs...)
	return append(all, args...)
}

func (s *state) subscribe(c *child, pid *actor.PID) {
	s.children.attach(c, pid, subscribe(s.self, pid))
	s.reportActive()
}

func (s *state) handleDown(down sysmsg.Down) {
	pid, isPID := down.Who.(*actor.PID)
	if !isPID {
		return
	}
	c, found := s.children.lookup(pid)
	if !found || c.monitor != down.Ref {
		// a child we shut down on purpose, its Down was already queued
		return
	}

	s.children.detach(c)
	s.self.Unlink(pid)
	s.reportActive()

	if !shouldRestart(s.spec.Restart, down.Reason) {
		s.children.remove(c)
		s.logger.Debug().Str("child", c.id.String()).Stringer("reason", down.Reason).Msg("child terminated")
		return
	}
	s.logger.Warn().Str("child", c.id.String()).Stringer("reason", down.Reason).Msg("child terminated, restarting")
	s.restart(c)
}

func shouldRestart(restart Restart, reason sysmsg.Reason) bool {
	switch restart {
	case Permanent:
		return true
	case Transient:
		return !reason.IsNormal() && !reason.IsShutdown()
	default:
		return false
	}
}

// restart counts against the intensity before every attempt, retries included.
func (s *state) restart(c *child) {
	if !s.intensity.recordAndCheck(s.clock.Now()) {
		s.logger.Error().
			Int("max_restarts", s.flags.MaxRestarts).
			Int("max_seconds", s.flags.MaxSeconds).
			Msg("restart intensity reached, shutting down")
		metrics.RecordIntensityExhausted(s.label)
		// no waiting on the children: the shutdown reaches them through their links
		s.exit(sysmsg.Reason{Type: sysmsg.Shutdown, Details: sysmsg.SupMaxRestart})
	}

	switch out := startChild(s.self, s.spec.Start, c.args).(type) {
	case started:
		c.backoff.Reset()
		s.subscribe(c, out.pid)
		metrics.RecordRestart(s.label, metrics.ResultStarted)
		s.logger.Debug().Str("child", c.id.String()).Str("pid", out.pid.ID()).Msg("child restarted")
	case ignored:
		s.retryLater(c, metrics.ResultIgnored, ErrIgnore)
	case declined:
		s.retryLater(c, metrics.ResultDeclined, out.err)
	case faulted:
		s.retryLater(c, metrics.ResultFaulted, out.fault)
	}
}

// retryLater keeps the record without a process and schedules another attempt.
func (s *state) retryLater(c *child, result string, err error) {
	delay := c.backoff.NextBackOff()
	s.logger.Error().Err(err).Str("child", c.id.String()).Dur("retry_in", delay).Msg("restart failed")
	metrics.RecordRestart(s.label, result)

	self, id := s.self.Self(), c.id
	c.retry = s.clock.AfterFunc(delay, func() {
		actor.Send(self, retryRestart{id: id})
	})
}

func (s *state) handleRetry(msg retryRestart) {
	c, found := s.children.get(msg.id)
	if !found || c.pid != nil {
		return
	}
	c.retry = nil
	s.restart(c)
}

// handleExit only cares about the parent: children are watched through their monitors.
func (s *state) handleExit(exit sysmsg.Exit) {
	if s.parent == nil || exit.Who != sysmsg.Process(s.parent) {
		return
	}
	s.logger.Debug().Stringer("reason", exit.Reason).Msg("parent exited")
	s.phase = phaseTerminating
	s.shutdownChildren()
	s.exit(exit.Reason)
}

func (s *state) terminateChild(pid *actor.PID) error {
	c, found := s.children.lookup(pid)
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, pid)
	}
	s.shutdownChild(c)
	s.children.remove(c)
	s.reportActive()
	return nil
}

func (s *state) shutdownChildren() {
	for _, c := range s.children.list() {
		if c.pid != nil {
			s.shutdownChild(c)
		}
		s.children.remove(c)
	}
}

// shutdownChild asks the child to exit with shutdown and waits up to the template's
// Shutdown milliseconds before killing it.
func (s *state) shutdownChild(c *child) {
	pid := c.pid
	unsubscribe(s.self, pid, c.monitor)

	if s.spec.Shutdown == ShutdownBrutalKill {
		s.self.Exit(pid, sysmsg.KillReason())
		return
	}

	f := actor.NewFuture()
	defer f.Dispose()
	f.Monitor(pid)
	s.self.Exit(pid, sysmsg.ShutdownReason())

	ctx := context.Background()
	if s.spec.Shutdown != ShutdownInfinity {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.spec.Shutdown)*time.Millisecond)
		defer cancel()
	}
	if _, err := f.Receive(ctx); err != nil {
		s.logger.Warn().Str("pid", pid.ID()).Int("shutdown_ms", s.spec.Shutdown).Msg("child didn't shut down in time, killing it")
		s.self.Exit(pid, sysmsg.KillReason())
	}
}

// exit terminates the supervisor. Linked children that don't trap exits go down with it.
func (s *state) exit(reason sysmsg.Reason) {
	s.phase = phaseTerminating
	actor.Abort(reason)
}

// reportActive moves the shared gauge by the change in active children since the last report.
func (s *state) reportActive() {
	active := s.children.active()
	metrics.AddChildrenActive(s.label, active-s.reported)
	s.reported = active
}

// releaseMetrics takes this supervisor's children out of the gauge, however it terminated.
func (s *state) releaseMetrics() {
	metrics.AddChildrenActive(s.label, -s.reported)
	s.reported = 0
}
