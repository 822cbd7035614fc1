package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedisam/goactor/sysmsg"
)

const waitFor = time.Second

// echo replies to every Request and exits on the messages below
func echo(a *Actor) {
	a.Receive(func(message interface{}) bool {
		switch msg := message.(type) {
		case Request:
			msg.Reply(msg.Body)
		case string:
			if msg == "stop" {
				return false
			}
			if msg == "panic" {
				panic("boom")
			}
		case sysmsg.Reason:
			Abort(msg)
		}
		return true
	})
}

func waitDone(t *testing.T, pid *PID) sysmsg.Reason {
	t.Helper()
	select {
	case <-pid.Done():
	case <-time.After(waitFor):
		t.Fatalf("process %s didn't terminate", pid)
	}
	reason, ok := pid.ExitReason()
	require.True(t, ok)
	return reason
}

func receiveOne(t *testing.T, a *Actor) interface{} {
	t.Helper()
	var got interface{}
	a.ReceiveWithTimeout(waitFor, func(message interface{}) bool {
		got = message
		return false
	})
	if _, ok := got.(sysmsg.Timeout); ok {
		t.Fatal("no message received")
	}
	return got
}

func TestSpawn_ExitReasons(t *testing.T) {
	tests := []struct {
		name    string
		message interface{}
		want    string
	}{
		{name: "return", message: "stop", want: sysmsg.Normal},
		{name: "panic", message: "panic", want: sysmsg.Panic},
		{name: "abort", message: sysmsg.ShutdownReason(), want: sysmsg.Shutdown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid := Spawn(echo)
			assert.True(t, pid.Alive())
			Send(pid, tt.message)
			assert.Equal(t, tt.want, waitDone(t, pid).Type)
			assert.False(t, pid.Alive())
		})
	}
}

func TestSpawn_Args(t *testing.T) {
	got := make(chan []interface{}, 1)
	Spawn(func(a *Actor) { got <- a.Args() }, 1, "two")
	select {
	case args := <-got:
		assert.Equal(t, []interface{}{1, "two"}, args)
	case <-time.After(waitFor):
		t.Fatal("no args")
	}
}

func TestMonitor(t *testing.T) {
	parent, done := NewParentActor()
	defer done()

	pid := Spawn(echo)
	ref := parent.Monitor(pid)
	Send(pid, "panic")

	down, ok := receiveOne(t, parent).(sysmsg.Down)
	require.True(t, ok)
	assert.Equal(t, ref, down.Ref)
	assert.Equal(t, pid, down.Who)
	assert.Equal(t, sysmsg.Panic, down.Reason.Type)
	assert.Equal(t, "boom", down.Reason.Details)
}

func TestMonitor_DeadProcess(t *testing.T) {
	parent, done := NewParentActor()
	defer done()

	pid := Spawn(echo)
	Send(pid, "stop")
	waitDone(t, pid)

	ref := parent.Monitor(pid)
	down, ok := receiveOne(t, parent).(sysmsg.Down)
	require.True(t, ok)
	assert.Equal(t, ref, down.Ref)
	assert.True(t, down.Reason.IsNormal())
}

func TestDemonitor(t *testing.T) {
	parent, done := NewParentActor()
	defer done()

	pid := Spawn(echo)
	ref := parent.Monitor(pid)
	parent.Demonitor(ref)
	Send(pid, "stop")
	waitDone(t, pid)

	var got interface{}
	parent.ReceiveWithTimeout(20*time.Millisecond, func(message interface{}) bool {
		got = message
		return false
	})
	assert.IsType(t, sysmsg.Timeout{}, got)
}

func TestSpawnLink_PropagatesAbnormalExit(t *testing.T) {
	parent, done := NewParentActor()
	defer done()
	parent.TrapExit(true)

	middle := make(chan *PID, 1)
	pid := parent.SpawnLink(func(a *Actor) {
		middle <- a.SpawnLink(echo)
		a.Receive(func(message interface{}) bool { return true })
	})
	child := <-middle

	Send(child, "panic")

	exit, ok := receiveOne(t, parent).(sysmsg.Exit)
	require.True(t, ok)
	assert.Equal(t, pid, exit.Who)
	assert.Equal(t, sysmsg.Panic, exit.Reason.Type)
	assert.Equal(t, sysmsg.Panic, waitDone(t, pid).Type)
}

func TestSpawnLink_NormalExitDoesNotPropagate(t *testing.T) {
	survivor := Spawn(echo)
	linked := make(chan *PID, 1)
	Spawn(func(a *Actor) {
		a.Link(survivor)
		linked <- a.Self()
	})
	waitDone(t, <-linked)

	reply, err := Call(context.Background(), survivor, "ping")
	require.NoError(t, err)
	assert.Equal(t, "ping", reply)
	Send(survivor, "stop")
}

func TestExit(t *testing.T) {
	pid := Spawn(echo)
	Exit(pid, sysmsg.ShutdownReason())
	assert.True(t, waitDone(t, pid).IsShutdown())

	// normal signals are ignored by processes that don't trap exits
	pid = Spawn(echo)
	Exit(pid, sysmsg.NormalReason())
	reply, err := Call(context.Background(), pid, "still here")
	require.NoError(t, err)
	assert.Equal(t, "still here", reply)
	Send(pid, "stop")
	waitDone(t, pid)
}

func TestExit_Trapped(t *testing.T) {
	parent, done := NewParentActor()
	defer done()
	parent.TrapExit(true)

	Exit(parent.Self(), sysmsg.ShutdownReason())
	exit, ok := receiveOne(t, parent).(sysmsg.Exit)
	require.True(t, ok)
	assert.Nil(t, exit.Who)
	assert.True(t, exit.Reason.IsShutdown())
}

func TestExit_KillCantBeTrapped(t *testing.T) {
	pid := Spawn(func(a *Actor) {
		a.TrapExit(true)
		a.Receive(func(message interface{}) bool { return true })
	})
	Exit(pid, sysmsg.KillReason())
	assert.Equal(t, sysmsg.Kill, waitDone(t, pid).Type)
}

func TestExit_KillReplacesPendingExit(t *testing.T) {
	release := make(chan struct{})
	pid := Spawn(func(a *Actor) {
		// busy, neither receiving nor watching its context
		<-release
		a.Receive(func(message interface{}) bool { return true })
	})
	Exit(pid, sysmsg.ShutdownReason())
	Exit(pid, sysmsg.KillReason())
	Exit(pid, sysmsg.Reason{Type: "late"})
	close(release)
	assert.Equal(t, sysmsg.Kill, waitDone(t, pid).Type)
}

func TestExit_CancelsContext(t *testing.T) {
	pid := Spawn(func(a *Actor) {
		<-a.Context().Done()
	})
	Exit(pid, sysmsg.ShutdownReason())
	assert.True(t, waitDone(t, pid).IsShutdown())
}

func TestAbortReason(t *testing.T) {
	var recovered interface{}
	func() {
		defer func() { recovered = recover() }()
		Abort(sysmsg.KillReason())
	}()
	reason, ok := AbortReason(recovered)
	assert.True(t, ok)
	assert.Equal(t, sysmsg.KillReason(), reason)

	_, ok = AbortReason("boom")
	assert.False(t, ok)
}

func TestCall(t *testing.T) {
	pid := Spawn(echo)
	defer Send(pid, "stop")

	reply, err := Call(context.Background(), pid, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, reply)
}

func TestCall_NoProc(t *testing.T) {
	pid := Spawn(echo)
	Send(pid, "stop")
	waitDone(t, pid)

	_, err := Call(context.Background(), pid, 42)
	assert.ErrorIs(t, err, ErrNoProc)
}

func TestCall_Timeout(t *testing.T) {
	pid := Spawn(func(a *Actor) {
		a.Receive(func(message interface{}) bool { return true })
	})
	defer Exit(pid, sysmsg.KillReason())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Call(ctx, pid, 42)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRegistry(t *testing.T) {
	pid := Spawn(echo)

	require.NoError(t, Register("registry-test", pid))
	assert.Equal(t, pid, WhereIs("registry-test"))
	assert.ErrorIs(t, Register("registry-test", Spawn(echo)), ErrAlreadyRegistered)
	require.NoError(t, SendNamed("registry-test", "ping"))

	Send(pid, "stop")
	waitDone(t, pid)
	assert.Eventually(t, func() bool { return WhereIs("registry-test") == nil }, waitFor, 5*time.Millisecond)
	assert.ErrorIs(t, SendNamed("registry-test", "ping"), ErrNoProc)
}

func TestRegistry_Unregister(t *testing.T) {
	pid := Spawn(echo)
	defer Send(pid, "stop")

	require.NoError(t, Register("registry-unregister", pid))
	Unregister("registry-unregister")
	assert.Nil(t, WhereIs("registry-unregister"))
	assert.ErrorIs(t, Register("registry-dead", func() *PID {
		dead := Spawn(echo)
		Send(dead, "stop")
		waitDone(t, dead)
		return dead
	}()), ErrNoProc)
}
