package supervisor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedisam/goactor/actor"
	"github.com/hedisam/goactor/sysmsg"
)

func TestStartChild_Outcomes(t *testing.T) {
	sup, done := actor.NewParentActor()
	defer done()

	errUnavailable := errors.New("unavailable")

	t.Run("started", func(t *testing.T) {
		out := startChild(sup, func(sup *actor.Actor, args ...interface{}) (*actor.PID, interface{}, error) {
			return sup.SpawnLink(worker, args...), "extra", nil
		}, []interface{}{1})
		s, ok := out.(started)
		require.True(t, ok)
		assert.NotNil(t, s.pid)
		assert.Equal(t, "extra", s.extra)
		sup.Unlink(s.pid)
		actor.Exit(s.pid, sysmsg.KillReason())
	})

	t.Run("ignored", func(t *testing.T) {
		out := startChild(sup, func(*actor.Actor, ...interface{}) (*actor.PID, interface{}, error) {
			return nil, nil, ErrIgnore
		}, nil)
		assert.Equal(t, ignored{}, out)
	})

	t.Run("declined", func(t *testing.T) {
		out := startChild(sup, func(*actor.Actor, ...interface{}) (*actor.PID, interface{}, error) {
			return nil, nil, errUnavailable
		}, nil)
		assert.Equal(t, declined{err: errUnavailable}, out)
	})

	t.Run("no pid", func(t *testing.T) {
		out := startChild(sup, func(*actor.Actor, ...interface{}) (*actor.PID, interface{}, error) {
			return nil, nil, nil
		}, nil)
		assert.Equal(t, declined{err: ErrNoPID}, out)
	})
}

func TestStartChild_Faults(t *testing.T) {
	sup, done := actor.NewParentActor()
	defer done()

	errBoom := errors.New("boom")
	tests := []struct {
		name      string
		start     StartFunc
		class     FaultClass
		withStack bool
	}{
		{
			name: "throw",
			start: func(*actor.Actor, ...interface{}) (*actor.PID, interface{}, error) {
				panic("boom")
			},
			class:     FaultThrow,
			withStack: true,
		},
		{
			name: "error",
			start: func(*actor.Actor, ...interface{}) (*actor.PID, interface{}, error) {
				panic(errBoom)
			},
			class:     FaultError,
			withStack: true,
		},
		{
			name: "exit",
			start: func(*actor.Actor, ...interface{}) (*actor.PID, interface{}, error) {
				actor.Abort(sysmsg.Reason{Type: "unavailable"})
				return nil, nil, nil
			},
			class: FaultExit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := startChild(sup, tt.start, nil).(faulted)
			require.True(t, ok)
			assert.Equal(t, tt.class, out.fault.Class)
			if tt.withStack {
				assert.NotEmpty(t, out.fault.Stack)
			} else {
				assert.Nil(t, out.fault.Stack)
			}
		})
	}

	out := startChild(sup, tests[1].start, nil).(faulted)
	assert.ErrorIs(t, out.fault, errBoom)

	out = startChild(sup, tests[2].start, nil).(faulted)
	assert.Equal(t, sysmsg.Reason{Type: "unavailable"}, out.fault.Reason)
	assert.Equal(t, "start function exited: unavailable", out.fault.Error())
}

func TestRunInit(t *testing.T) {
	spec, fault, err := runInit(func(args ...interface{}) (Spec, error) {
		return Spec{Flags: args[0]}, nil
	}, []interface{}{"flags"})
	require.NoError(t, err)
	assert.Nil(t, fault)
	assert.Equal(t, "flags", spec.Flags)

	_, fault, _ = runInit(func(...interface{}) (Spec, error) {
		panic("bad init")
	}, nil)
	require.NotNil(t, fault)
	assert.Equal(t, FaultThrow, fault.Class)
	assert.Equal(t, "bad init", fault.Value)
}
