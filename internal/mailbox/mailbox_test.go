package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedisam/goactor/sysmsg"
)

func passAll(msg interface{}) (bool, interface{}) { return true, msg }

func TestQueueMailbox_ReceiveInOrder(t *testing.T) {
	m := NewQueueMailbox(passAll)
	defer m.Dispose()

	for i := 0; i < 10; i++ {
		m.SendUserMessage(i)
	}

	var got []int
	m.Receive(func(message interface{}) bool {
		got = append(got, message.(int))
		return len(got) < 10
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestQueueMailbox_SystemMessagesFirst(t *testing.T) {
	m := NewQueueMailbox(passAll)
	defer m.Dispose()

	m.SendUserMessage("user")
	m.SendSystemMessage(sysmsg.Down{Reason: sysmsg.NormalReason()})

	var got []interface{}
	m.Receive(func(message interface{}) bool {
		got = append(got, message)
		return len(got) < 2
	})
	require.Len(t, got, 2)
	assert.IsType(t, sysmsg.Down{}, got[0])
	assert.Equal(t, "user", got[1])
}

func TestQueueMailbox_SystemHandlerFilters(t *testing.T) {
	m := NewQueueMailbox(func(msg interface{}) (bool, interface{}) {
		return false, nil
	})
	defer m.Dispose()

	m.SendSystemMessage(sysmsg.Exit{})
	m.SendUserMessage("user")

	var got []interface{}
	m.Receive(func(message interface{}) bool {
		got = append(got, message)
		return false
	})
	assert.Equal(t, []interface{}{"user"}, got)
}

func TestQueueMailbox_BlocksUntilMessage(t *testing.T) {
	m := NewQueueMailbox(passAll)
	defer m.Dispose()

	go func() {
		time.Sleep(20 * time.Millisecond)
		m.SendUserMessage("late")
	}()

	var got interface{}
	m.Receive(func(message interface{}) bool {
		got = message
		return false
	})
	assert.Equal(t, "late", got)
}

func TestQueueMailbox_ReceiveWithTimeout(t *testing.T) {
	m := NewQueueMailbox(passAll)
	defer m.Dispose()

	var got interface{}
	m.ReceiveWithTimeout(10*time.Millisecond, func(message interface{}) bool {
		got = message
		return false
	})
	assert.Equal(t, sysmsg.Timeout{Duration: 10 * time.Millisecond}, got)
}

func TestQueueMailbox_Dispose(t *testing.T) {
	m := NewQueueMailbox(passAll)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Receive(func(message interface{}) bool { return true })
	}()

	m.Dispose()
	m.Dispose()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receive didn't return after dispose")
	}

	// sends after dispose are dropped without blocking
	m.SendUserMessage("dropped")
	m.SendSystemMessage(sysmsg.Exit{})
}

func TestFutureMailbox(t *testing.T) {
	f := NewFutureMailbox()
	defer f.Dispose()

	f.SendUserMessage("reply")
	f.SendSystemMessage(sysmsg.Down{})

	msg, err := f.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "reply", msg)
}

func TestFutureMailbox_ContextDone(t *testing.T) {
	f := NewFutureMailbox()
	defer f.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFutureMailbox_Disposed(t *testing.T) {
	f := NewFutureMailbox()
	f.Dispose()

	_, err := f.Receive(context.Background())
	assert.ErrorIs(t, err, ErrDisposed)
}
