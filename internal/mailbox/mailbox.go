// Package mailbox implements the per-process message queues.
package mailbox

import (
	"errors"
	"time"
)

const (
	defaultUserMailboxCap = 1024
)

// ErrDisposed is handed to a future's handler when it was disposed before getting a message.
var ErrDisposed = errors.New("mailbox is disposed")

// MessageHandler processes one message and tells the mailbox whether to keep receiving.
type MessageHandler func(message interface{}) (loop bool)

// SystemHandler filters system messages before they reach the user's handler.
// It may panic to terminate the owning process.
type SystemHandler func(message interface{}) (passToUser bool, msg interface{})

type Mailbox interface {
	SendUserMessage(message interface{})
	SendSystemMessage(message interface{})
	Receive(handler MessageHandler)
	ReceiveWithTimeout(d time.Duration, handler MessageHandler)
	Dispose()
}
