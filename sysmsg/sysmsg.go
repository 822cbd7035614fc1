// Package sysmsg holds the messages the runtime exchanges between processes
// when they link, monitor, or terminate.
package sysmsg

import "fmt"

type SystemMessage interface {
	systemMessage()
}

// Reason tells why a process terminated.
type Reason struct {
	Type    string
	Details interface{}
}

const (
	// Normal is the reason of a process that returned on its own
	Normal = "normal"
	// Shutdown is sent by supervisors to terminate a child, and used by a supervisor
	// that gives up restarting
	Shutdown = "shutdown"
	// Kill can't be trapped
	Kill = "kill"
	// Panic is the reason of a process whose function panicked; Details holds the panic value
	Panic = "panic"
	// NoProc is reported for a process that is not alive
	NoProc = "noproc"
	// SupMaxRestart is set as Details when a supervisor reached its restart intensity
	SupMaxRestart = "sup_reached_max_restarts"
)

// IsNormal reports whether the reason is Normal.
func (r Reason) IsNormal() bool {
	return r.Type == Normal
}

// IsShutdown reports whether the reason is Shutdown, with or without details.
func (r Reason) IsShutdown() bool {
	return r.Type == Shutdown
}

func (r Reason) String() string {
	if r.Details == nil {
		return r.Type
	}
	return fmt.Sprintf("%s: %v", r.Type, r.Details)
}

// NormalReason, ShutdownReason and KillReason are shorthands for the common reasons.
func NormalReason() Reason   { return Reason{Type: Normal} }
func ShutdownReason() Reason { return Reason{Type: Shutdown} }
func KillReason() Reason     { return Reason{Type: Kill} }

// Process is implemented by *actor.PID. It keeps this package free of the runtime.
type Process interface {
	ID() string
}

// Ref identifies one monitor.
type Ref string
