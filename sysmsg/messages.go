package sysmsg

import (
	"time"
)

// Exit is received by a process trapping exits when a linked process terminates,
// or when someone sends it an exit signal.
type Exit struct {
	// Who is the process that terminated or sent the signal; nil for anonymous signals
	Who Process
	// Reason behind the termination
	Reason Reason
}

func (Exit) systemMessage() {}

// Down is delivered once to the monitoring process when the monitored process terminates.
type Down struct {
	// Ref is the reference returned when the monitor was established
	Ref Ref
	// Who is the process that terminated
	Who Process
	// Reason behind the termination
	Reason Reason
}

func (Down) systemMessage() {}

// Timeout is passed to the handler of a receive that got nothing within Duration.
type Timeout struct {
	Duration time.Duration
}

func (Timeout) systemMessage() {}
