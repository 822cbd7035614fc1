package supervisor

import (
	"github.com/hedisam/goactor/actor"
	"github.com/hedisam/goactor/sysmsg"
)

// subscribe links the supervisor with a freshly started child and monitors it. The child's
// Down is what the supervisor reacts to; the link only makes the child die with its supervisor.
func subscribe(sup *actor.Actor, pid *actor.PID) sysmsg.Ref {
	sup.Link(pid)
	return sup.Monitor(pid)
}

// unsubscribe cancels both, so a child being shut down on purpose is not restarted.
func unsubscribe(sup *actor.Actor, pid *actor.PID, monitor sysmsg.Ref) {
	sup.Demonitor(monitor)
	sup.Unlink(pid)
}
