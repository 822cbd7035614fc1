package actor

import (
	"context"
	"fmt"
	"sync"

	"github.com/hedisam/goactor/sysmsg"
)

var (
	registryOnce sync.Once
	registryPID  *PID
)

type registration struct {
	pid *PID
	ref sysmsg.Ref
}

type cmdRegister struct {
	name string
	pid  *PID
}
type cmdUnregister struct {
	name string
}
type cmdWhereIs struct {
	name string
}

func registryProcess() *PID {
	registryOnce.Do(func() {
		registryPID = Spawn(registry)
	})
	return registryPID
}

// Register names pid until it terminates or gets unregistered.
func Register(name string, pid *PID) error {
	reply, err := Call(context.Background(), registryProcess(), cmdRegister{name: name, pid: pid})
	if err != nil {
		return err
	}
	if err, ok := reply.(error); ok {
		return err
	}
	return nil
}

func Unregister(name string) {
	_, _ = Call(context.Background(), registryProcess(), cmdUnregister{name: name})
}

// WhereIs returns nil if no live process is registered under name.
func WhereIs(name string) *PID {
	reply, err := Call(context.Background(), registryProcess(), cmdWhereIs{name: name})
	if err != nil {
		return nil
	}
	pid, _ := reply.(*PID)
	return pid
}

func registry(a *Actor) {
	names := make(map[string]registration)
	refs := make(map[sysmsg.Ref]string)

	a.Receive(func(message interface{}) (loop bool) {
		switch msg := message.(type) {
		case Request:
			switch cmd := msg.Body.(type) {
			case cmdRegister:
				if _, ok := names[cmd.name]; ok {
					msg.Reply(fmt.Errorf("%w: %s", ErrAlreadyRegistered, cmd.name))
					return true
				}
				if !cmd.pid.Alive() {
					msg.Reply(fmt.Errorf("%w: %s", ErrNoProc, cmd.pid))
					return true
				}
				ref := a.Monitor(cmd.pid)
				names[cmd.name] = registration{pid: cmd.pid, ref: ref}
				refs[ref] = cmd.name
				msg.Reply(struct{}{})
			case cmdUnregister:
				if reg, ok := names[cmd.name]; ok {
					a.Demonitor(reg.ref)
					delete(refs, reg.ref)
					delete(names, cmd.name)
				}
				msg.Reply(struct{}{})
			case cmdWhereIs:
				reg, ok := names[cmd.name]
				if !ok {
					msg.Reply(struct{}{})
					return true
				}
				msg.Reply(reg.pid)
			}
		case sysmsg.Down:
			if name, ok := refs[msg.Ref]; ok {
				delete(names, name)
				delete(refs, msg.Ref)
			}
		}
		return true
	})
}
