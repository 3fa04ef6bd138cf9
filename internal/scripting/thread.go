package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Thread is a suspended script conversation: a Lua coroutine that yields
// between dialogue steps and is resumed by later player input. A thread
// has unbounded lifetime until it completes, is replaced by a new
// dialogue, or its character disconnects. Abandoning a thread is just
// dropping the reference; the coroutine is left to the garbage collector.
type Thread struct {
	co *lua.LState
	fn *lua.LFunction
}

// NewDialogueThread prepares a coroutine over the named global function.
func (e *Engine) NewDialogueThread(fnName string) (*Thread, error) {
	fn := e.Global(fnName)
	if fn == nil {
		return nil, fmt.Errorf("lua function %s not found", fnName)
	}
	co, _ := e.vm.NewThread()
	return &Thread{co: co, fn: fn}, nil
}

// ResumeThread runs the thread until it yields or finishes. The first
// resume passes args to the dialogue function; later resumes hand them to
// the pending yield. Only one thread executes at a time; resuming while a
// different dialogue is mid-execution is a caller contract violation.
// Returns done=true when the dialogue completed or died with an error.
func (e *Engine) ResumeThread(t *Thread, args ...lua.LValue) (done bool, err error) {
	if e.current != nil && e.current != t {
		return false, fmt.Errorf("another dialogue thread is executing")
	}
	e.current = t
	st, rerr, _ := e.vm.Resume(t.co, t.fn, args...)
	e.current = nil

	switch st {
	case lua.ResumeYield:
		return false, nil
	case lua.ResumeError:
		return true, rerr
	default:
		return true, nil
	}
}
