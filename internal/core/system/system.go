package system

import "time"

// Phase fixes execution order within one tick.
type Phase int

const (
	PhaseInput      Phase = iota // drain session and packet queues
	PhasePreUpdate               // deliver last tick's events
	PhaseUpdate                  // game logic
	PhasePostUpdate              // warps, deferred world mutations
	PhaseOutput                  // build sync messages, flush sessions
	PhasePersist                 // database writes
	PhaseCleanup                 // destroy queued entities
)

// System is one unit of per-tick work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
