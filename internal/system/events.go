package system

import (
	"time"

	"github.com/duskhaven/server/internal/core/event"
	coresys "github.com/duskhaven/server/internal/core/system"
)

// EventSystem delivers the previous tick's queued events to their
// subscribers. Phase 1 (PreUpdate), so every handler sees a world that
// finished the tick the event came from.
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
