package system

import (
	"time"

	"github.com/duskhaven/server/internal/core/ecs"
	coresys "github.com/duskhaven/server/internal/core/system"
	"github.com/duskhaven/server/internal/world"
)

// CleanupSystem turns removal requests into destroyed entities and
// flushes the deferred destruction queue at tick end. Phase 6 (Cleanup),
// after persistence has read everything it needs.
type CleanupSystem struct {
	ecs   *ecs.World
	world *world.State
}

func NewCleanupSystem(ecsWorld *ecs.World, ws *world.State) *CleanupSystem {
	return &CleanupSystem{ecs: ecsWorld, world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	for _, e := range s.world.DrainRemovals() {
		s.ecs.MarkForDestruction(e)
	}
	s.ecs.FlushDestroyQueue()
}
