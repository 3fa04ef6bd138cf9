package event

import "github.com/duskhaven/server/internal/core/ecs"

// CharacterEnteredWorld fires after a character is fully constructed and
// inserted into the live world.
type CharacterEnteredWorld struct {
	Entity   ecs.EntityID
	CharID   int32
	CharName string
}

// CharacterDisconnected fires when a character leaves the live world, for
// external bookkeeping (presence, party, guild).
type CharacterDisconnected struct {
	Entity   ecs.EntityID
	CharID   int32
	CharName string
}

// BeingDied fires when a being's action state transitions to dead.
type BeingDied struct {
	Entity ecs.EntityID
}
