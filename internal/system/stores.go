package system

import (
	"github.com/duskhaven/server/internal/component"
	"github.com/duskhaven/server/internal/core/ecs"
)

// Stores bundles the component stores the game systems share. All stores
// are registered with the entity world so destruction sweeps them.
type Stores struct {
	Characters  *ecs.Store[component.Character]
	Beings      *ecs.Store[component.Being]
	Abilities   *ecs.Store[component.Abilities]
	Actors      *ecs.Store[component.Actor]
	Possessions *ecs.Store[component.Possessions]
}

func NewStores(w *ecs.World) *Stores {
	s := &Stores{
		Characters:  ecs.NewStore[component.Character](),
		Beings:      ecs.NewStore[component.Being](),
		Abilities:   ecs.NewStore[component.Abilities](),
		Actors:      ecs.NewStore[component.Actor](),
		Possessions: ecs.NewStore[component.Possessions](),
	}
	w.RegisterStore(s.Characters)
	w.RegisterStore(s.Beings)
	w.RegisterStore(s.Abilities)
	w.RegisterStore(s.Actors)
	w.RegisterStore(s.Possessions)
	return s
}
