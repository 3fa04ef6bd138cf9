package ecs

// World owns the entity pool, the set of registered component stores, and a
// deferred destroy queue. Destruction is queued rather than immediate so a
// system iterating a store never sees entities vanish mid-tick; the cleanup
// system flushes the queue once everything else has run.
type World struct {
	pool    *Pool
	stores  []Removable
	destroy []EntityID
}

func NewWorld() *World {
	return &World{
		pool:    NewPool(),
		stores:  make([]Removable, 0, 16),
		destroy: make([]EntityID, 0, 32),
	}
}

// RegisterStore adds a component store for bulk removal on entity destroy.
func (w *World) RegisterStore(s Removable) {
	w.stores = append(w.stores, s)
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick teardown.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroy = append(w.destroy, id)
}

// FlushDestroyQueue removes queued entities from every store and frees their
// ids. Runs at the cleanup phase.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroy {
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
	}
	w.destroy = w.destroy[:0]
}
