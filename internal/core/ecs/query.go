package ecs

// Each2 calls fn for every entity present in both stores. The smaller
// store drives the iteration; the larger one only answers lookups.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	if sb.Len() < sa.Len() {
		for id, b := range sb.data {
			if a, ok := sa.data[id]; ok {
				fn(id, a, b)
			}
		}
		return
	}
	for id, a := range sa.data {
		if b, ok := sb.data[id]; ok {
			fn(id, a, b)
		}
	}
}

// Each3 calls fn for every entity present in all three stores, driven by
// the store with the fewest entries.
func Each3[A, B, C any](sa *Store[A], sb *Store[B], sc *Store[C], fn func(EntityID, *A, *B, *C)) {
	switch {
	case sa.Len() <= sb.Len() && sa.Len() <= sc.Len():
		for id, a := range sa.data {
			b, ok := sb.data[id]
			if !ok {
				continue
			}
			if c, ok := sc.data[id]; ok {
				fn(id, a, b, c)
			}
		}
	case sb.Len() <= sc.Len():
		for id, b := range sb.data {
			a, ok := sa.data[id]
			if !ok {
				continue
			}
			if c, ok := sc.data[id]; ok {
				fn(id, a, b, c)
			}
		}
	default:
		for id, c := range sc.data {
			a, ok := sa.data[id]
			if !ok {
				continue
			}
			if b, ok := sb.data[id]; ok {
				fn(id, a, b, c)
			}
		}
	}
}
