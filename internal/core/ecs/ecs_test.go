package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type health struct {
	HP int
}

func TestPoolRecyclesSlotsWithNewGeneration(t *testing.T) {
	p := NewPool()

	first := p.Create()
	require.True(t, p.Alive(first))

	p.Destroy(first)
	assert.False(t, p.Alive(first))

	second := p.Create()
	assert.Equal(t, first.Index(), second.Index(), "slot should be recycled")
	assert.NotEqual(t, first.Generation(), second.Generation())
	assert.True(t, p.Alive(second))
	assert.False(t, p.Alive(first), "stale id must stay dead")
}

func TestStoreTypedAccess(t *testing.T) {
	s := NewStore[health]()
	id := MakeEntityID(7, 0)

	_, ok := s.Get(id)
	assert.False(t, ok)

	s.Set(id, &health{HP: 42})
	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, 42, got.HP)

	s.Remove(id)
	assert.False(t, s.Has(id))
}

func TestQueryJoinsIntersectOnly(t *testing.T) {
	type pos struct{ X int }
	type vel struct{ V int }

	ps := NewStore[pos]()
	vs := NewStore[vel]()
	hs := NewStore[health]()

	a := MakeEntityID(1, 0)
	b := MakeEntityID(2, 0)
	c := MakeEntityID(3, 0)

	ps.Set(a, &pos{X: 1})
	ps.Set(b, &pos{X: 2})
	ps.Set(c, &pos{X: 3})
	vs.Set(a, &vel{V: 10})
	vs.Set(c, &vel{V: 30})
	hs.Set(c, &health{HP: 100})

	var pairs []EntityID
	Each2(ps, vs, func(id EntityID, p *pos, v *vel) {
		pairs = append(pairs, id)
	})
	assert.ElementsMatch(t, []EntityID{a, c}, pairs)

	var triples []EntityID
	Each3(ps, vs, hs, func(id EntityID, p *pos, v *vel, h *health) {
		assert.Equal(t, 3, p.X)
		assert.Equal(t, 30, v.V)
		triples = append(triples, id)
	})
	assert.Equal(t, []EntityID{c}, triples)
}

func TestWorldDeferredDestroy(t *testing.T) {
	w := NewWorld()
	hp := NewStore[health]()
	w.RegisterStore(hp)

	id := w.CreateEntity()
	hp.Set(id, &health{HP: 10})

	w.MarkForDestruction(id)
	assert.True(t, w.Alive(id), "destruction is deferred until flush")
	assert.True(t, hp.Has(id))

	w.FlushDestroyQueue()
	assert.False(t, w.Alive(id))
	assert.False(t, hp.Has(id), "flush must clear every registered store")
}
