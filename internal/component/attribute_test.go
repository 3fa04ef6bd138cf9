package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeSetBaseRecomputesModified(t *testing.T) {
	s := NewAttributeSet()
	s.Create(1, 10, 1)

	assert.Equal(t, 10.0, s.Base(1))
	assert.Equal(t, 10.0, s.Modified(1))

	require.True(t, s.SetBase(1, 14))
	assert.Equal(t, 14.0, s.Base(1))
	assert.Equal(t, 14.0, s.Modified(1))
}

func TestAttributeModifierStack(t *testing.T) {
	s := NewAttributeSet()
	s.Create(1, 10, 0)

	s.AddModifier(1, Modifier{Origin: 100, Add: 5})
	assert.Equal(t, 15.0, s.Modified(1))
	assert.Equal(t, 10.0, s.Base(1), "base untouched by modifiers")

	s.AddModifier(1, Modifier{Origin: 101, Mult: 2})
	assert.Equal(t, 30.0, s.Modified(1))

	// Removing one origin leaves the other contribution intact.
	require.True(t, s.RemoveModifiersByOrigin(1, 100))
	assert.Equal(t, 20.0, s.Modified(1))

	require.True(t, s.RemoveModifiersByOrigin(1, 101))
	assert.Equal(t, 10.0, s.Modified(1))
}

func TestAttributeFloor(t *testing.T) {
	s := NewAttributeSet()
	s.Create(1, 10, 1)

	// Base can never go under the floor.
	s.SetBase(1, -5)
	assert.Equal(t, 1.0, s.Base(1))

	// Neither can the modified value.
	s.SetBase(1, 10)
	s.AddModifier(1, Modifier{Origin: 7, Add: -50})
	assert.Equal(t, 1.0, s.Modified(1))
}

func TestAttributeListeners(t *testing.T) {
	s := NewAttributeSet()
	s.Create(1, 10, 0)
	s.Create(2, 5, 0)

	var changes []int32
	unsub := s.Subscribe(func(id int32) {
		changes = append(changes, id)
	})

	s.SetBase(1, 11)
	s.AddModifier(2, Modifier{Origin: 1, Add: 1})
	assert.Equal(t, []int32{1, 2}, changes)

	// After unsubscribe no further notifications arrive.
	unsub()
	s.SetBase(1, 12)
	assert.Len(t, changes, 2)
}

func TestAttributeUnknownID(t *testing.T) {
	s := NewAttributeSet()

	assert.False(t, s.SetBase(9, 1))
	assert.False(t, s.AddModifier(9, Modifier{Add: 1}))
	assert.Equal(t, 0.0, s.Base(9))
	assert.Equal(t, 0.0, s.Modified(9))
	assert.False(t, s.Has(9))
}

func TestDirtySetDeduplicatesInInsertionOrder(t *testing.T) {
	d := NewDirtySet()
	d.Add(3)
	d.Add(1)
	d.Add(3)
	d.Add(2)
	d.Add(1)

	assert.Equal(t, []int32{3, 1, 2}, d.Values())
	assert.Equal(t, 3, d.Len())
	assert.True(t, d.Contains(2))

	d.Clear()
	assert.True(t, d.Empty())
	assert.False(t, d.Contains(3))

	// Reusable after a flush.
	d.Add(5)
	assert.Equal(t, []int32{5}, d.Values())
}
