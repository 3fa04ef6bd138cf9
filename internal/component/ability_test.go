package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbilitiesRechargeLifecycle(t *testing.T) {
	ab := NewAbilities()

	var changed []int32
	ab.SubscribeChanged(func(id int32) { changed = append(changed, id) })

	ab.Grant(7)
	assert.Equal(t, []int32{7}, changed)
	assert.True(t, ab.Ready(7))

	ab.StartRecharge(7, 2)
	assert.Equal(t, []int32{7, 7}, changed)
	assert.False(t, ab.Ready(7))
	assert.Equal(t, int32(2), ab.Remaining(7))

	ab.Tick()
	assert.Equal(t, int32(1), ab.Remaining(7))

	// Hitting zero notifies once more: the ability became usable.
	ab.Tick()
	assert.Equal(t, int32(0), ab.Remaining(7))
	assert.Equal(t, []int32{7, 7, 7}, changed)

	// Further ticks stay silent.
	ab.Tick()
	assert.Len(t, changed, 3)
}

func TestAbilitiesIgnoreUnowned(t *testing.T) {
	ab := NewAbilities()

	var changed []int32
	ab.SubscribeChanged(func(id int32) { changed = append(changed, id) })

	ab.StartRecharge(42, 5)
	assert.Empty(t, changed)
	assert.False(t, ab.Has(42))
	assert.Equal(t, int32(0), ab.Remaining(42))
}

func TestGlobalCooldown(t *testing.T) {
	ab := NewAbilities()
	ab.Grant(1)

	fired := 0
	ab.SubscribeGlobalCooldown(func() { fired++ })

	ab.StartGlobalCooldown(3)
	assert.Equal(t, 1, fired)
	assert.Equal(t, int32(3), ab.GlobalCooldown())
	assert.False(t, ab.Ready(1), "global cooldown blocks ready abilities")

	// A shorter cooldown does not shrink the active one and stays silent.
	ab.StartGlobalCooldown(1)
	assert.Equal(t, 1, fired)
	assert.Equal(t, int32(3), ab.GlobalCooldown())

	ab.Tick()
	ab.Tick()
	ab.Tick()
	assert.Equal(t, int32(0), ab.GlobalCooldown())
	assert.True(t, ab.Ready(1))
}

func TestAbilitiesGrantIsIdempotent(t *testing.T) {
	ab := NewAbilities()
	ab.Grant(3)
	ab.StartRecharge(3, 9)
	ab.Grant(3)

	assert.Equal(t, int32(9), ab.Remaining(3), "re-granting must not reset the timer")
	assert.Equal(t, []int32{3}, ab.IDs())
}
