package component

import "sort"

// ItemStack is a quantity of one item template in a single slot.
type ItemStack struct {
	ItemID uint32
	Amount uint16
}

// Possessions is an entity's inventory, keyed by slot.
type Possessions struct {
	slots map[uint16]ItemStack
}

func NewPossessions() *Possessions {
	return &Possessions{slots: make(map[uint16]ItemStack)}
}

// Set places a stack in a slot. An empty stack (amount 0) clears the slot.
func (p *Possessions) Set(slot uint16, stack ItemStack) {
	if stack.Amount == 0 {
		delete(p.slots, slot)
		return
	}
	p.slots[slot] = stack
}

// Get returns the stack in a slot; the zero stack means empty.
func (p *Possessions) Get(slot uint16) ItemStack {
	return p.slots[slot]
}

func (p *Possessions) Count() int {
	return len(p.slots)
}

// Slots returns occupied slot numbers in ascending order so serialization
// is deterministic.
func (p *Possessions) Slots() []uint16 {
	out := make([]uint16, 0, len(p.slots))
	for slot := range p.slots {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
