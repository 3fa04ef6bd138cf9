package component

// Modifier is one contribution to an attribute's modified value. Origin
// identifies the contributor (equipment slot, ability, derivation) so a
// source can replace or remove its own contribution without touching
// anyone else's.
type Modifier struct {
	Origin int32
	Add    float64 // additive delta
	Mult   float64 // multiplier, 1 = neutral
}

// Attribute holds one attribute's state: the directly settable base, the
// modifier stack, and the cached modified value.
type Attribute struct {
	Base     float64
	Min      float64 // floor for both base and modified
	Modified float64
	mods     []Modifier
}

func (a *Attribute) recompute() {
	v := a.Base
	mult := 1.0
	for i := range a.mods {
		v += a.mods[i].Add
		if a.mods[i].Mult != 0 {
			mult *= a.mods[i].Mult
		}
	}
	v *= mult
	if v < a.Min {
		v = a.Min
	}
	a.Modified = v
}

// AttributeSet is the per-entity attribute table. The modified value is
// recomputed whenever the base or any modifier changes, and every change
// notifies the registered listeners exactly once per mutation.
type AttributeSet struct {
	attrs map[int32]*Attribute
	order []int32 // creation order, for deterministic full syncs

	listeners map[int]func(id int32)
	nextSub   int
}

func NewAttributeSet() *AttributeSet {
	return &AttributeSet{
		attrs:     make(map[int32]*Attribute),
		listeners: make(map[int]func(id int32)),
	}
}

// Create initializes an attribute with the given base and floor. Creating
// an attribute that already exists resets it.
func (s *AttributeSet) Create(id int32, base, min float64) {
	if _, exists := s.attrs[id]; !exists {
		s.order = append(s.order, id)
	}
	a := &Attribute{Base: base, Min: min}
	a.recompute()
	s.attrs[id] = a
}

func (s *AttributeSet) Has(id int32) bool {
	_, ok := s.attrs[id]
	return ok
}

// IDs returns all attribute IDs in creation order.
func (s *AttributeSet) IDs() []int32 {
	return s.order
}

// Base returns the base value, or 0 if the attribute does not exist.
func (s *AttributeSet) Base(id int32) float64 {
	if a := s.attrs[id]; a != nil {
		return a.Base
	}
	return 0
}

// Modified returns the modified value, or 0 if the attribute does not exist.
func (s *AttributeSet) Modified(id int32) float64 {
	if a := s.attrs[id]; a != nil {
		return a.Modified
	}
	return 0
}

// SetBase updates the base value, recomputes the modified value and
// notifies listeners. Returns false if the attribute does not exist.
func (s *AttributeSet) SetBase(id int32, base float64) bool {
	a := s.attrs[id]
	if a == nil {
		return false
	}
	if base < a.Min {
		base = a.Min
	}
	a.Base = base
	a.recompute()
	s.notify(id)
	return true
}

// AddModifier appends a contribution and recomputes. Returns false if the
// attribute does not exist.
func (s *AttributeSet) AddModifier(id int32, m Modifier) bool {
	a := s.attrs[id]
	if a == nil {
		return false
	}
	a.mods = append(a.mods, m)
	a.recompute()
	s.notify(id)
	return true
}

// RemoveModifiersByOrigin drops every contribution from the given origin
// on the given attribute. Returns true if anything was removed.
func (s *AttributeSet) RemoveModifiersByOrigin(id, origin int32) bool {
	a := s.attrs[id]
	if a == nil {
		return false
	}
	kept := a.mods[:0]
	removed := false
	for _, m := range a.mods {
		if m.Origin == origin {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	a.mods = kept
	if removed {
		a.recompute()
		s.notify(id)
	}
	return removed
}

// Subscribe registers a change listener invoked synchronously with the
// mutated attribute ID. The returned function removes the subscription;
// the subscriber must call it when its own lifetime ends.
func (s *AttributeSet) Subscribe(fn func(id int32)) func() {
	key := s.nextSub
	s.nextSub++
	s.listeners[key] = fn
	return func() {
		delete(s.listeners, key)
	}
}

func (s *AttributeSet) notify(id int32) {
	for _, fn := range s.listeners {
		fn(id)
	}
}
