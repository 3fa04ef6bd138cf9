package component

// Abilities tracks the abilities an entity owns and their recharge
// timers, plus the shared global cooldown. Changes raise two independent
// notifications: one per changed ability, one when the global cooldown
// starts. Subscribers (the character orchestrator) turn those into dirty
// state for the next sync flush.
type Abilities struct {
	owned map[int32]int32 // ability ID → remaining recharge ticks
	order []int32         // acquisition order, for deterministic serialization

	globalCooldown int32 // remaining ticks, counts down each tick

	changedListeners map[int]func(id int32)
	globalListeners  map[int]func()
	nextSub          int
}

func NewAbilities() *Abilities {
	return &Abilities{
		owned:            make(map[int32]int32),
		changedListeners: make(map[int]func(id int32)),
		globalListeners:  make(map[int]func()),
	}
}

// Grant adds an ability with no recharge pending. Granting an ability the
// entity already owns is a no-op.
func (ab *Abilities) Grant(id int32) {
	if _, ok := ab.owned[id]; ok {
		return
	}
	ab.owned[id] = 0
	ab.order = append(ab.order, id)
	ab.notifyChanged(id)
}

func (ab *Abilities) Has(id int32) bool {
	_, ok := ab.owned[id]
	return ok
}

// Remaining returns the recharge ticks left, or 0 for ready or unowned.
func (ab *Abilities) Remaining(id int32) int32 {
	return ab.owned[id]
}

// IDs returns owned ability IDs in acquisition order.
func (ab *Abilities) IDs() []int32 {
	return ab.order
}

// Ready reports whether the ability is owned, recharged, and not blocked
// by the global cooldown.
func (ab *Abilities) Ready(id int32) bool {
	remaining, ok := ab.owned[id]
	return ok && remaining == 0 && ab.globalCooldown == 0
}

// StartRecharge sets the recharge timer for an owned ability and notifies.
// Unowned IDs are ignored.
func (ab *Abilities) StartRecharge(id, ticks int32) {
	if _, ok := ab.owned[id]; !ok {
		return
	}
	ab.owned[id] = ticks
	ab.notifyChanged(id)
}

// StartGlobalCooldown arms the shared cooldown and notifies. A shorter
// cooldown never cuts a longer one short.
func (ab *Abilities) StartGlobalCooldown(ticks int32) {
	if ticks <= ab.globalCooldown {
		return
	}
	ab.globalCooldown = ticks
	ab.notifyGlobal()
}

func (ab *Abilities) GlobalCooldown() int32 {
	return ab.globalCooldown
}

// Tick counts all recharge timers and the global cooldown down by one.
// An ability reaching ready raises its change notification so the client
// learns it can be used again.
func (ab *Abilities) Tick() {
	for _, id := range ab.order {
		if ab.owned[id] > 0 {
			ab.owned[id]--
			if ab.owned[id] == 0 {
				ab.notifyChanged(id)
			}
		}
	}
	if ab.globalCooldown > 0 {
		ab.globalCooldown--
	}
}

// SubscribeChanged registers a per-ability change listener. The returned
// function removes the subscription.
func (ab *Abilities) SubscribeChanged(fn func(id int32)) func() {
	key := ab.nextSub
	ab.nextSub++
	ab.changedListeners[key] = fn
	return func() {
		delete(ab.changedListeners, key)
	}
}

// SubscribeGlobalCooldown registers a listener for global cooldown
// activation. The returned function removes the subscription.
func (ab *Abilities) SubscribeGlobalCooldown(fn func()) func() {
	key := ab.nextSub
	ab.nextSub++
	ab.globalListeners[key] = fn
	return func() {
		delete(ab.globalListeners, key)
	}
}

func (ab *Abilities) notifyChanged(id int32) {
	for _, fn := range ab.changedListeners {
		fn(id)
	}
}

func (ab *Abilities) notifyGlobal() {
	for _, fn := range ab.globalListeners {
		fn()
	}
}
