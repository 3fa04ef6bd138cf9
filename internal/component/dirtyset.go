package component

// DirtySet records IDs that changed since the last sync flush.
// Membership is deduplicated; iteration order is insertion order so the
// flushed message lists each ID exactly once, in a stable order.
type DirtySet struct {
	ids  []int32
	seen map[int32]struct{}
}

func NewDirtySet() *DirtySet {
	return &DirtySet{seen: make(map[int32]struct{})}
}

// Add marks an ID dirty. Adding an ID already present is a no-op.
func (d *DirtySet) Add(id int32) {
	if _, ok := d.seen[id]; ok {
		return
	}
	d.seen[id] = struct{}{}
	d.ids = append(d.ids, id)
}

func (d *DirtySet) Contains(id int32) bool {
	_, ok := d.seen[id]
	return ok
}

func (d *DirtySet) Empty() bool {
	return len(d.ids) == 0
}

func (d *DirtySet) Len() int {
	return len(d.ids)
}

// Values returns the dirty IDs in insertion order. The caller builds the
// sync message from this slice and only then calls Clear, so a script
// re-entering during the build cannot lose an update.
func (d *DirtySet) Values() []int32 {
	return d.ids
}

// Clear resets the set. Call after the sync message has been built.
func (d *DirtySet) Clear() {
	d.ids = d.ids[:0]
	clear(d.seen)
}
