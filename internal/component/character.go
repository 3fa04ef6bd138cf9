package component

// Character stores the player-specific state for an entity.
// Mostly data; game rules live in the system package. Accessed only from
// the game loop goroutine.
type Character struct {
	DBID         int32 // persistent key in the characters table
	AccountName  string
	AccountLevel uint8 // permission level 1..8
	SessionID    uint64

	HairStyle uint8
	HairColor uint8

	// Point economy. Points raise a modifiable attribute's base by one;
	// correction points undo a raise, refunding one spendable point.
	Points           int16
	CorrectionPoints int16

	// Adversary-type ID → kill count. Created lazily on first kill,
	// entries are never removed.
	KillCounts map[int32]int32

	Connected bool

	Transaction Transaction

	// Sync state drained once per tick per category.
	DirtyAttributes     *DirtySet
	DirtyAbilities      *DirtySet
	SendAbilityCooldown bool
	PointsDirty         bool

	// Set on any persisted-state change; the persistence system saves
	// dirty characters and resets it.
	Dirty bool

	// Listener teardown, run when the character leaves the world.
	Unsubs []func()
}

func NewCharacter(dbID int32, sessionID uint64) *Character {
	return &Character{
		DBID:            dbID,
		SessionID:       sessionID,
		Connected:       true,
		DirtyAttributes: NewDirtySet(),
		DirtyAbilities:  NewDirtySet(),
	}
}

// IncrementKillCount bumps the tally for an adversary type, creating the
// entry on first kill.
func (c *Character) IncrementKillCount(typeID int32) int32 {
	if c.KillCounts == nil {
		c.KillCounts = make(map[int32]int32)
	}
	c.KillCounts[typeID]++
	return c.KillCounts[typeID]
}

// KillCount returns the tally for an adversary type, 0 if never killed.
func (c *Character) KillCount(typeID int32) int32 {
	return c.KillCounts[typeID]
}

// Unsubscribe runs and clears all listener teardown functions.
func (c *Character) Unsubscribe() {
	for _, fn := range c.Unsubs {
		fn()
	}
	c.Unsubs = nil
}
