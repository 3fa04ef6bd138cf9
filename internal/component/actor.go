package component

// Actor block types, matching the collision layer's categories.
const (
	BlockNone      uint8 = 0x00
	BlockWall      uint8 = 0x01
	BlockMonster   uint8 = 0x02
	BlockCharacter uint8 = 0x04
)

// Actor holds an entity's spatial presence: where it is and how it
// interacts with the collision map.
type Actor struct {
	MapID int32
	X     int32
	Y     int32

	WalkMask  uint8 // block types this actor cannot walk through
	BlockType uint8 // block type this actor presents to others
	Size      int32 // collision radius in world units
}
