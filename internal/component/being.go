package component

// Action is a being's current action state.
type Action uint8

const (
	ActionStand Action = iota
	ActionWalk
	ActionAttack
	ActionSit
	ActionHurt
	ActionDead
)

func (a Action) String() string {
	switch a {
	case ActionStand:
		return "stand"
	case ActionWalk:
		return "walk"
	case ActionAttack:
		return "attack"
	case ActionSit:
		return "sit"
	case ActionHurt:
		return "hurt"
	case ActionDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Being holds the living-entity state shared by players and NPCs.
type Being struct {
	Name      string
	Action    Action
	Direction uint8 // 0=down, 1=left, 2=up, 3=right

	Attributes *AttributeSet
}

func NewBeing(name string) *Being {
	return &Being{
		Name:       name,
		Action:     ActionStand,
		Attributes: NewAttributeSet(),
	}
}
