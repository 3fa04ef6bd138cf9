package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhaven/server/internal/component"
	"github.com/duskhaven/server/internal/data"
)

const testAttributesYAML = `
attributes:
  - {id: 1, name: Strength, scope: character, modifiable: true, minimum: 1, default: 1}
  - {id: 2, name: Agility, scope: character, modifiable: true, minimum: 1, default: 1}
  - {id: 3, name: Vitality, scope: character, modifiable: true, minimum: 1, default: 1}
  - {id: 4, name: Intelligence, scope: character, modifiable: true, minimum: 1, default: 1}
  - {id: 5, name: Dexterity, scope: character, modifiable: true, minimum: 1, default: 1}
  - {id: 6, name: Willpower, scope: character, modifiable: true, minimum: 1, default: 1}
  - {id: 7, name: Accuracy, scope: being, minimum: 0, default: 0, derived_from: [1, 5]}
  - {id: 8, name: Defense, scope: being, minimum: 0, default: 0, derived_from: [3]}
  - {id: 9, name: Dodge, scope: being, minimum: 0, default: 0, derived_from: [2]}
  - {id: 10, name: MagicPower, scope: being, minimum: 0, default: 0, derived_from: [4, 6]}
  - {id: 11, name: MagicDefense, scope: being, minimum: 0, default: 0, derived_from: [6, 3]}
  - {id: 12, name: Speed, scope: being, minimum: 0, default: 0, derived_from: [2]}
  - {id: 13, name: MaxHP, scope: being, minimum: 1, default: 1, derived_from: [3, 1]}
  - {id: 14, name: HP, scope: being, minimum: 0, default: 0, derived_from: [13]}
`

const testAbilitiesYAML = `
abilities:
  - {id: 1, name: Smite, recharge_ticks: 5, global_ticks: 3}
  - {id: 2, name: Focus, recharge_ticks: 0, global_ticks: 0}
  - {id: 9, name: Blink, recharge_ticks: 10, global_ticks: 0}
`

func writeTestTables(t *testing.T) (*data.AttributeTable, *data.AbilityTable) {
	t.Helper()
	dir := t.TempDir()

	attrPath := filepath.Join(dir, "attributes.yaml")
	require.NoError(t, os.WriteFile(attrPath, []byte(testAttributesYAML), 0o644))
	attrs, err := data.LoadAttributeTable(attrPath)
	require.NoError(t, err)

	abilityPath := filepath.Join(dir, "abilities.yaml")
	require.NoError(t, os.WriteFile(abilityPath, []byte(testAbilitiesYAML), 0o644))
	abilities, err := data.LoadAbilityTable(abilityPath)
	require.NoError(t, err)

	return attrs, abilities
}

func TestInitCharacterAttributesDefaults(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()

	InitCharacterAttributes(set, tbl, nil)

	assert.Equal(t, 1.0, set.Base(data.AttrStrength))
	assert.Equal(t, 2.5, set.Base(data.AttrAccuracy), "0.5*str + 2*dex")
	assert.Equal(t, 1.5, set.Base(data.AttrDefense))
	assert.Equal(t, 2.0, set.Base(data.AttrDodge))
	assert.InDelta(t, 5.1, set.Base(data.AttrSpeed), 1e-9)
	assert.Equal(t, 26.0, set.Base(data.AttrMaxHP), "20 + 5*vit + str")
	assert.Equal(t, 26.0, set.Base(data.AttrHP), "new characters enter at full health")
}

func TestInitCharacterAttributesFromSave(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()

	InitCharacterAttributes(set, tbl, map[int32]float64{
		data.AttrStrength:     10,
		data.AttrAgility:      8,
		data.AttrVitality:     12,
		data.AttrIntelligence: 6,
		data.AttrDexterity:    9,
		data.AttrWillpower:    7,
		data.AttrHP:           50,
	})

	assert.Equal(t, 23.0, set.Base(data.AttrAccuracy))
	assert.Equal(t, 18.0, set.Base(data.AttrDefense))
	assert.Equal(t, 16.0, set.Base(data.AttrDodge))
	assert.Equal(t, 15.5, set.Base(data.AttrMagicPower))
	assert.Equal(t, 16.5, set.Base(data.AttrMagicDefense))
	assert.Equal(t, 90.0, set.Base(data.AttrMaxHP))
	assert.Equal(t, 50.0, set.Base(data.AttrHP), "saved health survives the load")
}

func TestInitClampsSavedHPToMax(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()

	// 存檔生命值超過目前上限,載入時夾回上限。
	InitCharacterAttributes(set, tbl, map[int32]float64{data.AttrHP: 500})

	assert.Equal(t, 26.0, set.Base(data.AttrHP))
}

func TestSetAttributePropagates(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()
	InitCharacterAttributes(set, tbl, nil)

	ok := SetAttribute(set, tbl, data.AttrStrength, 10)
	require.True(t, ok)

	assert.Equal(t, 10.0, set.Base(data.AttrStrength))
	assert.Equal(t, 7.0, set.Base(data.AttrAccuracy))
	assert.Equal(t, 35.0, set.Base(data.AttrMaxHP))
	assert.Equal(t, 26.0, set.Base(data.AttrHP), "rising max never touches current health")
}

func TestSetAttributeUnknownID(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()
	InitCharacterAttributes(set, tbl, nil)

	assert.False(t, SetAttribute(set, tbl, 99, 5))
}

func TestHPClampedWhenMaxDrops(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()
	InitCharacterAttributes(set, tbl, map[int32]float64{data.AttrVitality: 12})
	require.Equal(t, 81.0, set.Base(data.AttrMaxHP))
	require.Equal(t, 81.0, set.Base(data.AttrHP))

	SetAttribute(set, tbl, data.AttrVitality, 1)

	assert.Equal(t, 26.0, set.Base(data.AttrMaxHP))
	assert.Equal(t, 26.0, set.Base(data.AttrHP), "health follows the ceiling down")
}

func TestPropagationNotifiesOncePerAttribute(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()
	InitCharacterAttributes(set, tbl, nil)

	counts := make(map[int32]int)
	unsub := set.Subscribe(func(id int32) { counts[id]++ })
	defer unsub()

	SetAttribute(set, tbl, data.AttrVitality, 12)

	assert.Equal(t, 1, counts[data.AttrVitality])
	assert.Equal(t, 1, counts[data.AttrDefense])
	assert.Equal(t, 1, counts[data.AttrMagicDefense])
	assert.Equal(t, 1, counts[data.AttrMaxHP])
	assert.Zero(t, counts[data.AttrAccuracy], "unrelated attributes stay silent")
	assert.Zero(t, counts[data.AttrHP], "a rising max does not touch health")
}

func TestUpdateDerivedIdempotentWhenNothingChanged(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()
	InitCharacterAttributes(set, tbl, nil)

	fired := 0
	unsub := set.Subscribe(func(int32) { fired++ })
	defer unsub()

	UpdateDerivedAttributes(set, tbl, data.AttrStrength)
	assert.Zero(t, fired, "no base changed, nothing to recompute")
}

func TestRecalculateNonDerivedAttribute(t *testing.T) {
	tbl, _ := writeTestTables(t)
	set := component.NewAttributeSet()
	InitCharacterAttributes(set, tbl, nil)

	assert.False(t, RecalculateBaseAttribute(set, data.AttrStrength))
}
