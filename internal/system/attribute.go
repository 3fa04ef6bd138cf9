package system

import (
	"github.com/duskhaven/server/internal/component"
	"github.com/duskhaven/server/internal/data"
)

// ==================== 屬性計算 ====================
//
// 衍生屬性的基礎值由來源屬性的修正後數值算出。公式寫死在這裡,
// data/attributes.yaml 的 derived_from 只負責宣告傳播方向;
// 兩邊不一致時,沒列在 derived_from 的來源變動不會觸發重算。

// InitCharacterAttributes 依屬性表建立角色的全部屬性並套用存檔的
// 基礎值,然後重算所有衍生屬性,讓公式改版後的舊存檔在載入時歸正。
// 沒有存檔生命值的新角色以滿血進場。
func InitCharacterAttributes(set *component.AttributeSet, tbl *data.AttributeTable, saved map[int32]float64) {
	for _, id := range tbl.IDs() {
		info := tbl.Get(id)
		base := float64(info.Default)
		if v, ok := saved[id]; ok {
			base = v
		}
		set.Create(id, base, float64(info.Minimum))
	}
	for _, id := range tbl.IDs() {
		if len(tbl.Get(id).DerivedFrom) > 0 {
			RecalculateBaseAttribute(set, id)
		}
	}
	if _, ok := saved[data.AttrHP]; !ok && set.Has(data.AttrHP) {
		set.SetBase(data.AttrHP, set.Modified(data.AttrMaxHP))
	}
}

// SetAttribute 更新基礎值並將變更傳播到所有衍生屬性。
// 屬性不存在時回傳 false。
func SetAttribute(set *component.AttributeSet, tbl *data.AttributeTable, id int32, base float64) bool {
	if !set.SetBase(id, base) {
		return false
	}
	UpdateDerivedAttributes(set, tbl, id)
	return true
}

// RecalculateBaseAttribute 以公式重算一個衍生屬性的基礎值,
// 只在數值真的改變時寫回並回傳 true。
func RecalculateBaseAttribute(set *component.AttributeSet, id int32) bool {
	newBase, ok := derivedBase(set, id)
	if !ok || newBase == set.Base(id) {
		return false
	}
	return set.SetBase(id, newBase)
}

// UpdateDerivedAttributes 沿著屬性表的依賴連結,把一次基礎值變動
// 傳播到所有受影響的衍生屬性。已造訪集合讓依賴成菱形時每個屬性
// 最多重算一次,也擋住循環宣告造成的無窮遞迴。
func UpdateDerivedAttributes(set *component.AttributeSet, tbl *data.AttributeTable, changed int32) {
	visited := map[int32]struct{}{changed: {}}
	propagateDerived(set, tbl, changed, visited)
}

func propagateDerived(set *component.AttributeSet, tbl *data.AttributeTable, id int32, visited map[int32]struct{}) {
	for _, dep := range tbl.Dependents(id) {
		if _, done := visited[dep]; done {
			continue
		}
		visited[dep] = struct{}{}
		if RecalculateBaseAttribute(set, dep) {
			propagateDerived(set, tbl, dep, visited)
		}
	}
}

// derivedBase 回傳衍生屬性的新基礎值。不是衍生屬性、或目前數值
// 不需調整時,第二個回傳值為 false。
func derivedBase(set *component.AttributeSet, id int32) (float64, bool) {
	switch id {
	case data.AttrAccuracy:
		return set.Modified(data.AttrStrength)*0.5 + set.Modified(data.AttrDexterity)*2, true
	case data.AttrDefense:
		return set.Modified(data.AttrVitality) * 1.5, true
	case data.AttrDodge:
		return set.Modified(data.AttrAgility) * 2, true
	case data.AttrMagicPower:
		return set.Modified(data.AttrIntelligence)*2 + set.Modified(data.AttrWillpower)*0.5, true
	case data.AttrMagicDefense:
		return set.Modified(data.AttrWillpower)*1.5 + set.Modified(data.AttrVitality)*0.5, true
	case data.AttrSpeed:
		return 5 + set.Modified(data.AttrAgility)*0.1, true
	case data.AttrMaxHP:
		return 20 + set.Modified(data.AttrVitality)*5 + set.Modified(data.AttrStrength), true
	case data.AttrHP:
		// 生命值不靠公式重算,只在上限掉到目前值以下時夾住。
		maxHP := set.Modified(data.AttrMaxHP)
		if set.Base(id) > maxHP {
			return maxHP, true
		}
		return 0, false
	}
	return 0, false
}
