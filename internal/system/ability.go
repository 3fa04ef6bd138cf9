package system

import (
	"time"

	"github.com/duskhaven/server/internal/component"
	"github.com/duskhaven/server/internal/core/ecs"
	coresys "github.com/duskhaven/server/internal/core/system"
	"github.com/duskhaven/server/internal/data"
)

// AbilitySystem 讓每個實體的技能充能與公共冷卻每刻遞減一次。
// Phase 2 (Update),必須排在 CharacterSystem 之前,技能轉好的
// 通知才會在同一刻送到客戶端。
type AbilitySystem struct {
	abilities *ecs.Store[component.Abilities]
}

func NewAbilitySystem(abilities *ecs.Store[component.Abilities]) *AbilitySystem {
	return &AbilitySystem{abilities: abilities}
}

func (s *AbilitySystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AbilitySystem) Update(_ time.Duration) {
	s.abilities.Each(func(_ ecs.EntityID, ab *component.Abilities) {
		ab.Tick()
	})
}

// TriggerAbility 發動一個技能:必須持有、充能完畢、且不在公共冷卻中。
// 成功時啟動該技能的充能計時,有設定公共冷卻的技能一併觸發公共冷卻。
func TriggerAbility(ab *component.Abilities, tbl *data.AbilityTable, id int32) bool {
	info := tbl.Get(id)
	if info == nil || !ab.Ready(id) {
		return false
	}
	ab.StartRecharge(id, info.RechargeTicks)
	if info.GlobalTicks > 0 {
		ab.StartGlobalCooldown(info.GlobalTicks)
	}
	return true
}
