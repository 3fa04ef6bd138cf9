package system

import (
	"context"
	"fmt"
	"time"

	"github.com/duskhaven/server/internal/component"
	"github.com/duskhaven/server/internal/core/ecs"
	coresys "github.com/duskhaven/server/internal/core/system"
	"github.com/duskhaven/server/internal/handler"
	"github.com/duskhaven/server/internal/persist"
	"go.uber.org/zap"
)

// PersistSystem writes dirty state back to the database. Phase 5
// (Persist). Single attribute changes flush every tick; full snapshots
// run on the save interval, and immediately for disconnecting characters
// while their components are still alive.
type PersistSystem struct {
	deps   *handler.Deps
	chars  *CharacterSystem
	stores *Stores

	interval  time.Duration
	sinceSave time.Duration
}

func NewPersistSystem(deps *handler.Deps, chars *CharacterSystem, stores *Stores, interval time.Duration) *PersistSystem {
	return &PersistSystem{
		deps:     deps,
		chars:    chars,
		stores:   stores,
		interval: interval,
	}
}

func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(dt time.Duration) {
	// 本刻變更過的屬性逐筆寫回
	for charID, rows := range s.chars.DrainAttributeSaves() {
		for _, row := range rows {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := s.deps.CharRepo.UpsertAttribute(ctx, charID, row.AttrID, row.Base, row.Modified)
			cancel()
			if err != nil {
				s.deps.Log.Error("屬性寫回失敗",
					zap.Int32("char", charID),
					zap.Int32("attr", row.AttrID),
					zap.Error(err),
				)
			}
		}
	}

	// 離線角色趁實體銷毀前做最後一次全量快照
	s.stores.Characters.Each(func(e ecs.EntityID, c *component.Character) {
		if !c.Connected && c.Dirty {
			s.saveCharacter(e, c)
		}
	})

	s.sinceSave += dt
	if s.sinceSave < s.interval {
		return
	}
	s.sinceSave = 0

	saved := 0
	s.stores.Characters.Each(func(e ecs.EntityID, c *component.Character) {
		if c.Connected && c.Dirty {
			s.saveCharacter(e, c)
			saved++
		}
	})
	if saved > 0 {
		s.deps.Log.Info(fmt.Sprintf("定期存檔完成  角色數=%d", saved))
	}
}

// SaveAll 立即快照所有還在世界中的角色,關伺服器前呼叫。
func (s *PersistSystem) SaveAll() {
	s.stores.Characters.Each(func(e ecs.EntityID, c *component.Character) {
		s.saveCharacter(e, c)
	})
}

// saveCharacter 從元件組出資料列並以單一交易寫入。失敗時保留髒
// 旗標,下一輪再試。
func (s *PersistSystem) saveCharacter(e ecs.EntityID, c *component.Character) {
	being, ok := s.stores.Beings.Get(e)
	if !ok {
		return
	}

	row := &persist.CharacterRow{
		ID:               c.DBID,
		AccountName:      c.AccountName,
		Name:             being.Name,
		HairStyle:        int16(c.HairStyle),
		HairColor:        int16(c.HairColor),
		Points:           c.Points,
		CorrectionPoints: c.CorrectionPoints,
	}
	if actor, ok := s.stores.Actors.Get(e); ok {
		row.MapID = actor.MapID
		row.X = actor.X
		row.Y = actor.Y
	}

	attrIDs := being.Attributes.IDs()
	attrs := make([]persist.AttributeRow, 0, len(attrIDs))
	for _, id := range attrIDs {
		attrs = append(attrs, persist.AttributeRow{
			AttrID:   id,
			Base:     being.Attributes.Base(id),
			Modified: being.Attributes.Modified(id),
		})
	}

	var kills []persist.KillRow
	for typeID, count := range c.KillCounts {
		kills = append(kills, persist.KillRow{TypeID: typeID, Count: count})
	}

	var abilityIDs []int32
	if ab, ok := s.stores.Abilities.Get(e); ok {
		abilityIDs = ab.IDs()
	}

	var items []persist.ItemRow
	if poss, ok := s.stores.Possessions.Get(e); ok {
		for _, slot := range poss.Slots() {
			stack := poss.Get(slot)
			items = append(items, persist.ItemRow{Slot: slot, ItemID: stack.ItemID, Amount: stack.Amount})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.deps.CharRepo.SaveSnapshot(ctx, row, attrs, kills, abilityIDs, items); err != nil {
		s.deps.Log.Error("角色存檔失敗", zap.Int32("char", c.DBID), zap.Error(err))
		return
	}
	c.Dirty = false
}
