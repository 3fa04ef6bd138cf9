package system

import (
	"fmt"
	"time"

	"github.com/duskhaven/server/internal/component"
	"github.com/duskhaven/server/internal/core/ecs"
	"github.com/duskhaven/server/internal/core/event"
	coresys "github.com/duskhaven/server/internal/core/system"
	"github.com/duskhaven/server/internal/data"
	"github.com/duskhaven/server/internal/handler"
	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
	"github.com/duskhaven/server/internal/persist"
	"github.com/duskhaven/server/internal/scripting"
	"github.com/duskhaven/server/internal/serialize"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// CharacterSystem 管理角色從進入世界到離線的完整生命週期,
// 並在每刻把累積的狀態變更彙整成同步訊息送給客戶端。
// 實作 handler.CharacterManager 與 scripting.GameAPI。
// Phase 2 (Update)。
type CharacterSystem struct {
	deps   *handler.Deps
	ecs    *ecs.World
	bus    *event.Bus
	lua    *scripting.Engine
	stores *Stores

	// 進行中的 NPC 對話,每個角色最多一條。
	npcThreads map[ecs.EntityID]*npcDialogue

	// 變更過、等著寫回資料庫的屬性,persist 階段批次取走。
	attrSaves map[int32]map[int32]struct{}
}

type npcDialogue struct {
	thread *scripting.Thread
	npcID  int32
}

func NewCharacterSystem(deps *handler.Deps, ecsWorld *ecs.World, bus *event.Bus, engine *scripting.Engine, stores *Stores) *CharacterSystem {
	return &CharacterSystem{
		deps:       deps,
		ecs:        ecsWorld,
		bus:        bus,
		lua:        engine,
		stores:     stores,
		npcThreads: make(map[ecs.EntityID]*npcDialogue),
		attrSaves:  make(map[int32]map[int32]struct{}),
	}
}

func (s *CharacterSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// Update 對每個角色執行每刻處理:死亡中的角色凍結,其餘做同步沖刷。
func (s *CharacterSystem) Update(_ time.Duration) {
	ecs.Each2(s.stores.Characters, s.stores.Beings, func(e ecs.EntityID, c *component.Character, being *component.Being) {
		// 死亡的角色停止一切狀態同步,等玩家送出重生請求。
		if being.Action == component.ActionDead {
			return
		}
		s.flushSync(e, c, being)
	})
}

// flushSync 把髒狀態組成同步訊息。固定順序:技能狀態、公共冷卻、
// 點數狀態、屬性變更;每類每刻最多一則。髒集合在訊息組完之後才
// 清空,組訊息途中腳本塞進來的變更不會遺失。
func (s *CharacterSystem) flushSync(e ecs.EntityID, c *component.Character, being *component.Being) {
	sess := s.deps.World.Session(c.SessionID)
	if sess == nil {
		return
	}

	if !c.DirtyAbilities.Empty() {
		if ab, ok := s.stores.Abilities.Get(e); ok {
			ids := c.DirtyAbilities.Values()
			entries := make([]handler.AbilityStatusEntry, 0, len(ids))
			for _, id := range ids {
				if !ab.Has(id) {
					continue
				}
				entries = append(entries, handler.AbilityStatusEntry{ID: id, Remaining: ab.Remaining(id)})
			}
			handler.SendAbilityStatus(sess, entries)
		}
		c.DirtyAbilities.Clear()
	}

	if c.SendAbilityCooldown {
		if ab, ok := s.stores.Abilities.Get(e); ok {
			handler.SendGlobalCooldown(sess, ab.GlobalCooldown())
		}
		c.SendAbilityCooldown = false
	}

	if c.PointsDirty {
		handler.SendPointsStatus(sess, c.Points, c.CorrectionPoints)
		c.PointsDirty = false
	}

	if !c.DirtyAttributes.Empty() {
		ids := c.DirtyAttributes.Values()
		entries := make([]handler.AttributeStatusEntry, 0, len(ids))
		for _, id := range ids {
			if !being.Attributes.Has(id) {
				continue
			}
			entries = append(entries, handler.AttributeStatusEntry{
				ID:       id,
				Base:     being.Attributes.Base(id),
				Modified: being.Attributes.Modified(id),
			})
		}
		handler.SendAttributeStatus(sess, entries)
		c.DirtyAttributes.Clear()
	}
}

// ==================== 進入世界 ====================

// SpawnFromMessage implements handler.CharacterManager.
// 解碼角色建立訊息:[D 資料庫編號][S 名稱][序列化角色資料]。
// 建立實體與全部元件、掛上同步監聽、登錄世界索引,最後跑登入掛鉤。
func (s *CharacterSystem) SpawnFromMessage(sess *net.Session, msg []byte) error {
	r := packet.NewPayloadReader(msg)
	dbID := r.ReadD()
	name := norm.NFC.String(r.ReadS())
	if name == "" {
		return fmt.Errorf("character %d has empty name", dbID)
	}
	cd, err := serialize.Read(r)
	if err != nil {
		return fmt.Errorf("decode character %d: %w", dbID, err)
	}
	if _, online := s.deps.World.GetByCharID(dbID); online {
		return fmt.Errorf("character %d already in world", dbID)
	}

	e := s.ecs.CreateEntity()

	being := component.NewBeing(name)
	saved := make(map[int32]float64, len(cd.Attributes))
	for _, a := range cd.Attributes {
		saved[a.ID] = a.Base
	}
	InitCharacterAttributes(being.Attributes, s.deps.Attributes, saved)
	s.stores.Beings.Set(e, being)

	c := component.NewCharacter(dbID, sess.ID)
	c.AccountName = sess.AccountName
	c.AccountLevel = cd.AccountLevel
	c.HairStyle = cd.HairStyle
	c.HairColor = cd.HairColor
	c.Points = cd.Points
	c.CorrectionPoints = cd.CorrectionPoints
	if len(cd.KillCounts) > 0 {
		c.KillCounts = make(map[int32]int32, len(cd.KillCounts))
		for _, k := range cd.KillCounts {
			c.KillCounts[k.TypeID] = k.Count
		}
	}
	s.stores.Characters.Set(e, c)

	ab := component.NewAbilities()
	for _, id := range cd.Abilities {
		ab.Grant(id)
	}
	s.stores.Abilities.Set(e, ab)

	poss := component.NewPossessions()
	for _, it := range cd.Possessions {
		poss.Set(it.Slot, component.ItemStack{ItemID: it.ItemID, Amount: it.Amount})
	}
	s.stores.Possessions.Set(e, poss)

	s.stores.Actors.Set(e, &component.Actor{
		MapID:     cd.MapID,
		X:         cd.X,
		Y:         cd.Y,
		WalkMask:  component.BlockWall,
		BlockType: component.BlockCharacter,
		Size:      16,
	})

	// 同步監聽:屬性與技能的每次變更都標進髒集合,公共冷卻走
	// 一次性旗標。屬性變更同時排進寫回佇列,生命值歸零觸發死亡。
	charID := dbID
	c.Unsubs = append(c.Unsubs,
		being.Attributes.Subscribe(func(id int32) {
			c.DirtyAttributes.Add(id)
			c.Dirty = true
			s.queueAttributeSave(charID, id)
			if id == data.AttrHP && being.Attributes.Modified(data.AttrHP) <= 0 {
				s.Died(e)
			}
		}),
		ab.SubscribeChanged(func(id int32) {
			c.DirtyAbilities.Add(id)
			c.Dirty = true
		}),
		ab.SubscribeGlobalCooldown(func() {
			c.SendAbilityCooldown = true
		}),
	)

	s.deps.World.AddPlayer(sess, e, dbID, name)

	// 首次同步:全部屬性、全部技能、點數一起標髒,下一刻整批送出。
	for _, id := range being.Attributes.IDs() {
		c.DirtyAttributes.Add(id)
	}
	for _, id := range ab.IDs() {
		c.DirtyAbilities.Add(id)
	}
	c.PointsDirty = true

	s.lua.CallLoginHook(dbID)
	event.Emit(s.bus, event.CharacterEnteredWorld{Entity: e, CharID: dbID, CharName: name})
	s.deps.Log.Info(fmt.Sprintf("角色進入世界  名稱=%s  編號=%d  地圖=%d", name, dbID, cd.MapID))
	return nil
}

// ==================== 死亡與重生 ====================

// Died 在實體死亡時呼叫:凍結動作狀態並通知死亡掛鉤。
// 掛鉤是射後不理,沒有註冊任何掛鉤時只改狀態。
func (s *CharacterSystem) Died(e ecs.EntityID) {
	being, ok := s.stores.Beings.Get(e)
	if !ok || being.Action == component.ActionDead {
		return
	}
	being.Action = component.ActionDead
	event.Emit(s.bus, event.BeingDied{Entity: e})

	if c, ok := s.stores.Characters.Get(e); ok {
		s.lua.CallDeathHook(c.DBID)
		s.deps.Log.Info(fmt.Sprintf("角色死亡  名稱=%s  編號=%d", being.Name, c.DBID))
	}
}

// Respawn implements handler.CharacterManager.
// 只有死亡中的角色能重生:先恢復站立,再交給死亡接受掛鉤;沒有
// 掛鉤時套用預設重生,滿血拉回重生點。活著的角色請求重生只記警告。
func (s *CharacterSystem) Respawn(e ecs.EntityID) {
	c, ok := s.stores.Characters.Get(e)
	if !ok {
		return
	}
	being, ok := s.stores.Beings.Get(e)
	if !ok {
		return
	}
	if being.Action != component.ActionDead {
		s.deps.Log.Warn("活著的角色請求重生", zap.Int32("char", c.DBID))
		return
	}

	being.Action = component.ActionStand

	if !s.lua.CallDeathAcceptedHook(c.DBID) {
		SetAttribute(being.Attributes, s.deps.Attributes, data.AttrHP, being.Attributes.Modified(data.AttrMaxHP))
		game := &s.deps.Config.Game
		s.deps.World.RequestWarp(e, game.RespawnMapID, game.RespawnX, game.RespawnY)
	}
	s.deps.Log.Info(fmt.Sprintf("角色重生  名稱=%s  編號=%d", being.Name, c.DBID))
}

// ==================== 配點 ====================

// UseCharacterPoint implements handler.CharacterManager.
// 花一點屬性點把可配點屬性的基礎值加一。非法屬性不動點數餘額。
func (s *CharacterSystem) UseCharacterPoint(e ecs.EntityID, attrID int32) handler.PointResult {
	c, ok := s.stores.Characters.Get(e)
	if !ok {
		return handler.PointInvalidAttribute
	}
	being, ok := s.stores.Beings.Get(e)
	if !ok {
		return handler.PointInvalidAttribute
	}
	info := s.deps.Attributes.Get(attrID)
	if info == nil || !info.Modifiable || !being.Attributes.Has(attrID) {
		return handler.PointInvalidAttribute
	}
	if c.Points <= 0 {
		return handler.PointNoPointsLeft
	}

	c.Points--
	SetAttribute(being.Attributes, s.deps.Attributes, attrID, being.Attributes.Base(attrID)+1)
	c.PointsDirty = true
	c.Dirty = true
	return handler.PointOk
}

// UseCorrectionPoint implements handler.CharacterManager.
// 花一點修正點把基礎值減一並退還一點屬性點。基礎值 1 是地板,
// 再往下修會被拒絕且兩種點數都不動。
func (s *CharacterSystem) UseCorrectionPoint(e ecs.EntityID, attrID int32) handler.PointResult {
	c, ok := s.stores.Characters.Get(e)
	if !ok {
		return handler.PointInvalidAttribute
	}
	being, ok := s.stores.Beings.Get(e)
	if !ok {
		return handler.PointInvalidAttribute
	}
	info := s.deps.Attributes.Get(attrID)
	if info == nil || !info.Modifiable || !being.Attributes.Has(attrID) {
		return handler.PointInvalidAttribute
	}
	if c.CorrectionPoints <= 0 {
		return handler.PointNoPointsLeft
	}
	if being.Attributes.Base(attrID) <= 1 {
		return handler.PointDenied
	}

	c.CorrectionPoints--
	c.Points++
	SetAttribute(being.Attributes, s.deps.Attributes, attrID, being.Attributes.Base(attrID)-1)
	c.PointsDirty = true
	c.Dirty = true
	return handler.PointOk
}

// ModifiedAllAttributes implements handler.CharacterManager.
// 全屬性重算並整批標髒,下一刻做一次完整重新同步。
func (s *CharacterSystem) ModifiedAllAttributes(e ecs.EntityID) {
	c, ok := s.stores.Characters.Get(e)
	if !ok {
		return
	}
	being, ok := s.stores.Beings.Get(e)
	if !ok {
		return
	}
	for _, id := range being.Attributes.IDs() {
		if info := s.deps.Attributes.Get(id); info != nil && len(info.DerivedFrom) > 0 {
			RecalculateBaseAttribute(being.Attributes, id)
		}
		c.DirtyAttributes.Add(id)
	}
}

// AccessLevel implements handler.CharacterManager.
func (s *CharacterSystem) AccessLevel(e ecs.EntityID) uint8 {
	if c, ok := s.stores.Characters.Get(e); ok {
		return c.AccountLevel
	}
	return 0
}

// ==================== 離線 ====================

// Disconnected 處理連線中斷。死亡中的角色先重生再存檔,下次登入
// 才不會卡在屍體狀態;進行中的交易取消一次,NPC 對話直接丟棄。
// 重複呼叫是無害的:已離線的角色直接返回。
func (s *CharacterSystem) Disconnected(e ecs.EntityID) {
	c, ok := s.stores.Characters.Get(e)
	if !ok || !c.Connected {
		return
	}
	c.Connected = false

	name := ""
	if being, ok := s.stores.Beings.Get(e); ok {
		name = being.Name
		if being.Action == component.ActionDead {
			s.Respawn(e)
		}
	}

	c.Transaction.Cancel()
	delete(s.npcThreads, e)
	c.Unsubscribe()

	s.deps.World.RemovePlayer(c.SessionID, c.DBID, name)
	s.deps.World.RequestRemoval(e)

	// 離線存檔由 persist 階段的全量快照完成。
	c.Dirty = true

	event.Emit(s.bus, event.CharacterDisconnected{Entity: e, CharID: c.DBID, CharName: name})
	s.deps.Log.Info(fmt.Sprintf("角色離開世界  名稱=%s  編號=%d", name, c.DBID))
}

// ==================== NPC 對話 ====================

// StartNpcThread implements handler.CharacterManager.
// 開始一段新的 NPC 對話並立刻推進到第一個停頓點。已有對話時
// 直接換成新的,舊協程丟給垃圾回收。
func (s *CharacterSystem) StartNpcThread(e ecs.EntityID, npcID int32) {
	c, ok := s.stores.Characters.Get(e)
	if !ok {
		return
	}
	th, err := s.lua.NewDialogueThread("npc_talk")
	if err != nil {
		s.deps.Log.Warn("無法建立 NPC 對話",
			zap.Int32("char", c.DBID),
			zap.Int32("npc", npcID),
			zap.Error(err),
		)
		return
	}
	s.npcThreads[e] = &npcDialogue{thread: th, npcID: npcID}
	s.resumeDialogue(e, c, th, lua.LNumber(c.DBID), lua.LNumber(npcID))
}

// ResumeNpcThread implements handler.CharacterManager.
// 推進等待輸入的 NPC 對話。沒有進行中的對話時忽略,客戶端重送
// 的「下一步」不會產生副作用。
func (s *CharacterSystem) ResumeNpcThread(e ecs.EntityID) {
	c, ok := s.stores.Characters.Get(e)
	if !ok {
		return
	}
	d, ok := s.npcThreads[e]
	if !ok {
		return
	}
	s.resumeDialogue(e, c, d.thread)
}

// resumeDialogue 推進對話協程,完成時通知客戶端關閉對話視窗。
func (s *CharacterSystem) resumeDialogue(e ecs.EntityID, c *component.Character, th *scripting.Thread, args ...lua.LValue) {
	done, err := s.lua.ResumeThread(th, args...)
	if err != nil {
		s.deps.Log.Error("NPC 對話腳本錯誤", zap.Int32("char", c.DBID), zap.Error(err))
	}
	if !done {
		return
	}
	d := s.npcThreads[e]
	delete(s.npcThreads, e)
	if d != nil {
		if sess := s.deps.World.Session(c.SessionID); sess != nil {
			handler.SendNpcClose(sess, d.npcID)
		}
	}
}

// ==================== 腳本介面 ====================
// scripting.GameAPI 的實作。腳本一律用資料庫編號指涉角色,
// 不在世界中的編號回傳失敗而不是錯誤。

func (s *CharacterSystem) AttributeBase(charID, attrID int32) (float64, bool) {
	being, ok := s.beingByChar(charID)
	if !ok || !being.Attributes.Has(attrID) {
		return 0, false
	}
	return being.Attributes.Base(attrID), true
}

func (s *CharacterSystem) AttributeModified(charID, attrID int32) (float64, bool) {
	being, ok := s.beingByChar(charID)
	if !ok || !being.Attributes.Has(attrID) {
		return 0, false
	}
	return being.Attributes.Modified(attrID), true
}

func (s *CharacterSystem) SetAttributeBase(charID, attrID int32, value float64) bool {
	being, ok := s.beingByChar(charID)
	if !ok || !being.Attributes.Has(attrID) {
		return false
	}
	return SetAttribute(being.Attributes, s.deps.Attributes, attrID, value)
}

func (s *CharacterSystem) Warp(charID, mapID, x, y int32) bool {
	e, ok := s.deps.World.GetByCharID(charID)
	if !ok {
		return false
	}
	s.deps.World.RequestWarp(e, mapID, x, y)
	return true
}

func (s *CharacterSystem) KillCount(charID, adversaryID int32) int32 {
	e, ok := s.deps.World.GetByCharID(charID)
	if !ok {
		return 0
	}
	c, ok := s.stores.Characters.Get(e)
	if !ok {
		return 0
	}
	return c.KillCount(adversaryID)
}

func (s *CharacterSystem) GrantAbility(charID, abilityID int32) bool {
	e, ok := s.deps.World.GetByCharID(charID)
	if !ok {
		return false
	}
	ab, ok := s.stores.Abilities.Get(e)
	if !ok || s.deps.Abilities.Get(abilityID) == nil {
		return false
	}
	ab.Grant(abilityID)
	return true
}

func (s *CharacterSystem) UseAbility(charID, abilityID int32) bool {
	e, ok := s.deps.World.GetByCharID(charID)
	if !ok {
		return false
	}
	ab, ok := s.stores.Abilities.Get(e)
	if !ok {
		return false
	}
	return TriggerAbility(ab, s.deps.Abilities, abilityID)
}

func (s *CharacterSystem) SendNpcMessage(charID, npcID int32, text string) bool {
	e, ok := s.deps.World.GetByCharID(charID)
	if !ok {
		return false
	}
	c, ok := s.stores.Characters.Get(e)
	if !ok {
		return false
	}
	sess := s.deps.World.Session(c.SessionID)
	if sess == nil {
		return false
	}
	handler.SendNpcMessage(sess, npcID, text)
	return true
}

func (s *CharacterSystem) beingByChar(charID int32) (*component.Being, bool) {
	e, ok := s.deps.World.GetByCharID(charID)
	if !ok {
		return nil, false
	}
	return s.stores.Beings.Get(e)
}

// ==================== 屬性寫回 ====================

// queueAttributeSave 記下變更過的屬性編號,等 persist 階段批次寫回。
func (s *CharacterSystem) queueAttributeSave(charID, attrID int32) {
	m := s.attrSaves[charID]
	if m == nil {
		m = make(map[int32]struct{})
		s.attrSaves[charID] = m
	}
	m[attrID] = struct{}{}
}

// DrainAttributeSaves 取出累積的屬性變更,數值以取出當下為準。
// 已離開世界的角色略過:離線時的全量快照會補上最終狀態。
func (s *CharacterSystem) DrainAttributeSaves() map[int32][]persist.AttributeRow {
	if len(s.attrSaves) == 0 {
		return nil
	}
	out := make(map[int32][]persist.AttributeRow, len(s.attrSaves))
	for charID, ids := range s.attrSaves {
		being, ok := s.beingByChar(charID)
		if !ok {
			continue
		}
		rows := make([]persist.AttributeRow, 0, len(ids))
		for id := range ids {
			rows = append(rows, persist.AttributeRow{
				AttrID:   id,
				Base:     being.Attributes.Base(id),
				Modified: being.Attributes.Modified(id),
			})
		}
		out[charID] = rows
	}
	clear(s.attrSaves)
	return out
}
