package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
	"github.com/duskhaven/server/internal/persist"
	"github.com/duskhaven/server/internal/serialize"
)

// HandleEnterWorld processes C_ENTER_WORLD (opcode 0x02).
// Format: [D char id][S enter token]
// 驗證登入時發出的憑證，從資料庫組合角色建立訊息，交給編排器生成角色。
func HandleEnterWorld(sess *net.Session, r *packet.Reader, deps *Deps) {
	charID := r.ReadD()
	token := r.ReadS()

	parsed, err := uuid.Parse(token)
	if err != nil || parsed != sess.EnterToken || sess.EnterToken == uuid.Nil {
		deps.Log.Warn("進入世界憑證不符",
			zap.Uint64("session", sess.ID),
			zap.String("account", sess.AccountName),
		)
		sess.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row, err := deps.CharRepo.LoadByID(ctx, charID)
	if err != nil {
		deps.Log.Error("載入角色資料庫錯誤", zap.Error(err))
		sess.Close()
		return
	}
	if row == nil || row.AccountName != sess.AccountName {
		deps.Log.Warn("進入世界角色不屬於此帳號",
			zap.Int32("char_id", charID),
			zap.String("account", sess.AccountName),
		)
		sess.Close()
		return
	}

	account, err := deps.AccountRepo.Load(ctx, sess.AccountName)
	if err != nil || account == nil {
		deps.Log.Error("載入帳號資料庫錯誤", zap.Error(err))
		sess.Close()
		return
	}

	attrs, err := deps.CharRepo.LoadAttributes(ctx, row.ID)
	if err != nil {
		deps.Log.Error("載入角色屬性資料庫錯誤", zap.Error(err))
		sess.Close()
		return
	}
	kills, err := deps.CharRepo.LoadKills(ctx, row.ID)
	if err != nil {
		deps.Log.Error("載入擊殺紀錄資料庫錯誤", zap.Error(err))
		sess.Close()
		return
	}
	abilities, err := deps.CharRepo.LoadAbilities(ctx, row.ID)
	if err != nil {
		deps.Log.Error("載入角色能力資料庫錯誤", zap.Error(err))
		sess.Close()
		return
	}
	items, err := deps.CharRepo.LoadItems(ctx, row.ID)
	if err != nil {
		deps.Log.Error("載入角色物品資料庫錯誤", zap.Error(err))
		sess.Close()
		return
	}

	msg := buildCreationMessage(row, account, attrs, kills, abilities, items)
	if err := deps.Characters.SpawnFromMessage(sess, msg); err != nil {
		deps.Log.Error("角色生成失敗",
			zap.Int32("char_id", row.ID),
			zap.Error(err),
		)
		sess.Close()
		return
	}

	sess.CharName = row.Name
	sess.SetState(packet.StateInWorld)
	sendEnterWorldAck(sess, row.ID, row.Name)

	deps.Log.Info(fmt.Sprintf("進入世界  帳號=%s  角色=%s", sess.AccountName, row.Name))
}

// buildCreationMessage 將資料庫列組裝成角色建立訊息。
// 格式: [D persistent id][S name][serialized payload]
func buildCreationMessage(row *persist.CharacterRow, account *persist.AccountRow,
	attrs []persist.AttributeRow, kills []persist.KillRow, abilities []int32, items []persist.ItemRow) []byte {

	d := &serialize.CharacterData{
		AccountLevel:     uint8(account.AccessLevel),
		HairStyle:        uint8(row.HairStyle),
		HairColor:        uint8(row.HairColor),
		Points:           row.Points,
		CorrectionPoints: row.CorrectionPoints,
		MapID:            row.MapID,
		X:                row.X,
		Y:                row.Y,
		Abilities:        abilities,
	}
	for _, a := range attrs {
		d.Attributes = append(d.Attributes, serialize.AttributeValue{ID: a.AttrID, Base: a.Base})
	}
	for _, k := range kills {
		d.KillCounts = append(d.KillCounts, serialize.KillCount{TypeID: k.TypeID, Count: k.Count})
	}
	for _, it := range items {
		d.Possessions = append(d.Possessions, serialize.SlotItem{Slot: it.Slot, ItemID: it.ItemID, Amount: it.Amount})
	}

	w := packet.NewWriter()
	w.WriteD(row.ID)
	w.WriteS(row.Name)
	serialize.Write(w, d)
	return w.Bytes()
}

// sendEnterWorldAck 發送 S_OPCODE_ENTER_WORLD。
// 格式: [D char id][S name]
func sendEnterWorldAck(sess *net.Session, charID int32, name string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ENTER_WORLD)
	w.WriteD(charID)
	w.WriteS(name)
	sess.Send(w.Bytes())
}
