package handler

import (
	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
)

// 同步訊息的發送函式。封包處理器與編排器（system/character.go）共用，
// 每個類別每 tick 最多送出一次由呼叫端保證。

// AbilityStatusEntry 是能力同步訊息的一列。
type AbilityStatusEntry struct {
	ID        int32
	Remaining int32
}

// AttributeStatusEntry 是屬性同步訊息的一列。數值以 1/256 定點編碼。
type AttributeStatusEntry struct {
	ID       int32
	Base     float64
	Modified float64
}

// SendAbilityStatus 發送 S_OPCODE_ABILITY_STATUS。
// 格式: repeat{[C ability id][D remaining]}
func SendAbilityStatus(sess *net.Session, entries []AbilityStatusEntry) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ABILITY_STATUS)
	for _, e := range entries {
		w.WriteC(byte(e.ID))
		w.WriteD(e.Remaining)
	}
	sess.Send(w.Bytes())
}

// SendGlobalCooldown 發送 S_OPCODE_GLOBAL_COOLDOWN。
// 格式: [H ticks]
func SendGlobalCooldown(sess *net.Session, ticks int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_GLOBAL_COOLDOWN)
	w.WriteH(uint16(ticks))
	sess.Send(w.Bytes())
}

// SendPointsStatus 發送 S_OPCODE_POINTS_STATUS。
// 格式: [H spendable][H correction]
func SendPointsStatus(sess *net.Session, spendable, correction int16) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_POINTS_STATUS)
	w.WriteH(uint16(spendable))
	w.WriteH(uint16(correction))
	sess.Send(w.Bytes())
}

// SendAttributeStatus 發送 S_OPCODE_ATTR_CHANGE。沒有任何變更時完全不送。
// 格式: repeat{[H attr id][D base*256][D modified*256]}
func SendAttributeStatus(sess *net.Session, entries []AttributeStatusEntry) {
	if len(entries) == 0 {
		return
	}
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ATTR_CHANGE)
	for _, e := range entries {
		w.WriteH(uint16(e.ID))
		w.WriteD(int32(e.Base * 256))
		w.WriteD(int32(e.Modified * 256))
	}
	sess.Send(w.Bytes())
}

// SendPointResult 發送 S_OPCODE_POINT_RESULT。
// 格式: [C result][H attr id]
func SendPointResult(sess *net.Session, result PointResult, attrID int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_POINT_RESULT)
	w.WriteC(byte(result))
	w.WriteH(uint16(attrID))
	sess.Send(w.Bytes())
}

// SendNpcMessage 發送 S_OPCODE_NPC_MESSAGE，一段 NPC 對話文字。
// 格式: [H npc id][S text]
func SendNpcMessage(sess *net.Session, npcID int32, text string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_NPC_MESSAGE)
	w.WriteH(uint16(npcID))
	w.WriteS(text)
	sess.Send(w.Bytes())
}

// SendNpcClose 發送 S_OPCODE_NPC_CLOSE，通知客戶端關閉對話視窗。
// 格式: [H npc id]
func SendNpcClose(sess *net.Session, npcID int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_NPC_CLOSE)
	w.WriteH(uint16(npcID))
	sess.Send(w.Bytes())
}

// SendPlayerWarped 發送 S_OPCODE_PLAYER_WARPED。
// 格式: [H map][H x][H y]
func SendPlayerWarped(sess *net.Session, mapID, x, y int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PLAYER_WARPED)
	w.WriteH(uint16(mapID))
	w.WriteH(uint16(x))
	w.WriteH(uint16(y))
	sess.Send(w.Bytes())
}

// SendSystemMessage 發送 S_OPCODE_SYSTEM_MESSAGE，系統文字訊息。
// 格式: [S text]
func SendSystemMessage(sess *net.Session, text string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SYSTEM_MESSAGE)
	w.WriteS(text)
	sess.Send(w.Bytes())
}
