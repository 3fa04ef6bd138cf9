package handler

import (
	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
)

// HandleNpcTalk processes C_NPC_TALK (opcode 0x20).
// 玩家點擊 NPC 開啟對話；已有進行中的對話時直接被新執行緒取代。
// Format: [H npc id]
func HandleNpcTalk(sess *net.Session, r *packet.Reader, deps *Deps) {
	npcID := int32(r.ReadH())

	entity, ok := deps.World.GetBySession(sess.ID)
	if !ok {
		return
	}
	deps.Characters.StartNpcThread(entity, npcID)
}

// HandleNpcNext processes C_NPC_NEXT (opcode 0x21)，對話視窗的「繼續」。
// 恢復暫停中的對話執行緒；沒有進行中的對話時忽略。
func HandleNpcNext(sess *net.Session, _ *packet.Reader, deps *Deps) {
	entity, ok := deps.World.GetBySession(sess.ID)
	if !ok {
		return
	}
	deps.Characters.ResumeNpcThread(entity)
}
