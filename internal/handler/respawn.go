package handler

import (
	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
)

// HandleRespawn processes C_RESPAWN (opcode 0x12)，玩家接受死亡。
// 對活著的角色呼叫只會記 log，不會有任何變化。
func HandleRespawn(sess *net.Session, _ *packet.Reader, deps *Deps) {
	entity, ok := deps.World.GetBySession(sess.ID)
	if !ok {
		return
	}
	deps.Characters.Respawn(entity)
}
