package handler

import (
	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
)

// HandleRaiseStat processes C_RAISE_STAT (opcode 0x10).
// 花費一點屬性點提升一項可配點屬性。結果碼由編排器判定。
// Format: [H attribute id]
func HandleRaiseStat(sess *net.Session, r *packet.Reader, deps *Deps) {
	attrID := int32(r.ReadH())

	entity, ok := deps.World.GetBySession(sess.ID)
	if !ok {
		return
	}
	result := deps.Characters.UseCharacterPoint(entity, attrID)
	SendPointResult(sess, result, attrID)
}

// HandleLowerStat processes C_LOWER_STAT (opcode 0x11).
// 花費一點修正點降低一項屬性並退還一點屬性點。
// Format: [H attribute id]
func HandleLowerStat(sess *net.Session, r *packet.Reader, deps *Deps) {
	attrID := int32(r.ReadH())

	entity, ok := deps.World.GetBySession(sess.ID)
	if !ok {
		return
	}
	result := deps.Characters.UseCorrectionPoint(entity, attrID)
	SendPointResult(sess, result, attrID)
}
