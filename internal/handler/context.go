package handler

import (
	"github.com/duskhaven/server/internal/config"
	"github.com/duskhaven/server/internal/core/ecs"
	"github.com/duskhaven/server/internal/data"
	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
	"github.com/duskhaven/server/internal/perm"
	"github.com/duskhaven/server/internal/persist"
	"github.com/duskhaven/server/internal/world"
	"go.uber.org/zap"
)

// PointResult 是配點操作的結果碼，隨 S_OPCODE_POINT_RESULT 回傳客戶端。
type PointResult byte

const (
	PointOk PointResult = iota
	PointInvalidAttribute
	PointNoPointsLeft
	PointDenied
)

// CharacterManager 是角色編排器對封包層的操作面。system/character.go 實作。
type CharacterManager interface {
	// SpawnFromMessage 解碼角色建立訊息並將角色放入世界。
	SpawnFromMessage(sess *net.Session, msg []byte) error
	UseCharacterPoint(e ecs.EntityID, attrID int32) PointResult
	UseCorrectionPoint(e ecs.EntityID, attrID int32) PointResult
	Respawn(e ecs.EntityID)
	ModifiedAllAttributes(e ecs.EntityID)
	StartNpcThread(e ecs.EntityID, npcID int32)
	ResumeNpcThread(e ecs.EntityID)
	AccessLevel(e ecs.EntityID) uint8
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config      *config.Config
	Log         *zap.Logger
	World       *world.State
	Characters  CharacterManager
	Perm        *perm.Evaluator
	AccountRepo *persist.AccountRepo
	CharRepo    *persist.CharacterRepo
	Attributes  *data.AttributeTable
	Abilities   *data.AbilityTable
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.C_OPCODE_LOGIN,
		[]packet.SessionState{packet.StateConnected},
		func(sess any, r *packet.Reader) {
			HandleLogin(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_ENTER_WORLD,
		[]packet.SessionState{packet.StateAuthenticated},
		func(sess any, r *packet.Reader) {
			HandleEnterWorld(sess.(*net.Session), r, deps)
		},
	)

	// In-world phase
	inWorldStates := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_RAISE_STAT, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleRaiseStat(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_LOWER_STAT, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleLowerStat(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_RESPAWN, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleRespawn(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_NPC_TALK, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleNpcTalk(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_NPC_NEXT, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleNpcNext(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_GM_COMMAND, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleGmCommand(sess.(*net.Session), r, deps)
		},
	)

	// Always allowed (any active state)
	aliveStates := []packet.SessionState{
		packet.StateConnected, packet.StateAuthenticated, packet.StateInWorld,
	}
	reg.Register(packet.C_OPCODE_PING, aliveStates,
		func(sess any, r *packet.Reader) {
			// Keep-alive: no-op, just prevents idle timeout
		},
	)
	reg.Register(packet.C_OPCODE_QUIT, aliveStates,
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}
