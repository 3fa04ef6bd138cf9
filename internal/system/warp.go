package system

import (
	"time"

	"github.com/duskhaven/server/internal/component"
	"github.com/duskhaven/server/internal/core/ecs"
	coresys "github.com/duskhaven/server/internal/core/system"
	"github.com/duskhaven/server/internal/handler"
	"github.com/duskhaven/server/internal/world"
)

// WarpSystem 統一套用本刻累積的傳送請求。Phase 3 (PostUpdate),
// 排在遊戲邏輯之後,腳本在屬性同步途中改座標也不會撕裂狀態。
type WarpSystem struct {
	world  *world.State
	chars  *ecs.Store[component.Character]
	actors *ecs.Store[component.Actor]
}

func NewWarpSystem(ws *world.State, chars *ecs.Store[component.Character], actors *ecs.Store[component.Actor]) *WarpSystem {
	return &WarpSystem{world: ws, chars: chars, actors: actors}
}

func (s *WarpSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *WarpSystem) Update(_ time.Duration) {
	for _, req := range s.world.DrainWarps() {
		actor, ok := s.actors.Get(req.Entity)
		if !ok {
			continue
		}
		actor.MapID = req.MapID
		actor.X = req.X
		actor.Y = req.Y

		if c, ok := s.chars.Get(req.Entity); ok {
			c.Dirty = true
			if sess := s.world.Session(c.SessionID); sess != nil {
				handler.SendPlayerWarped(sess, req.MapID, req.X, req.Y)
			}
		}
	}
}
