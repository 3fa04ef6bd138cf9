package world

import (
	"github.com/duskhaven/server/internal/core/ecs"
	"github.com/duskhaven/server/internal/net"
)

// WarpRequest 是待執行的傳送：warp 系統在 tick 後段統一套用，
// 避免腳本回呼在屬性同步途中改動座標。
type WarpRequest struct {
	Entity ecs.EntityID
	MapID  int32
	X      int32
	Y      int32
}

// State 追蹤目前在世界中的角色實體與其連線。
// 僅限遊戲迴圈 goroutine 存取，不需要鎖。
type State struct {
	bySession map[uint64]ecs.EntityID
	byCharID  map[int32]ecs.EntityID
	byName    map[string]ecs.EntityID

	sessions map[uint64]*net.Session

	warps    []WarpRequest
	removals []ecs.EntityID
}

func NewState() *State {
	return &State{
		bySession: make(map[uint64]ecs.EntityID),
		byCharID:  make(map[int32]ecs.EntityID),
		byName:    make(map[string]ecs.EntityID),
		sessions:  make(map[uint64]*net.Session),
	}
}

// AddPlayer 將進入世界的角色登錄到各索引。
func (s *State) AddPlayer(sess *net.Session, entity ecs.EntityID, charID int32, name string) {
	s.bySession[sess.ID] = entity
	s.byCharID[charID] = entity
	s.byName[name] = entity
	s.sessions[sess.ID] = sess
}

// RemovePlayer 從所有索引移除角色，回傳其實體（不存在時回傳零值）。
func (s *State) RemovePlayer(sessionID uint64, charID int32, name string) ecs.EntityID {
	entity, ok := s.bySession[sessionID]
	if !ok {
		return 0
	}
	delete(s.bySession, sessionID)
	delete(s.byCharID, charID)
	delete(s.byName, name)
	delete(s.sessions, sessionID)
	return entity
}

// GetBySession 以連線 ID 查角色實體。
func (s *State) GetBySession(sessionID uint64) (ecs.EntityID, bool) {
	e, ok := s.bySession[sessionID]
	return e, ok
}

// GetByCharID 以資料庫角色 ID 查實體。
func (s *State) GetByCharID(charID int32) (ecs.EntityID, bool) {
	e, ok := s.byCharID[charID]
	return e, ok
}

// GetByName 以角色名稱查實體。
func (s *State) GetByName(name string) (ecs.EntityID, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// Session 回傳連線物件；斷線後為 nil。
func (s *State) Session(sessionID uint64) *net.Session {
	return s.sessions[sessionID]
}

// PlayerCount 回傳在世界中的角色數。
func (s *State) PlayerCount() int {
	return len(s.bySession)
}

// AllPlayers 走訪所有在世界中的角色實體。
func (s *State) AllPlayers(fn func(entity ecs.EntityID)) {
	for _, e := range s.bySession {
		fn(e)
	}
}

// RequestWarp 排入一筆傳送請求。
func (s *State) RequestWarp(entity ecs.EntityID, mapID, x, y int32) {
	s.warps = append(s.warps, WarpRequest{Entity: entity, MapID: mapID, X: x, Y: y})
}

// DrainWarps 取出並清空傳送佇列。
func (s *State) DrainWarps() []WarpRequest {
	out := s.warps
	s.warps = nil
	return out
}

// RequestRemoval 排入一筆移除請求；實際銷毀由 cleanup 系統執行。
func (s *State) RequestRemoval(entity ecs.EntityID) {
	s.removals = append(s.removals, entity)
}

// DrainRemovals 取出並清空移除佇列。
func (s *State) DrainRemovals() []ecs.EntityID {
	out := s.removals
	s.removals = nil
	return out
}
