package system

import (
	"context"
	"fmt"
	"time"

	coresys "github.com/duskhaven/server/internal/core/system"
	"github.com/duskhaven/server/internal/handler"
	"github.com/duskhaven/server/internal/net"
	"github.com/duskhaven/server/internal/net/packet"
	"go.uber.org/zap"
)

// InputSystem drains the network side into the game loop: new sessions,
// inbound packets, dead sessions. Phase 0 (Input).
type InputSystem struct {
	deps       *handler.Deps
	netServer  *net.Server
	registry   *packet.Registry
	chars      *CharacterSystem
	maxPerTick int

	// Live sessions, including ones still logging in. Game loop only.
	sessions map[uint64]*net.Session
}

func NewInputSystem(deps *handler.Deps, netServer *net.Server, registry *packet.Registry, chars *CharacterSystem, maxPerTick int) *InputSystem {
	return &InputSystem{
		deps:       deps,
		netServer:  netServer,
		registry:   registry,
		chars:      chars,
		maxPerTick: maxPerTick,
		sessions:   make(map[uint64]*net.Session),
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// EachSession 走訪所有還掛在遊戲迴圈上的連線,含尚未進入世界的。
func (s *InputSystem) EachSession(fn func(sess *net.Session)) {
	for _, sess := range s.sessions {
		fn(sess)
	}
}

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.sessions[sess.ID] = sess
		default:
			goto doneNew
		}
	}
doneNew:

	// Drain packets from each session (up to maxPerTick per session)
	for _, sess := range s.sessions {
		if sess.IsClosed() {
			// Drain remaining packets before cleanup so a quit or save
			// request sent just before the disconnect still lands.
			for i := 0; i < s.maxPerTick; i++ {
				select {
				case data := <-sess.InQueue:
					if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
						s.deps.Log.Debug("封包分派錯誤 (斷線中)",
							zap.Uint64("session", sess.ID),
							zap.Error(err),
						)
					}
				default:
					goto doneClosing
				}
			}
		doneClosing:
			sess.FlushOutput()
			s.handleDisconnect(sess)
			continue
		}

		processed := false
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				processed = true
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.deps.Log.Debug("封包分派錯誤",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				goto nextSession
			}
		}
	nextSession:
		// 這一刻有處理過封包的角色標髒,persist 階段只存髒角色。
		if processed && sess.State() == packet.StateInWorld {
			if e, ok := s.deps.World.GetBySession(sess.ID); ok {
				if c, ok := s.chars.stores.Characters.Get(e); ok {
					c.Dirty = true
				}
			}
		}
	}

	// Catch sessions that died without ever being registered, like a
	// connection dropped by the accept-queue overflow path.
	for {
		select {
		case sess := <-s.netServer.DeadSessions():
			s.handleDisconnect(sess)
		default:
			goto doneDead
		}
	}
doneDead:

	// 提前沖一次:登入與進入世界的回覆在 Phase 0 就進 OutQueue,
	// writeLoop 不必等到 Phase 4 才開始送。
	s.EachSession(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// handleDisconnect removes the session from the loop and tears down its
// character and account state. Safe to reach twice for one session; the
// second call finds it already gone.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	if _, tracked := s.sessions[sess.ID]; !tracked {
		return
	}
	delete(s.sessions, sess.ID)

	if e, ok := s.deps.World.GetBySession(sess.ID); ok {
		s.chars.Disconnected(e)
	}

	if sess.AccountName != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.deps.AccountRepo.SetOnline(ctx, sess.AccountName, false); err != nil {
			s.deps.Log.Error("更新帳號離線狀態失敗",
				zap.String("account", sess.AccountName),
				zap.Error(err),
			)
		}
		cancel()
	}

	s.deps.Log.Info(fmt.Sprintf("連線關閉  session=%d  ip=%s", sess.ID, sess.IP))
}
