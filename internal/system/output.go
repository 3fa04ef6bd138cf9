package system

import (
	"time"

	coresys "github.com/duskhaven/server/internal/core/system"
	"github.com/duskhaven/server/internal/net"
)

// OutputSystem hands every session's buffered packets to its write loop.
// Phase 4 (Output), after all sync messages for the tick are built.
type OutputSystem struct {
	input *InputSystem
}

func NewOutputSystem(input *InputSystem) *OutputSystem {
	return &OutputSystem{input: input}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.input.EachSession(func(sess *net.Session) {
		sess.FlushOutput()
	})
}
