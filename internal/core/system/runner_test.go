package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	phase Phase
	name  string
	trace *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }

func (s *recordingSystem) Update(_ time.Duration) {
	*s.trace = append(*s.trace, s.name)
}

func TestRunnerExecutesInPhaseOrder(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseCleanup, name: "cleanup", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseInput, name: "input", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "update", trace: &trace})

	r.Tick(time.Millisecond)

	assert.Equal(t, []string{"input", "update", "cleanup"}, trace)
}

func TestRunnerKeepsRegistrationOrderWithinPhase(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "first", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "second", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "third", trace: &trace})

	r.Tick(time.Millisecond)
	r.Tick(time.Millisecond)

	assert.Equal(t, []string{
		"first", "second", "third",
		"first", "second", "third",
	}, trace)
}

func TestRunnerSortsSystemsRegisteredAfterFirstTick(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseOutput, name: "output", trace: &trace})
	r.Tick(time.Millisecond)

	r.Register(&recordingSystem{phase: PhaseInput, name: "input", trace: &trace})
	trace = trace[:0]
	r.Tick(time.Millisecond)

	assert.Equal(t, []string{"input", "output"}, trace)
}
