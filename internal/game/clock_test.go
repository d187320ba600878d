package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTick_IgnoresUntimedPhases(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())

	for _, phase := range []Phase{PhaseLobby, PhaseSetup, PhaseResult} {
		s := seated(phase, 0, "wolf", "village")
		next, err := e.Tick(s)
		require.NoError(t, err)
		assert.Same(t, s, next, phase)
		assert.Equal(t, 100, next.Timer)
	}
}

func TestTick_CountsDown(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "seer", "knight", "village", "village")

	next, err := e.Tick(s)
	require.NoError(t, err)

	assert.Equal(t, 99, next.Timer)
	assert.Equal(t, 100, s.Timer, "input snapshot is unchanged")
	assert.Equal(t, PhaseNight, next.Phase)
}

func TestTick_ResolvesAtZero(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "seer", "knight", "village", "village")
	s.Timer = 0

	next, err := e.Tick(s)
	require.NoError(t, err)
	assert.Equal(t, PhaseDay, next.Phase, "an overdue phase resolves on the next tick")
}

func TestPhase_Timed(t *testing.T) {
	tests := map[Phase]bool{
		PhaseLobby:  false,
		PhaseSetup:  false,
		PhaseNight:  true,
		PhaseDay:    true,
		PhaseVote:   true,
		PhaseRevote: true,
		PhaseResult: false,
	}
	for phase, want := range tests {
		assert.Equal(t, want, phase.Timed(), phase)
	}
}
