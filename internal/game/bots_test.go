package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBots_PickNightTargets(t *testing.T) {
	e := newTestEngine(t, 3, testTimings())
	s := seated(PhaseNight, 1, "wolf", "seer", "knight", "village", "village")
	s.Participants[0].Bot = true
	s.Participants[1].Bot = true

	s, err := e.Tick(s)
	require.NoError(t, err)

	wolf := participant(t, s, "p1")
	assert.True(t, wolf.Acted)
	assert.NotEqual(t, "p1", wolf.NightTarget)
	assert.NotEmpty(t, wolf.NightTarget)
	assert.False(t, participant(t, s, "p2").Acted, "a bot diviner waits on night one")
	assert.Equal(t, PhaseNight, s.Phase, "the human knight has not acted")
}

func TestBots_Vote(t *testing.T) {
	e := newTestEngine(t, 3, testTimings())
	s := seated(PhaseVote, 2, "wolf", "seer", "knight", "village", "village")
	for i := 1; i < len(s.Participants); i++ {
		s.Participants[i].Bot = true
	}

	s, err := e.Tick(s)
	require.NoError(t, err)

	for _, p := range s.Participants[1:] {
		assert.True(t, p.Acted, p.ID)
		assert.NotEqual(t, p.ID, p.VoteTarget)
	}
	assert.Equal(t, PhaseVote, s.Phase, "the human has not voted")
}

func TestBots_AgreeToSkip(t *testing.T) {
	timings := testTimings()
	timings.BotSkipChance = 1
	e := newTestEngine(t, 3, timings)
	s := seated(PhaseDay, 2, "wolf", "seer", "knight", "village")
	s.Participants[2].Bot = true
	s.Participants[3].Bot = true

	s, err := e.Tick(s)
	require.NoError(t, err)
	assert.Equal(t, PhaseVote, s.Phase)
}

func TestBots_NeverSkipAtZeroChance(t *testing.T) {
	e := newTestEngine(t, 3, testTimings())
	s := seated(PhaseDay, 2, "wolf", "seer", "knight", "village")
	for i := range s.Participants {
		s.Participants[i].Bot = true
	}

	for i := 0; i < 10; i++ {
		var err error
		s, err = e.Tick(s)
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseDay, s.Phase)
	assert.Equal(t, 90, s.Timer)
}

// playOut runs a room of one idle human and bots until it finishes
func playOut(t *testing.T, seed int64) *RoomState {
	t.Helper()
	e := newTestEngine(t, seed, Timings{NightSeconds: 3, DaySeconds: 3, VoteSeconds: 3, BotSkipChance: 0.5, MaxParticipants: 20})
	s := newLobby(t, e, 1)
	for i := 0; i < 7; i++ {
		var err error
		s, _, err = e.AddBot(s)
		require.NoError(t, err)
	}
	s, err := e.ApplyTemplate(s)
	require.NoError(t, err)
	s, err = e.StartGame(s)
	require.NoError(t, err)

	for i := 0; i < 1000 && s.Phase != PhaseResult; i++ {
		s, err = e.Tick(s)
		require.NoError(t, err)
	}
	return s
}

func TestBots_GameRunsToCompletion(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		s := playOut(t, seed)

		require.Equal(t, PhaseResult, s.Phase, "seed %d", seed)
		assert.NotEmpty(t, s.Winner)
		assert.Equal(t, 0, s.Timer)

		alive := aliveCount(s)
		dead := 0
		for _, p := range s.Participants {
			if !p.Alive {
				dead++
				assert.NotEmpty(t, p.DeathReason, p.Name)
			}
		}
		assert.Equal(t, len(s.Participants), alive+dead)
	}
}

func TestBots_SameSeedSameGame(t *testing.T) {
	assert.Equal(t, playOut(t, 11), playOut(t, 11))
}
