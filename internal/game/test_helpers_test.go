package game

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nightfall"
	"nightfall/internal/common/clock"
	"nightfall/internal/common/uuid"
)

var testNow = time.Date(2025, 4, 5, 21, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadCatalog(nightfall.RoleCatalogYAML)
	require.NoError(t, err)
	return c
}

func testTimings() Timings {
	return Timings{NightSeconds: 300, DaySeconds: 300, VoteSeconds: 120, MaxParticipants: 20}
}

// newTestEngine creates an engine with a seeded random source, a fixed clock
// and sequential ids
func newTestEngine(t *testing.T, seed int64, timings Timings) *Engine {
	t.Helper()
	e, err := NewEngine(&Config{
		Catalog: testCatalog(t),
		Timings: timings,
		Rand:    rand.New(rand.NewSource(seed)),
		Clock:   clock.Fixed{At: testNow},
		IDs:     &uuid.Sequence{Prefix: "id"},
	})
	require.NoError(t, err)
	return e
}

// seated builds a room in progress. Participant i is "p<i+1>" and is named
// after its role, e.g. "wolf-1". The first participant hosts.
func seated(phase Phase, day int, roles ...string) *RoomState {
	s := &RoomState{
		ID:           "ROOM1",
		Name:         "Test village",
		Passcode:     "123456",
		PasscodeHash: "hash",
		Phase:        phase,
		Day:          day,
		Timer:        100,
		Distribution: RoleDistribution{},
	}
	for i, role := range roles {
		p := NewParticipant(fmt.Sprintf("p%d", i+1), fmt.Sprintf("%s-%d", role, i+1))
		p.RoleID = role
		s.Participants = append(s.Participants, p)
		s.Distribution[role]++
	}
	s.Participants[0].Host = true
	return s
}

func act(t *testing.T, e *Engine, s *RoomState, participantID, targetID string) *RoomState {
	t.Helper()
	next, err := e.ApplyAction(s, participantID, targetID)
	require.NoError(t, err)
	return next
}

func participant(t *testing.T, s *RoomState, id string) *Participant {
	t.Helper()
	p, ok := s.Participant(id)
	require.True(t, ok, "participant %s missing", id)
	return p
}

// said reports whether a narration entry on channel for recipient contains text
func said(s *RoomState, channel Channel, recipient, text string) bool {
	for _, entry := range s.Narration {
		if entry.Channel == channel && entry.Recipient == recipient && strings.Contains(entry.Text, text) {
			return true
		}
	}
	return false
}

func aliveCount(s *RoomState) int {
	return len(s.Alive())
}
