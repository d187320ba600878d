package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstNight_NobodyDies(t *testing.T) {
	e := newTestEngine(t, 7, testTimings())
	s, err := e.StartGame(newLobby(t, e, 5))
	require.NoError(t, err)

	var wolf, knight, seer *Participant
	for i := range s.Participants {
		switch s.Participants[i].RoleID {
		case "wolf":
			wolf = &s.Participants[i]
		case "knight":
			knight = &s.Participants[i]
		case "seer":
			seer = &s.Participants[i]
		}
	}
	require.NotNil(t, wolf)
	require.NotNil(t, knight)
	require.NotNil(t, seer)

	victim := s.firstOtherAlive(wolf.ID)
	s = act(t, e, s, wolf.ID, victim)
	assert.Equal(t, PhaseNight, s.Phase, "knight has not acted yet")
	s = act(t, e, s, knight.ID, knight.ID)

	assert.Equal(t, PhaseDay, s.Phase, "seer sits out the first night")
	assert.Equal(t, 1, s.Day)
	assert.Equal(t, 300, s.Timer)
	assert.Equal(t, 5, aliveCount(s))
	assert.True(t, said(s, ChannelPublic, "", "Nobody died last night."))
	assert.True(t, said(s, ChannelPublic, "", "Freshly baked bread has arrived."))

	var divined []NarrationEntry
	for _, entry := range s.Narration {
		if entry.Channel == ChannelPrivate && entry.Recipient == seer.ID && entry.Sender == SystemSender {
			divined = append(divined, entry)
		}
	}
	require.NotEmpty(t, divined)
	assert.Contains(t, divined[len(divined)-1].Text, "is a villager.")

	for _, p := range s.Participants {
		assert.False(t, p.Acted)
		assert.Empty(t, p.NightTarget)
	}
}

func TestFirstNight_DivinationPicksFirstVillageTeamMember(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 1, "wolf", "madman", "seer", "knight", "village")

	s = act(t, e, s, "p1", "p5")
	s = act(t, e, s, "p4", "p4")

	assert.Equal(t, PhaseDay, s.Phase)
	assert.True(t, said(s, ChannelPrivate, "p3", "knight-4 is a villager."))
}

func TestNight_GuardBlocksTheAttack(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "seer", "knight", "baker", "village")

	s = act(t, e, s, "p2", "p1")
	s = act(t, e, s, "p3", "p4")
	s = act(t, e, s, "p1", "p4")

	assert.Equal(t, PhaseDay, s.Phase)
	assert.True(t, participant(t, s, "p4").Alive)
	assert.True(t, said(s, ChannelPublic, "", "Nobody died last night."))
	assert.True(t, said(s, ChannelPrivate, "p2", "wolf-1 is a werewolf."))
}

func TestNight_AttackLands(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "seer", "knight", "baker", "village")

	s = act(t, e, s, "p2", "p5")
	s = act(t, e, s, "p3", "p5")
	s = act(t, e, s, "p1", "p4")

	victim := participant(t, s, "p4")
	assert.False(t, victim.Alive)
	assert.Equal(t, DeathAttacked, victim.DeathReason)
	assert.True(t, said(s, ChannelPublic, "", "baker-4 was found dead"))
	assert.False(t, said(s, ChannelPublic, "", "Freshly baked bread"), "the baker is gone")
	assert.Equal(t, PhaseDay, s.Phase)
	assert.Empty(t, s.Winner)
}

func TestNight_KillTieGoesToEarliestSeat(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "wolf", "knight", "village", "village", "village", "village")

	s = act(t, e, s, "p3", "p3")
	s = act(t, e, s, "p1", "p5")
	s = act(t, e, s, "p2", "p4")

	assert.False(t, participant(t, s, "p4").Alive)
	assert.True(t, participant(t, s, "p5").Alive)
}

func TestNight_MissingKillTargetFallsBack(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "village", "wolf", "knight", "village", "village")
	s.Timer = 1

	s, err := e.Tick(s)
	require.NoError(t, err)

	assert.Equal(t, PhaseDay, s.Phase)
	assert.False(t, participant(t, s, "p1").Alive, "first alive non-wolf is attacked")
}

func TestNight_FoxSurvivesAttack(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "seer", "knight", "fox", "village", "village")

	s = act(t, e, s, "p2", "p6")
	s = act(t, e, s, "p3", "p5")
	s = act(t, e, s, "p1", "p4")

	assert.True(t, participant(t, s, "p4").Alive)
	assert.Equal(t, 6, aliveCount(s))
	assert.True(t, said(s, ChannelPublic, "", "Nobody died last night."))
}

func TestNight_DivinedFoxDiesAndImmoralFollows(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "seer", "knight", "fox", "immoral", "village", "village")

	s = act(t, e, s, "p2", "p4")
	s = act(t, e, s, "p3", "p6")
	s = act(t, e, s, "p1", "p6")

	fox := participant(t, s, "p4")
	immoral := participant(t, s, "p5")
	assert.False(t, fox.Alive)
	assert.Equal(t, DeathDivineCurse, fox.DeathReason)
	assert.False(t, immoral.Alive)
	assert.Equal(t, DeathFollowedFox, immoral.DeathReason)
	assert.True(t, participant(t, s, "p6").Alive)
	assert.True(t, said(s, ChannelPrivate, "p2", "fox-4 is a villager."))
	assert.True(t, said(s, ChannelPublic, "", "immoral-5 followed the fox into death."))
	assert.Equal(t, PhaseDay, s.Phase)
}

func TestNight_MadmanReadsAsVillager(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "seer", "knight", "madman", "village", "village")

	s = act(t, e, s, "p2", "p4")
	s = act(t, e, s, "p3", "p5")
	s = act(t, e, s, "p1", "p5")

	assert.True(t, said(s, ChannelPrivate, "p2", "madman-4 is a villager."))
	assert.True(t, participant(t, s, "p4").Alive)
}

func TestNight_MediumLearnsTheExecuted(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "seer", "knight", "medium", "madman", "village", "village")
	s.Participants[5].kill(DeathExecuted)
	s.LastExecutedID = "p6"

	s = act(t, e, s, "p2", "p1")
	s = act(t, e, s, "p3", "p7")
	s = act(t, e, s, "p1", "p7")

	assert.True(t, said(s, ChannelPrivate, "p4", "Yesterday's executed village-6 was a villager."))
	assert.False(t, said(s, ChannelPrivate, "p2", "Yesterday's executed"), "only the medium learns it")
}

func TestNight_UnknownRoleLeavesStateUntouched(t *testing.T) {
	e := newTestEngine(t, 1, testTimings())
	s := seated(PhaseNight, 2, "wolf", "ghost", "village")
	s.Timer = 1

	_, err := e.Tick(s)
	assert.True(t, errors.Is(err, ErrUnknownRole))
	assert.Equal(t, PhaseNight, s.Phase)
	assert.Equal(t, 1, s.Timer)
	assert.Equal(t, 3, aliveCount(s))
}
