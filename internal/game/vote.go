package game

import "fmt"

// skipMajority reports whether enough survivors agreed to end discussion
func skipMajority(s *RoomState) bool {
	alive := s.Alive()
	if len(alive) == 0 {
		return false
	}
	agreed := 0
	for _, p := range alive {
		if p.SkipAgreed {
			agreed++
		}
	}
	return agreed >= (len(alive)+1)/2
}

// openVote ends the discussion and starts the vote
func (e *Engine) openVote(s *RoomState, reason string) *RoomState {
	e.say(s, ChannelPublic, "", reason)
	s.Phase = PhaseVote
	s.Timer = e.timings.VoteSeconds
	return s
}

// Tally counts one vote per alive participant, applying the fallback target
// for anyone who has not voted.
func Tally(s *RoomState) []TallyEntry {
	votes := tally{}
	for _, p := range s.Alive() {
		target := p.VoteTarget
		if target == "" {
			target = s.firstOtherAlive(p.ID)
		}
		votes.add(target)
	}
	return votes.ranked(s)
}

// resolveVote executes the vote winner, or opens a revote on a first tie.
// s is a working copy owned by the caller.
func (e *Engine) resolveVote(s *RoomState) (*RoomState, error) {
	roles, err := e.rolesOf(s)
	if err != nil {
		return nil, err
	}

	ranked := Tally(s)
	var victimID string
	switch {
	case len(ranked) == 0:
	case len(ranked) > 1 && ranked[0].Votes == ranked[1].Votes:
		if s.Phase == PhaseVote {
			for _, p := range s.Alive() {
				p.VoteTarget = ""
				p.Acted = false
			}
			s.Phase = PhaseRevote
			s.Timer = e.timings.VoteSeconds
			e.say(s, ChannelPublic, "", "The vote is tied. Vote again.")
			return s, nil
		}
		var tied []TallyEntry
		for _, t := range ranked {
			if t.Votes == ranked[0].Votes {
				tied = append(tied, t)
			}
		}
		victimID = tied[e.rng.Intn(len(tied))].ID
	default:
		victimID = ranked[0].ID
	}

	foxesBefore := countAlive(s, roles, func(r *Role) bool { return r.AttackImmune })

	var deaths []string
	if victim, ok := s.Participant(victimID); ok {
		victim.kill(DeathExecuted)
		s.LastExecutedID = victim.ID
		e.say(s, ChannelPublic, "", fmt.Sprintf("%s was executed.", victim.Name))
	} else {
		e.say(s, ChannelPublic, "", "Nobody was executed.")
	}
	deaths = append(deaths, e.followFox(s, roles, foxesBefore)...)
	for _, line := range deaths {
		e.say(s, ChannelPublic, "", line)
	}

	for i := range s.Participants {
		s.Participants[i].clearRound()
	}
	s.Day++
	s.Phase = PhaseNight
	s.Timer = e.timings.NightSeconds

	return e.settle(s), nil
}
