package game

import "fmt"

// Winner decides whether a faction has won. Decoys count as werewolves here
// even though divination reads them as villagers.
func Winner(s *RoomState, catalog *Catalog) (Team, error) {
	w, alive, f := 0, 0, 0
	for _, p := range s.Participants {
		if !p.Alive {
			continue
		}
		role, err := catalog.Lookup(p.RoleID)
		if err != nil {
			return "", fmt.Errorf("participant %s: %w", p.ID, err)
		}
		alive++
		if role.Team == TeamWerewolf {
			w++
		}
		if role.AttackImmune {
			f++
		}
	}
	v := alive - w

	switch {
	case w >= v:
		if f > 0 {
			return TeamFox, nil
		}
		return TeamWerewolf, nil
	case w == 0:
		if f > 0 {
			return TeamFox, nil
		}
		return TeamVillager, nil
	}
	return "", nil
}

var winnerLines = map[Team]string{
	TeamVillager: "The village has driven out every werewolf. The village team wins!",
	TeamWerewolf: "The werewolves have overrun the village. The werewolf team wins!",
	TeamFox:      "The fox outwitted everyone. The fox team wins!",
}

// settle applies the victory check to a freshly resolved working copy
func (e *Engine) settle(s *RoomState) *RoomState {
	// callers resolved every role already, so Winner cannot fail here
	winner, _ := Winner(s, e.catalog)
	if winner == "" {
		return s
	}
	s.Winner = winner
	s.Phase = PhaseResult
	s.Timer = 0
	e.say(s, ChannelPublic, "", winnerLines[winner])
	return s
}
