package game

import "fmt"

// resolveNight turns the night's actions into deaths and private results.
// s is a working copy owned by the caller.
func (e *Engine) resolveNight(s *RoomState) (*RoomState, error) {
	roles, err := e.rolesOf(s)
	if err != nil {
		return nil, err
	}
	foxesBefore := countAlive(s, roles, func(r *Role) bool { return r.AttackImmune })

	// Kill target: one vote per alive killer. Unset targets fall back to the
	// first alive non-killer; ties go to the earliest seat.
	votes := tally{}
	var fallback string
	if p := s.firstAlive(func(p *Participant) bool { return roles[p.ID].Action != ActionKill }); p != nil {
		fallback = p.ID
	}
	for _, p := range s.Alive() {
		if roles[p.ID].Action != ActionKill {
			continue
		}
		target := p.NightTarget
		if target == "" {
			target = fallback
		}
		votes.add(target)
	}
	var killID string
	if ranked := votes.ranked(s); len(ranked) > 0 {
		killID = ranked[0].ID
	}

	var guardID string
	if guard := s.firstAlive(func(p *Participant) bool { return roles[p.ID].Action == ActionGuard }); guard != nil {
		guardID = guard.NightTarget
	}

	var deaths []string

	// No attack lands on the first night.
	if s.Day > 1 && killID != "" && killID != guardID {
		if target, ok := s.Participant(killID); ok && target.Alive && !roles[target.ID].AttackImmune {
			target.kill(DeathAttacked)
			deaths = append(deaths, fmt.Sprintf("%s was found dead, torn apart in the night.", target.Name))
		}
	}

	for _, seer := range s.Alive() {
		if roles[seer.ID].Action != ActionDivine {
			continue
		}
		var targetID string
		if s.Day == 1 {
			if p := s.firstAlive(func(p *Participant) bool {
				return p.ID != seer.ID && roles[p.ID].Team == TeamVillager
			}); p != nil {
				targetID = p.ID
			}
		} else {
			targetID = seer.NightTarget
			if targetID == "" {
				targetID = s.firstOtherAlive(seer.ID)
			}
		}
		target, ok := s.Participant(targetID)
		if !ok {
			continue
		}
		role := roles[target.ID]
		e.say(s, ChannelPrivate, seer.ID, fmt.Sprintf("%s is a %s.", target.Name, verdict(role)))
		if role.AttackImmune && target.Alive {
			target.kill(DeathDivineCurse)
			deaths = append(deaths, fmt.Sprintf("%s was found dead, changed beyond recognition.", target.Name))
		}
	}

	if s.LastExecutedID != "" {
		if executed, ok := s.Participant(s.LastExecutedID); ok {
			for _, medium := range s.Alive() {
				if roles[medium.ID].Medium {
					e.say(s, ChannelPrivate, medium.ID, fmt.Sprintf("Yesterday's executed %s was a %s.", executed.Name, verdict(roles[executed.ID])))
				}
			}
		}
	}

	deaths = append(deaths, e.followFox(s, roles, foxesBefore)...)

	e.say(s, ChannelPublic, "", fmt.Sprintf("=== Day %d, morning ===", s.Day))
	if len(deaths) == 0 {
		e.say(s, ChannelPublic, "", "Nobody died last night.")
	}
	for _, line := range deaths {
		e.say(s, ChannelPublic, "", line)
	}
	if countAlive(s, roles, func(r *Role) bool { return r.BakesBread }) > 0 {
		e.say(s, ChannelPublic, "", "Freshly baked bread has arrived.")
	}

	for i := range s.Participants {
		p := &s.Participants[i]
		p.NightTarget = ""
		p.Acted = false
		p.SkipAgreed = false
	}
	s.Phase = PhaseDay
	s.Timer = e.timings.DaySeconds

	return e.settle(s), nil
}

// followFox kills every alive fox follower once the last fox is gone
func (e *Engine) followFox(s *RoomState, roles map[string]*Role, foxesBefore int) []string {
	if foxesBefore == 0 || countAlive(s, roles, func(r *Role) bool { return r.AttackImmune }) > 0 {
		return nil
	}
	var deaths []string
	for _, p := range s.Alive() {
		if roles[p.ID].FollowsFox {
			p.kill(DeathFollowedFox)
			deaths = append(deaths, fmt.Sprintf("%s followed the fox into death.", p.Name))
		}
	}
	return deaths
}

func verdict(r *Role) string {
	if r.ReadsAsWerewolf() {
		return "werewolf"
	}
	return "villager"
}

// rolesOf resolves every participant's role up front so a malformed
// snapshot fails before anything is changed.
func (e *Engine) rolesOf(s *RoomState) (map[string]*Role, error) {
	out := make(map[string]*Role, len(s.Participants))
	for _, p := range s.Participants {
		role, err := e.catalog.Lookup(p.RoleID)
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", p.ID, err)
		}
		out[p.ID] = role
	}
	return out, nil
}

func countAlive(s *RoomState, roles map[string]*Role, match func(*Role) bool) int {
	n := 0
	for _, p := range s.Participants {
		if p.Alive && match(roles[p.ID]) {
			n++
		}
	}
	return n
}
