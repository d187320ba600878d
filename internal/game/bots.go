package game

// driveBots makes every alive bot that has not acted this round take its turn
func (e *Engine) driveBots(s *RoomState) {
	for i := range s.Participants {
		bot := &s.Participants[i]
		if !bot.Bot || !bot.Alive {
			continue
		}

		switch s.Phase {
		case PhaseNight:
			if bot.Acted {
				continue
			}
			// The night-one divination is fixed, so a bot diviner waits.
			if s.Day == 1 {
				if role, err := e.catalog.Lookup(bot.RoleID); err == nil && role.Action == ActionDivine {
					continue
				}
			}
			if target := e.randomOther(s, bot.ID); target != "" {
				bot.NightTarget = target
				bot.Acted = true
			}
		case PhaseVote, PhaseRevote:
			if bot.Acted {
				continue
			}
			if target := e.randomOther(s, bot.ID); target != "" {
				bot.VoteTarget = target
				bot.Acted = true
			}
		case PhaseDay:
			if !bot.SkipAgreed && e.rng.Float64() < e.timings.BotSkipChance {
				bot.SkipAgreed = true
			}
		}
	}
}

// randomOther picks a uniformly random alive participant other than self
func (e *Engine) randomOther(s *RoomState, self string) string {
	var candidates []string
	for _, p := range s.Participants {
		if p.Alive && p.ID != self {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[e.rng.Intn(len(candidates))]
}
