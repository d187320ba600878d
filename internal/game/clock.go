package game

// Tick advances the countdown by one second, lets bots act, and resolves
// the phase when it is complete. Outside timed phases it returns s as is.
func (e *Engine) Tick(s *RoomState) (*RoomState, error) {
	if !s.Phase.Timed() {
		return s, nil
	}
	next := s.Clone()
	if next.Timer > 0 {
		next.Timer--
	}
	e.driveBots(next)
	return e.advance(next)
}

// nightReady reports whether every alive participant with a night action has
// submitted. The divination role sits out night one.
func nightReady(s *RoomState, catalog *Catalog) (bool, error) {
	active := 0
	for _, p := range s.Alive() {
		role, err := catalog.Lookup(p.RoleID)
		if err != nil {
			return false, err
		}
		if role.Action == ActionNone || (s.Day == 1 && role.Action == ActionDivine) {
			continue
		}
		active++
		if !p.Acted {
			return false, nil
		}
	}
	return active > 0, nil
}

func votesReady(s *RoomState) bool {
	alive := s.Alive()
	for _, p := range alive {
		if !p.Acted {
			return false
		}
	}
	return len(alive) > 0
}

// advance runs the completion check on a working copy and resolves the phase
// when either the quorum is in or the countdown has run out.
func (e *Engine) advance(s *RoomState) (*RoomState, error) {
	switch s.Phase {
	case PhaseNight:
		ready, err := nightReady(s, e.catalog)
		if err != nil {
			return nil, err
		}
		if ready || s.Timer == 0 {
			return e.resolveNight(s)
		}
	case PhaseDay:
		if skipMajority(s) {
			return e.openVote(s, "A majority agreed to end the discussion. Time to vote."), nil
		}
		if s.Timer == 0 {
			return e.openVote(s, "Discussion time is over. Time to vote."), nil
		}
	case PhaseVote, PhaseRevote:
		if votesReady(s) || s.Timer == 0 {
			return e.resolveVote(s)
		}
	}
	return s, nil
}
