package game

import (
	"fmt"
	"strings"
)

// actor returns the acting participant in a working copy, checking it can act
func actor(s *RoomState, participantID string) (*Participant, error) {
	p, ok := s.Participant(participantID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, participantID)
	}
	if !p.Alive {
		return nil, fmt.Errorf("%w: %s", ErrDeadParticipant, participantID)
	}
	return p, nil
}

// ApplyAction records a night target or a vote and re-runs the completion check
func (e *Engine) ApplyAction(s *RoomState, participantID, targetID string) (*RoomState, error) {
	switch s.Phase {
	case PhaseNight, PhaseVote, PhaseRevote:
	default:
		return nil, fmt.Errorf("%w: no actions during %s", ErrInvalidPhase, s.Phase)
	}

	next := s.Clone()
	p, err := actor(next, participantID)
	if err != nil {
		return nil, err
	}
	if next.Phase == PhaseNight {
		if err := e.checkNightAction(next, p); err != nil {
			return nil, err
		}
	}
	target, ok := next.Participant(targetID)
	if !ok {
		return nil, fmt.Errorf("%w: target %s", ErrUnknownParticipant, targetID)
	}
	if !target.Alive {
		return nil, fmt.Errorf("%w: target %s", ErrDeadParticipant, targetID)
	}

	if next.Phase == PhaseNight {
		p.NightTarget = target.ID
	} else {
		p.VoteTarget = target.ID
	}
	p.Acted = true

	return e.advance(next)
}

// checkNightAction rejects targets from roles with nothing to do tonight
func (e *Engine) checkNightAction(s *RoomState, p *Participant) error {
	role, err := e.catalog.Lookup(p.RoleID)
	if err != nil {
		return err
	}
	if role.Action == ActionNone {
		return fmt.Errorf("%w: %s has no night action", ErrInvalidPhase, role.Name)
	}
	if s.Day == 1 && role.Action == ActionDivine {
		return fmt.Errorf("%w: %s does not act on the first night", ErrInvalidPhase, role.Name)
	}
	return nil
}

// ToggleSkip flips a participant's agreement to end the discussion early
func (e *Engine) ToggleSkip(s *RoomState, participantID string) (*RoomState, error) {
	if s.Phase != PhaseDay {
		return nil, fmt.Errorf("%w: skipping is only possible during the day", ErrInvalidPhase)
	}
	next := s.Clone()
	p, err := actor(next, participantID)
	if err != nil {
		return nil, err
	}
	p.SkipAgreed = !p.SkipAgreed
	return e.advance(next)
}

// PostMessage appends a participant's chat line to the narration log
func (e *Engine) PostMessage(s *RoomState, participantID string, channel Channel, text string) (*RoomState, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	p, ok := s.Participant(participantID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, participantID)
	}

	var recipient string
	switch channel {
	case ChannelPublic:
	case ChannelDeadOnly:
		if p.Alive {
			return nil, fmt.Errorf("%w: %s is alive", ErrChannelForbidden, channel)
		}
	case ChannelWolfOnly:
		if !p.Alive {
			return nil, fmt.Errorf("%w: %s is dead", ErrChannelForbidden, channel)
		}
		role, err := e.catalog.Lookup(p.RoleID)
		if err != nil || !role.WolfChat() {
			return nil, fmt.Errorf("%w: %s", ErrChannelForbidden, channel)
		}
	case ChannelPrivate:
		recipient = SystemSender
	default:
		return nil, fmt.Errorf("%w: %q", ErrChannelForbidden, channel)
	}

	next := s.Clone()
	e.post(next, p.ID, channel, recipient, text)
	return next, nil
}
