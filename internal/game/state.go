package game

import (
	"crypto/subtle"
	"fmt"
)

// Phase is the step of the game a room is in
type Phase string

const (
	PhaseLobby  Phase = "LOBBY"
	PhaseSetup  Phase = "SETUP"
	PhaseNight  Phase = "NIGHT"
	PhaseDay    Phase = "DAY"
	PhaseVote   Phase = "VOTE"
	PhaseRevote Phase = "REVOTE"
	PhaseResult Phase = "RESULT"
)

// Timed reports whether the phase runs against the countdown
func (p Phase) Timed() bool {
	switch p {
	case PhaseNight, PhaseDay, PhaseVote, PhaseRevote:
		return true
	}
	return false
}

// RoomState is the aggregate root of one room.
//
// A RoomState is treated as an immutable snapshot: the engine never edits a
// state it was handed, it returns a new one. Callers replace their snapshot
// wholesale, so readers never observe half-applied transitions.
type RoomState struct {
	ID           string           `json:"roomId"`
	Name         string           `json:"roomName"`
	Passcode     string           `json:"passcode"`
	PasscodeHash string           `json:"passcodeHash"`
	Phase        Phase            `json:"phase"`
	Day          int              `json:"day"`
	Participants []Participant    `json:"players"`
	Narration    []NarrationEntry `json:"messages"`
	Timer        int              `json:"timer"`
	Distribution RoleDistribution `json:"roleConfig"`
	Winner       Team             `json:"winner,omitempty"`

	LastExecutedID string `json:"lastExecutedPlayerId,omitempty"`
}

// Clone returns a deep copy that shares nothing with the receiver
func (s *RoomState) Clone() *RoomState {
	out := *s
	out.Participants = append([]Participant(nil), s.Participants...)
	out.Narration = append([]NarrationEntry(nil), s.Narration...)
	out.Distribution = s.Distribution.Clone()
	return &out
}

// Participant returns the participant with the given id
func (s *RoomState) Participant(id string) (*Participant, bool) {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i], true
		}
	}
	return nil, false
}

// Seat returns the participant holding a seat token
func (s *RoomState) Seat(token string) (*Participant, bool) {
	if token == "" {
		return nil, false
	}
	for i := range s.Participants {
		p := &s.Participants[i]
		if p.SeatToken != "" && subtle.ConstantTimeCompare([]byte(p.SeatToken), []byte(token)) == 1 {
			return p, true
		}
	}
	return nil, false
}

// AssignSeat returns a copy of s with token bound to a participant
func AssignSeat(s *RoomState, participantID, token string) (*RoomState, error) {
	next := s.Clone()
	p, ok := next.Participant(participantID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, participantID)
	}
	p.SeatToken = token
	return next, nil
}

// Host returns the room host, if one is seated
func (s *RoomState) Host() (*Participant, bool) {
	for i := range s.Participants {
		if s.Participants[i].Host {
			return &s.Participants[i], true
		}
	}
	return nil, false
}

// IsHost reports whether id belongs to the host
func (s *RoomState) IsHost(id string) bool {
	p, ok := s.Participant(id)
	return ok && p.Host
}

// Alive returns the alive participants in roster order
func (s *RoomState) Alive() []*Participant {
	out := make([]*Participant, 0, len(s.Participants))
	for i := range s.Participants {
		if s.Participants[i].Alive {
			out = append(out, &s.Participants[i])
		}
	}
	return out
}

// firstAlive returns the first alive participant in roster order matching keep
func (s *RoomState) firstAlive(keep func(*Participant) bool) *Participant {
	for i := range s.Participants {
		p := &s.Participants[i]
		if p.Alive && keep(p) {
			return p
		}
	}
	return nil
}

// firstOtherAlive is the fallback target for votes and late-night divination
func (s *RoomState) firstOtherAlive(self string) string {
	p := s.firstAlive(func(p *Participant) bool { return p.ID != self })
	if p == nil {
		return ""
	}
	return p.ID
}

func (s *RoomState) rosterIndex(id string) int {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return i
		}
	}
	return len(s.Participants)
}
