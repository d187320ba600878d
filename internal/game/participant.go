package game

// Death reasons recorded on a participant
const (
	DeathAttacked    = "attacked"
	DeathDivineCurse = "divine curse"
	DeathExecuted    = "executed"
	DeathFollowedFox = "followed the fox"
)

// Participant is a human or bot seated in a room
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	RoleID string `json:"roleId"`
	Alive  bool   `json:"isAlive"`
	Host   bool   `json:"isHost"`
	Bot    bool   `json:"isBot"`

	// SeatToken is the secret a human presents to act for this seat. It is
	// persisted with the room and never leaves a View.
	SeatToken string `json:"seatToken,omitempty"`

	// Per-round state
	NightTarget string `json:"nightActionTarget,omitempty"`
	VoteTarget  string `json:"voteTarget,omitempty"`
	Acted       bool   `json:"hasActed"`
	SkipAgreed  bool   `json:"skipAgreed"`

	DeathReason string `json:"deathReason,omitempty"`
}

// NewParticipant creates a participant ready to sit in a room
func NewParticipant(id, name string) Participant {
	return Participant{
		ID:    id,
		Name:  name,
		Alive: true,
	}
}

func (p *Participant) clearRound() {
	p.NightTarget = ""
	p.VoteTarget = ""
	p.Acted = false
	p.SkipAgreed = false
}

func (p *Participant) kill(reason string) {
	p.Alive = false
	if p.DeathReason == "" {
		p.DeathReason = reason
	}
}
