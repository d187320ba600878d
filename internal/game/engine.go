package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"nightfall/internal/common/clock"
	"nightfall/internal/common/uuid"
)

// Rand is the random source behind role shuffles, tie-breaks and bot moves.
// *rand.Rand satisfies it; tests pass a seeded one.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// Timings holds the phase lengths (in ticks) and bot tuning
type Timings struct {
	NightSeconds    int
	DaySeconds      int
	VoteSeconds     int
	BotSkipChance   float64
	MaxParticipants int
}

// DefaultTimings returns the standard phase lengths
func DefaultTimings() Timings {
	return Timings{
		NightSeconds:    300,
		DaySeconds:      300,
		VoteSeconds:     120,
		BotSkipChance:   0.05,
		MaxParticipants: 20,
	}
}

// Config holds the collaborators of an Engine
type Config struct {
	Catalog *Catalog
	Timings Timings
	Rand    Rand
	Clock   clock.Clock
	IDs     uuid.UUID
}

// Engine computes room transitions. Every operation takes a snapshot and
// returns a new one; on error the input snapshot is the state to keep.
//
// An Engine is not safe for concurrent use because its random source is not.
// Give each room its own engine and drive it from one goroutine.
type Engine struct {
	catalog *Catalog
	timings Timings
	rng     Rand
	clock   clock.Clock
	ids     uuid.UUID
}

// NewEngine creates an engine, filling in defaults for optional collaborators
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}

	e := &Engine{
		catalog: cfg.Catalog,
		timings: cfg.Timings,
		rng:     cfg.Rand,
		clock:   cfg.Clock,
		ids:     cfg.IDs,
	}
	if e.timings == (Timings{}) {
		e.timings = DefaultTimings()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.clock == nil {
		e.clock = &clock.DefaultClock{}
	}
	if e.ids == nil {
		e.ids = uuid.New()
	}
	return e, nil
}

// Catalog returns the role catalog the engine resolves against
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// say appends a system narration line
func (e *Engine) say(s *RoomState, channel Channel, recipient, text string) {
	e.post(s, SystemSender, channel, recipient, text)
}

func (e *Engine) post(s *RoomState, sender string, channel Channel, recipient, text string) {
	s.Narration = append(s.Narration, NarrationEntry{
		ID:        e.ids.NewUUID(),
		Sender:    sender,
		Recipient: recipient,
		Channel:   channel,
		Text:      text,
		Timestamp: e.clock.Now(),
	})
}

// NewRoomInput describes a freshly created room
type NewRoomInput struct {
	ID           string
	Name         string
	Passcode     string
	PasscodeHash string
	HostID       string
	HostName     string
	// PlayerCount picks the starting template; the host can edit it later.
	PlayerCount int
}

// NewRoom creates a room in SETUP with the host seated first
func (e *Engine) NewRoom(input *NewRoomInput) (*RoomState, error) {
	if input == nil || input.ID == "" || input.HostID == "" {
		return nil, errors.New("room id and host id are required")
	}
	hostName := strings.TrimSpace(input.HostName)
	if hostName == "" {
		return nil, errors.New("host name is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = hostName + "'s village"
	}

	dist, ok := e.catalog.DefaultDistribution(input.PlayerCount)
	if !ok {
		dist = RoleDistribution{}
	}

	host := NewParticipant(input.HostID, hostName)
	host.Host = true

	s := &RoomState{
		ID:           input.ID,
		Name:         name,
		Passcode:     input.Passcode,
		PasscodeHash: input.PasscodeHash,
		Phase:        PhaseSetup,
		Participants: []Participant{host},
		Distribution: dist,
	}
	e.say(s, ChannelPublic, "", fmt.Sprintf("Room %q was created.", name))
	return s, nil
}

func (e *Engine) seat(s *RoomState, p Participant) error {
	if s.Phase != PhaseSetup && s.Phase != PhaseLobby {
		return fmt.Errorf("%w: cannot join during %s", ErrInvalidPhase, s.Phase)
	}
	if e.timings.MaxParticipants > 0 && len(s.Participants) >= e.timings.MaxParticipants {
		return ErrRoomFull
	}
	for i := range s.Participants {
		if strings.EqualFold(s.Participants[i].Name, p.Name) {
			return ErrDuplicateName
		}
	}
	s.Participants = append(s.Participants, p)
	return nil
}

// Join seats a human participant. Joining again with a known id is a no-op,
// which is how a reconnecting participant resumes.
func (e *Engine) Join(s *RoomState, participantID, name string) (*RoomState, error) {
	if _, ok := s.Participant(participantID); ok {
		return s, nil
	}
	name = strings.TrimSpace(name)
	if participantID == "" || name == "" {
		return nil, errors.New("participant id and name are required")
	}

	next := s.Clone()
	if err := e.seat(next, NewParticipant(participantID, name)); err != nil {
		return nil, err
	}
	e.say(next, ChannelPublic, "", name+" joined the room.")
	return next, nil
}

// AddBot seats a simulated participant
func (e *Engine) AddBot(s *RoomState) (*RoomState, *Participant, error) {
	next := s.Clone()

	n := 1
	for _, p := range next.Participants {
		if p.Bot {
			n++
		}
	}
	name := fmt.Sprintf("BOT-%d", n)
	for taken := true; taken; {
		taken = false
		for _, p := range next.Participants {
			if strings.EqualFold(p.Name, name) {
				taken = true
				n++
				name = fmt.Sprintf("BOT-%d", n)
				break
			}
		}
	}

	bot := NewParticipant("bot-"+e.ids.NewUUID(), name)
	bot.Bot = true
	if err := e.seat(next, bot); err != nil {
		return nil, nil, err
	}
	e.say(next, ChannelPublic, "", name+" (bot) joined the room.")

	added, _ := next.Participant(bot.ID)
	return next, added, nil
}

// SetDistribution replaces the role distribution during setup
func (e *Engine) SetDistribution(s *RoomState, d RoleDistribution) (*RoomState, error) {
	if s.Phase != PhaseSetup {
		return nil, fmt.Errorf("%w: distribution is fixed during %s", ErrInvalidPhase, s.Phase)
	}
	if err := e.catalog.ValidateDistribution(d); err != nil {
		return nil, err
	}
	next := s.Clone()
	next.Distribution = d.Clone()
	return next, nil
}

// ApplyTemplate resets the distribution to the default for the current roster size
func (e *Engine) ApplyTemplate(s *RoomState) (*RoomState, error) {
	if s.Phase != PhaseSetup {
		return nil, fmt.Errorf("%w: distribution is fixed during %s", ErrInvalidPhase, s.Phase)
	}
	d, ok := e.catalog.DefaultDistribution(len(s.Participants))
	if !ok {
		return nil, fmt.Errorf("%w: %d participants", ErrNoDefaultDistribution, len(s.Participants))
	}
	next := s.Clone()
	next.Distribution = d
	return next, nil
}

// StartGame deals the roles and moves the room from SETUP into the first night
func (e *Engine) StartGame(s *RoomState) (*RoomState, error) {
	if s.Phase != PhaseSetup {
		return nil, fmt.Errorf("%w: cannot start from %s", ErrInvalidPhase, s.Phase)
	}
	if err := e.catalog.ValidateDistribution(s.Distribution); err != nil {
		return nil, err
	}
	if total := s.Distribution.Total(); total != len(s.Participants) {
		return nil, fmt.Errorf("%w: %d roles for %d participants", ErrDistributionMismatch, total, len(s.Participants))
	}

	pool := e.catalog.pool(s.Distribution)
	e.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	next := s.Clone()
	for i := range next.Participants {
		p := &next.Participants[i]
		p.RoleID = pool[i]
		p.Alive = true
		p.DeathReason = ""
		p.clearRound()
	}
	next.Phase = PhaseNight
	next.Day = 1
	next.Timer = e.timings.NightSeconds
	next.Winner = ""
	next.LastExecutedID = ""

	e.say(next, ChannelPublic, "", "=== The game begins ===\nNight falls. Participants with a role card should check their private messages.")
	for _, p := range next.Participants {
		if p.Bot {
			continue
		}
		role, err := e.catalog.Lookup(p.RoleID)
		if err != nil {
			return nil, err
		}
		e.say(next, ChannelPrivate, p.ID, fmt.Sprintf("Your role: %s\n%s", role.Name, role.Description))
		if role.Action == ActionDivine {
			e.say(next, ChannelPrivate, p.ID, "On the first night a member of the village team is revealed to you automatically.")
		}
		if role.KnowsPeers {
			var peers []string
			for _, other := range next.Participants {
				if other.ID != p.ID && other.RoleID == p.RoleID {
					peers = append(peers, other.Name)
				}
			}
			if len(peers) > 0 {
				e.say(next, ChannelPrivate, p.ID, "Your fellow "+role.Name+": "+strings.Join(peers, ", "))
			}
		}
	}

	return next, nil
}

// RequestRematch resets a finished room back to SETUP
func (e *Engine) RequestRematch(s *RoomState) (*RoomState, error) {
	if s.Phase != PhaseResult {
		return nil, fmt.Errorf("%w: rematch is only available after the result", ErrInvalidPhase)
	}

	next := s.Clone()
	for i := range next.Participants {
		p := &next.Participants[i]
		p.RoleID = ""
		p.Alive = true
		p.DeathReason = ""
		p.clearRound()
	}
	next.Phase = PhaseSetup
	next.Day = 0
	next.Timer = 0
	next.Winner = ""
	next.LastExecutedID = ""
	e.say(next, ChannelPublic, "", "--- Rematch: back to setup ---")
	return next, nil
}
