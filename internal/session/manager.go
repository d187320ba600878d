package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"nightfall/internal/access"
	"nightfall/internal/common/clock"
	"nightfall/internal/common/uuid"
	"nightfall/internal/events"
	"nightfall/internal/game"
	"nightfall/internal/store"
)

// Settings tunes rooms created by a Manager
type Settings struct {
	Timings game.Timings

	// TickInterval is the phase clock period. Zero disables the ticker so
	// tests can drive rooms with Room.Tick.
	TickInterval   time.Duration
	PersistTimeout time.Duration

	// Seed makes room randomness reproducible. Zero seeds from the time.
	Seed           int64
	RoomCodeLength int
}

// Config holds the collaborators of a Manager
type Config struct {
	Repository store.Repository
	Bus        *events.Bus
	Catalog    *game.Catalog
	Settings   Settings
	Clock      clock.Clock
	IDs        uuid.UUID
}

// Manager owns the live rooms of the process
type Manager struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	loading map[string]*pendingLoad
	// closing counts CloseRoom calls in flight per room; those rooms are
	// not reloaded until the delete has finished
	closing map[string]int
	seeded  int64
	closed  bool

	repo     store.Repository
	bus      *events.Bus
	catalog  *game.Catalog
	settings Settings
	clock    clock.Clock
	ids      uuid.UUID
}

// pendingLoad lets concurrent lookups of an unloaded room share one read
type pendingLoad struct {
	done chan struct{}
	room *Room
	err  error
}

// NewManager creates a room manager
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Repository == nil {
		return nil, errors.New("repository cannot be nil")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}

	m := &Manager{
		rooms:    make(map[string]*Room),
		loading:  make(map[string]*pendingLoad),
		closing:  make(map[string]int),
		repo:     cfg.Repository,
		bus:      cfg.Bus,
		catalog:  cfg.Catalog,
		settings: cfg.Settings,
		clock:    cfg.Clock,
		ids:      cfg.IDs,
	}
	if m.bus == nil {
		m.bus = events.NewBus(16)
	}
	if m.settings.PersistTimeout <= 0 {
		m.settings.PersistTimeout = 5 * time.Second
	}
	if m.settings.RoomCodeLength <= 0 {
		m.settings.RoomCodeLength = 6
	}
	if m.clock == nil {
		m.clock = &clock.DefaultClock{}
	}
	if m.ids == nil {
		m.ids = uuid.New()
	}
	return m, nil
}

// Bus returns the bus committed snapshots are published on
func (m *Manager) Bus() *events.Bus {
	return m.bus
}

// Catalog returns the role catalog rooms resolve against
func (m *Manager) Catalog() *game.Catalog {
	return m.catalog
}

// newEngine gives each room its own random source. With a fixed seed the
// n-th room of the process always gets the same sequence.
func (m *Manager) newEngine() (*game.Engine, error) {
	seed := time.Now().UnixNano()
	if m.settings.Seed != 0 {
		seed = m.settings.Seed + m.seeded
	}
	m.seeded++

	return game.NewEngine(&game.Config{
		Catalog: m.catalog,
		Timings: m.settings.Timings,
		Rand:    rand.New(rand.NewSource(seed)),
		Clock:   m.clock,
		IDs:     m.ids,
	})
}

// startLocked launches the room goroutine. m.mu must be held.
func (m *Manager) startLocked(engine *game.Engine, state *game.RoomState, save bool) *Room {
	room := startRoom(roomConfig{
		engine:         engine,
		state:          state,
		save:           save,
		repo:           m.repo,
		bus:            m.bus,
		tickInterval:   m.settings.TickInterval,
		persistTimeout: m.settings.PersistTimeout,
	})
	m.rooms[state.ID] = room
	return room
}

// reservedLocked reports whether a room id is live, loading or closing.
// m.mu must be held.
func (m *Manager) reservedLocked(roomID string) bool {
	if _, ok := m.rooms[roomID]; ok {
		return true
	}
	if _, ok := m.loading[roomID]; ok {
		return true
	}
	return m.closing[roomID] > 0
}

// CreateRoomInput describes a new room
type CreateRoomInput struct {
	Name        string
	HostName    string
	PlayerCount int
}

// CreateRoomOutput carries the identifiers the host needs to keep
type CreateRoomOutput struct {
	RoomID    string
	HostID    string
	SeatToken string
	Passcode  string
	State     *game.RoomState
}

// CreateRoom creates a room with the caller seated as host
func (m *Manager) CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	passcode, err := access.GeneratePasscode()
	if err != nil {
		return nil, err
	}
	hash, err := access.HashPasscode(passcode)
	if err != nil {
		return nil, err
	}
	token, err := access.GenerateSeatToken()
	if err != nil {
		return nil, err
	}
	roomID, err := m.freeRoomID(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.reservedLocked(roomID) {
		return nil, fmt.Errorf("room code %s was taken", roomID)
	}

	engine, err := m.newEngine()
	if err != nil {
		return nil, err
	}
	hostID := m.ids.NewUUID()
	state, err := engine.NewRoom(&game.NewRoomInput{
		ID:           roomID,
		Name:         input.Name,
		Passcode:     passcode,
		PasscodeHash: hash,
		HostID:       hostID,
		HostName:     input.HostName,
		PlayerCount:  input.PlayerCount,
	})
	if err != nil {
		return nil, err
	}
	state, err = game.AssignSeat(state, hostID, token)
	if err != nil {
		return nil, err
	}

	m.startLocked(engine, state, true)

	log.Printf("🏠 Room %s created by %s", roomID, input.HostName)
	return &CreateRoomOutput{
		RoomID:    roomID,
		HostID:    hostID,
		SeatToken: token,
		Passcode:  passcode,
		State:     state,
	}, nil
}

// freeRoomID picks a room code not used by a live or stored room. The
// repository is read without holding m.mu.
func (m *Manager) freeRoomID(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		code, err := access.GenerateRoomCode(m.settings.RoomCodeLength)
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		taken := m.reservedLocked(code)
		m.mu.Unlock()
		if taken {
			continue
		}
		_, err = m.repo.GetRoom(ctx, &store.GetRoomInput{RoomID: code})
		if errors.Is(err, store.ErrRoomNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check room code: %w", err)
		}
	}
	return "", errors.New("could not find a free room code")
}

func notFound(roomID string) error {
	return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
}

// Room returns a live room, reloading it from the repository if this process
// has not seen it yet. Concurrent lookups of the same room share one load.
func (m *Manager) Room(ctx context.Context, roomID string) (*Room, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if room, ok := m.rooms[roomID]; ok {
		m.mu.Unlock()
		return room, nil
	}
	if m.closing[roomID] > 0 {
		m.mu.Unlock()
		return nil, notFound(roomID)
	}
	if pending, ok := m.loading[roomID]; ok {
		m.mu.Unlock()
		select {
		case <-pending.done:
			return pending.room, pending.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	pending := &pendingLoad{done: make(chan struct{})}
	m.loading[roomID] = pending
	m.mu.Unlock()

	pending.room, pending.err = m.load(ctx, roomID)

	m.mu.Lock()
	delete(m.loading, roomID)
	m.mu.Unlock()
	close(pending.done)
	return pending.room, pending.err
}

// load reads a stored room and starts it
func (m *Manager) load(ctx context.Context, roomID string) (*Room, error) {
	state, err := m.repo.GetRoom(ctx, &store.GetRoomInput{RoomID: roomID})
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return nil, notFound(roomID)
		}
		return nil, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	return m.adopt(state)
}

// adopt starts a room goroutine for a stored snapshot unless the room is
// already live or being closed
func (m *Manager) adopt(state *game.RoomState) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if room, ok := m.rooms[state.ID]; ok {
		return room, nil
	}
	if m.closing[state.ID] > 0 {
		return nil, notFound(state.ID)
	}

	engine, err := m.newEngine()
	if err != nil {
		return nil, err
	}
	room := m.startLocked(engine, state, false)
	log.Printf("♻️ Room %s restored in %s (day %d)", state.ID, state.Phase, state.Day)
	return room, nil
}

// RestoreAll starts every stored room whose phase clock is running, so
// countdowns and bots resume after a restart without waiting for a request.
// Rooms in setup or showing a result stay in the repository until asked for.
func (m *Manager) RestoreAll(ctx context.Context) (int, error) {
	out, err := m.repo.ListRooms(ctx, &store.ListRoomsInput{})
	if err != nil {
		return 0, fmt.Errorf("failed to list rooms: %w", err)
	}

	restored := 0
	for _, id := range out.RoomIDs {
		state, err := m.repo.GetRoom(ctx, &store.GetRoomInput{RoomID: id})
		if errors.Is(err, store.ErrRoomNotFound) {
			continue
		}
		if err != nil {
			log.Printf("⚠️ Failed to load room %s: %v", id, err)
			continue
		}
		if !state.Phase.Timed() {
			continue
		}
		if _, err := m.adopt(state); err != nil {
			if errors.Is(err, ErrClosed) {
				return restored, err
			}
			log.Printf("⚠️ Failed to restore room %s: %v", id, err)
			continue
		}
		restored++
	}
	log.Printf("♻️ Restored %d of %d stored rooms", restored, len(out.RoomIDs))
	return restored, nil
}

// Rooms returns the ids of the live rooms
func (m *Manager) Rooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// JoinInput identifies a participant entering a room
type JoinInput struct {
	RoomID   string
	Name     string
	Passcode string

	// SeatToken resumes the seat it was issued for without the passcode
	SeatToken string
}

// JoinOutput is the seat the caller holds
type JoinOutput struct {
	ParticipantID string
	SeatToken     string
	State         *game.RoomState
}

// Join seats a participant after checking the room passcode. A caller
// presenting a valid seat token gets that seat back.
func (m *Manager) Join(ctx context.Context, input *JoinInput) (*JoinOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}
	room, err := m.Room(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}

	current := room.Snapshot()
	if p, seated := current.Seat(input.SeatToken); seated {
		return &JoinOutput{ParticipantID: p.ID, SeatToken: input.SeatToken, State: current}, nil
	}

	if err := access.VerifyPasscode(current.PasscodeHash, input.Passcode); err != nil {
		if errors.Is(err, access.ErrBadPasscode) {
			return nil, ErrBadPasscode
		}
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}

	token, err := access.GenerateSeatToken()
	if err != nil {
		return nil, err
	}
	participantID := m.ids.NewUUID()
	state, err := room.Do(ctx, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		next, err := e.Join(s, participantID, input.Name)
		if err != nil {
			return nil, err
		}
		return game.AssignSeat(next, participantID, token)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("👤 %s joined room %s", input.Name, input.RoomID)
	return &JoinOutput{ParticipantID: participantID, SeatToken: token, State: state}, nil
}

// CloseRoom stops a room, deletes it from the repository and disconnects
// its subscribers. Lookups fail with ErrRoomNotFound from the moment it is
// called, and no load in flight can bring the room back.
func (m *Manager) CloseRoom(ctx context.Context, roomID string) error {
	m.mu.Lock()
	room, live := m.rooms[roomID]
	delete(m.rooms, roomID)
	m.closing[roomID]++
	pending := m.loading[roomID]
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.closing[roomID]--; m.closing[roomID] <= 0 {
			delete(m.closing, roomID)
		}
		m.mu.Unlock()
	}()

	if live {
		room.Close()
	}
	m.bus.CloseRoom(roomID)
	if err := m.repo.DeleteRoom(ctx, &store.DeleteRoomInput{RoomID: roomID}); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", roomID, err)
	}
	if pending != nil {
		<-pending.done
	}
	log.Printf("🗑️ Room %s closed", roomID)
	return nil
}

// Shutdown stops every room, flushing pending saves
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, room := range rooms {
			wg.Add(1)
			go func(r *Room) {
				defer wg.Done()
				r.Close()
			}(room)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Printf("💤 Stopped %d rooms", len(rooms))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
