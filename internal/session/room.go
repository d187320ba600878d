package session

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"nightfall/internal/events"
	"nightfall/internal/game"
	"nightfall/internal/store"
)

// Transition computes the next snapshot of a room. It runs on the room's
// goroutine and must not block.
type Transition func(e *game.Engine, s *game.RoomState) (*game.RoomState, error)

type result struct {
	state *game.RoomState
	err   error
}

type command struct {
	fn    Transition
	reply chan result
}

// Room is the single writer of one room. Ticks and commands are applied one
// at a time on its goroutine; readers load the latest committed snapshot.
type Room struct {
	id       string
	engine   *game.Engine
	snapshot atomic.Pointer[game.RoomState]

	commands chan command
	saves    chan *game.RoomState

	repo           store.Repository
	bus            *events.Bus
	tickInterval   time.Duration
	persistTimeout time.Duration

	stop      chan struct{}
	stopOnce  sync.Once
	loopDone  chan struct{}
	saverDone chan struct{}
}

type roomConfig struct {
	engine         *game.Engine
	state          *game.RoomState
	save           bool
	repo           store.Repository
	bus            *events.Bus
	tickInterval   time.Duration
	persistTimeout time.Duration
}

func startRoom(cfg roomConfig) *Room {
	r := &Room{
		id:             cfg.state.ID,
		engine:         cfg.engine,
		commands:       make(chan command),
		saves:          make(chan *game.RoomState, 1),
		repo:           cfg.repo,
		bus:            cfg.bus,
		tickInterval:   cfg.tickInterval,
		persistTimeout: cfg.persistTimeout,
		stop:           make(chan struct{}),
		loopDone:       make(chan struct{}),
		saverDone:      make(chan struct{}),
	}
	r.snapshot.Store(cfg.state)
	if cfg.save {
		r.saves <- cfg.state
	}

	go r.run()
	go r.persist()
	return r
}

// ID returns the room id
func (r *Room) ID() string {
	return r.id
}

// Snapshot returns the latest committed state. Callers must not modify it.
func (r *Room) Snapshot() *game.RoomState {
	return r.snapshot.Load()
}

// Do runs fn on the room's goroutine and returns the committed snapshot.
// When fn fails nothing is committed and the current snapshot is returned
// with the error.
func (r *Room) Do(ctx context.Context, fn Transition) (*game.RoomState, error) {
	cmd := command{fn: fn, reply: make(chan result, 1)}

	select {
	case r.commands <- cmd:
	case <-r.stop:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res.state, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tick advances the room clock once
func (r *Room) Tick(ctx context.Context) (*game.RoomState, error) {
	return r.Do(ctx, func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
		return e.Tick(s)
	})
}

func (r *Room) run() {
	defer close(r.loopDone)

	var ticks <-chan time.Time
	if r.tickInterval > 0 {
		ticker := time.NewTicker(r.tickInterval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-r.stop:
			return
		case cmd := <-r.commands:
			state, err := r.apply(cmd.fn)
			cmd.reply <- result{state: state, err: err}
		case <-ticks:
			if _, err := r.apply(func(e *game.Engine, s *game.RoomState) (*game.RoomState, error) {
				return e.Tick(s)
			}); err != nil {
				log.Printf("❌ Room %s: tick failed: %v", r.id, err)
			}
		}
	}
}

func (r *Room) apply(fn Transition) (*game.RoomState, error) {
	current := r.snapshot.Load()
	next, err := fn(r.engine, current)
	if err != nil {
		return current, err
	}
	if next == nil || next == current {
		return current, nil
	}

	r.snapshot.Store(next)
	if next.Phase != current.Phase {
		log.Printf("🌗 Room %s: %s -> %s (day %d)", r.id, current.Phase, next.Phase, next.Day)
		if next.Phase == game.PhaseResult {
			log.Printf("🏁 Room %s: %s team wins", r.id, next.Winner)
		}
	}
	r.enqueueSave(next)
	if r.bus != nil {
		r.bus.Publish(events.Event{Type: events.TypeState, RoomID: r.id, State: next})
	}
	return next, nil
}

// enqueueSave hands the snapshot to the saver, replacing any snapshot it has
// not picked up yet. Only the room goroutine sends on saves.
func (r *Room) enqueueSave(s *game.RoomState) {
	select {
	case <-r.saves:
	default:
	}
	r.saves <- s
}

func (r *Room) persist() {
	defer close(r.saverDone)
	for s := range r.saves {
		r.save(s)
	}
}

func (r *Room) save(s *game.RoomState) {
	if r.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.persistTimeout)
	defer cancel()
	if err := r.repo.SaveRoom(ctx, &store.SaveRoomInput{Room: s}); err != nil {
		log.Printf("❌ Room %s: failed to persist snapshot: %v", r.id, err)
	}
}

// Close stops the room goroutine and waits for the last snapshot to be saved
func (r *Room) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
		<-r.loopDone
		close(r.saves)
		<-r.saverDone
	})
}
