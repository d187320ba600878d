package events

import (
	"sync"

	"nightfall/internal/game"
)

// Event types
const (
	TypeState  = "state"
	TypeClosed = "closed"
)

// Event announces a committed room snapshot
type Event struct {
	Type   string
	RoomID string
	State  *game.RoomState
}

// Bus fans room events out to subscribers
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
	buffer      int
}

// NewBus creates a bus whose subscriber channels hold buffer events
func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		subscribers: make(map[string][]chan Event),
		buffer:      buffer,
	}
}

// Subscribe subscribes to events for a room
func (b *Bus) Subscribe(roomID string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	b.subscribers[roomID] = append(b.subscribers[roomID], ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (b *Bus) Unsubscribe(roomID string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[roomID]
	for i, sub := range subs {
		if sub == ch {
			b.subscribers[roomID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(b.subscribers[roomID]) == 0 {
		delete(b.subscribers, roomID)
	}
}

// Publish delivers an event to every subscriber of the room without
// blocking. A subscriber that has fallen behind loses its oldest pending
// event, so the newest snapshot always gets through.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.RoomID] {
		for {
			select {
			case ch <- event:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// CloseRoom sends a closed event to every subscriber of the room and drops them
func (b *Bus) CloseRoom(roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers[roomID] {
		select {
		case ch <- Event{Type: TypeClosed, RoomID: roomID}:
		default:
		}
		close(ch)
	}
	delete(b.subscribers, roomID)
}

// Subscribers returns how many subscribers a room has
func (b *Bus) Subscribers(roomID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[roomID])
}
