package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"nightfall/internal/game"
)

// MemoryStore holds room snapshots in memory
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*game.RoomState
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*game.RoomState),
	}
}

// SaveRoom stores a copy of the snapshot
func (s *MemoryStore) SaveRoom(ctx context.Context, input *SaveRoomInput) error {
	if input == nil || input.Room == nil {
		return errors.New("input and room cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[input.Room.ID] = input.Room.Clone()
	return nil
}

// GetRoom retrieves a room by id
func (s *MemoryStore) GetRoom(ctx context.Context, input *GetRoomInput) (*game.RoomState, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.New("input and room ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[input.RoomID]
	if !exists {
		return nil, fmt.Errorf("room %s: %w", input.RoomID, ErrRoomNotFound)
	}

	return room.Clone(), nil
}

// DeleteRoom removes a room. Deleting an unknown room is not an error.
func (s *MemoryStore) DeleteRoom(ctx context.Context, input *DeleteRoomInput) error {
	if input == nil || input.RoomID == "" {
		return errors.New("input and room ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, input.RoomID)
	return nil
}

// ListRooms returns the stored room ids in sorted order
func (s *MemoryStore) ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &ListRoomsOutput{RoomIDs: ids}, nil
}
