package store

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go nightfall/internal/store Repository

import (
	"context"

	"nightfall/internal/game"
)

// Repository persists room snapshots. Implementations store whole snapshots;
// the last save wins.
type Repository interface {
	// SaveRoom persists a snapshot, replacing any previous one for the room
	SaveRoom(ctx context.Context, input *SaveRoomInput) error

	// GetRoom retrieves the latest snapshot of a room
	GetRoom(ctx context.Context, input *GetRoomInput) (*game.RoomState, error)

	// DeleteRoom removes a room
	DeleteRoom(ctx context.Context, input *DeleteRoomInput) error

	// ListRooms returns the ids of every stored room
	ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error)
}
