package store

import (
	"errors"

	"nightfall/internal/game"
)

// ErrRoomNotFound is returned when no snapshot exists for a room
var ErrRoomNotFound = errors.New("room not found")

type SaveRoomInput struct {
	Room *game.RoomState
}

type GetRoomInput struct {
	RoomID string
}

type DeleteRoomInput struct {
	RoomID string
}

type ListRoomsInput struct {
}

type ListRoomsOutput struct {
	RoomIDs []string
}
