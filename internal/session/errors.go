package session

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrBadPasscode  = errors.New("wrong passcode")
	ErrNotHost      = errors.New("only the host can do that")
	ErrClosed       = errors.New("room is closed")
	ErrNameRequired = errors.New("name is required")
)
