package game

import "errors"

var (
	ErrInvalidPhase         = errors.New("action not accepted in the current phase")
	ErrUnknownParticipant   = errors.New("participant is not in this room")
	ErrDeadParticipant      = errors.New("participant is not alive")
	ErrUnknownRole          = errors.New("unknown role")
	ErrDistributionMismatch = errors.New("role distribution does not match the participant count")

	ErrNoDefaultDistribution = errors.New("no default role distribution for this participant count")
	ErrInvalidDistribution   = errors.New("role counts must not be negative")
	ErrRoomFull              = errors.New("room is full")
	ErrDuplicateName         = errors.New("a participant with that name already exists in the room")
	ErrChannelForbidden      = errors.New("participant may not post to that channel")
	ErrEmptyMessage          = errors.New("message is empty")
)
