package errors

import "errors"

// Service-level sentinel errors. Handlers map these onto HTTP statuses;
// services return them and callers match with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomClosed        = errors.New("room is closed")
	ErrRoomInProgress    = errors.New("room game already in progress")
	ErrRoomNotInProgress = errors.New("room game not in progress")
	ErrNotRoomOwner      = errors.New("only the room owner can do this")
	ErrNotRoomMember     = errors.New("not a member of this room")
	ErrAlreadyInRoom     = errors.New("already in this room")
	ErrWrongRoomPassword = errors.New("wrong room password")
	ErrNotEnoughPlayers  = errors.New("not enough players to start")
	ErrInvalidHandSize   = errors.New("hand size must be between 3 and 10")
)
