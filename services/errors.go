package services

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomExists         = errors.New("room already exists")
	ErrInvalidCapacity    = errors.New("max participants must be between 2 and 10")
	ErrAlreadyMember      = errors.New("user is already in the room")
	ErrRoomFull           = errors.New("room is full")
	ErrInvalidMessageType = errors.New("unrecognized signaling message type")
	ErrInvalidPayload     = errors.New("payload does not match message type")
)
