package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrEmptyMessage  = fmt.Errorf("message text is empty")
	ErrEmptyAuthor   = fmt.Errorf("message author is empty")
	ErrEmptyName     = fmt.Errorf("display name is empty")
	ErrEmptyRoomName = fmt.Errorf("room name is empty")
	ErrMissingCursor = fmt.Errorf("missing ?before timestamp")
	ErrInvalidCursor = fmt.Errorf("invalid ?before timestamp")

	ErrStoreUnavailable = fmt.Errorf("message store unavailable")
	ErrStoreTimeout     = fmt.Errorf("message store call timed out")
	ErrCorruptedRecord  = fmt.Errorf("corrupted record")

	ErrRoomNotFound         = fmt.Errorf("room not found")
	ErrDirectoryUnavailable = fmt.Errorf("room directory unavailable")
	ErrRoomAlreadyExists    = fmt.Errorf("room already exists")
	ErrRoomTokenExhausted   = fmt.Errorf("could not allocate a unique room id")

	ErrInvalidPayload = fmt.Errorf("invalid event payload")
	ErrUnknownEvent   = fmt.Errorf("unknown event")

	ErrAlreadyJoined  = fmt.Errorf("session already joined")
	ErrSessionClosed  = fmt.Errorf("session closed")
	ErrUnknownSession = fmt.Errorf("unknown session")
)
