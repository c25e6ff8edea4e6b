package chat

import "errors"

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrSessionNotFound = errors.New("chat session not found")
	ErrEmptyReply      = errors.New("completion returned an empty reply")
)
