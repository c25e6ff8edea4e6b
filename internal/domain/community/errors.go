package community

import "errors"

var (
	ErrPostNotFound        = errors.New("post not found")
	ErrReplyNotFound       = errors.New("reply not found")
	ErrInvalidReactionKind = errors.New("invalid reaction kind")
	ErrInvalidTarget       = errors.New("invalid reaction target")
	ErrEmptyContent        = errors.New("content is empty after sanitizing")
	ErrInvalidCommunity    = errors.New("invalid community")
)
