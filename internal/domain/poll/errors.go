package poll

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll is closed")
	ErrInvalidOption = errors.New("invalid option")
	ErrNotPollOwner  = errors.New("only the poll author can close it")
	ErrEmptyQuestion = errors.New("question is empty after sanitizing")
)

// ValidationErrors carries per-field messages for type-specific rules
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
