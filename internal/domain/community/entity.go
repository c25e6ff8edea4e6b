package community

import (
	"time"

	"github.com/google/uuid"
)

// TargetType is the kind of row a reaction attaches to
type TargetType string

const (
	TargetPost  TargetType = "post"
	TargetReply TargetType = "reply"
)

// Reaction kinds
const (
	KindSupport = "support"
	KindRelate  = "relate"
	KindHelpful = "helpful"
)

const (
	DefaultNickname = "Anonymous"
	DefaultAvatar   = "🙂"
)

// reactionKinds is the closed set of kinds per target, in display order.
var reactionKinds = map[TargetType][]string{
	TargetPost:  {KindSupport, KindRelate, KindHelpful},
	TargetReply: {KindSupport},
}

// Kinds returns the allowed reaction kinds for target.
func Kinds(target TargetType) []string {
	return reactionKinds[target]
}

// ValidKind reports whether kind is allowed on target.
func ValidKind(target TargetType, kind string) bool {
	for _, k := range reactionKinds[target] {
		if k == kind {
			return true
		}
	}
	return false
}

// Tally maps reaction kind to count. Every allowed kind is present.
type Tally map[string]int

// NewTally returns a zeroed tally for target.
func NewTally(target TargetType) Tally {
	t := make(Tally, len(reactionKinds[target]))
	for _, k := range reactionKinds[target] {
		t[k] = 0
	}
	return t
}

// Post is a community post
type Post struct {
	ID             uuid.UUID     `db:"id"`
	UserID         uuid.NullUUID `db:"user_id"`
	Community      string        `db:"community"`
	Content        string        `db:"content"`
	AuthorNickname string        `db:"author_nickname"`
	AuthorAvatar   string        `db:"author_avatar"`
	SupportCount   int           `db:"support_count"`
	RelateCount    int           `db:"relate_count"`
	HelpfulCount   int           `db:"helpful_count"`
	ReplyCount     int           `db:"reply_count"`
	CreatedAt      time.Time     `db:"created_at"`
}

// Counts returns the denormalized reaction counters
func (p *Post) Counts() Tally {
	return Tally{KindSupport: p.SupportCount, KindRelate: p.RelateCount, KindHelpful: p.HelpfulCount}
}

// Reply is a reply to a post
type Reply struct {
	ID             uuid.UUID     `db:"id"`
	PostID         uuid.UUID     `db:"post_id"`
	UserID         uuid.NullUUID `db:"user_id"`
	Content        string        `db:"content"`
	AuthorNickname string        `db:"author_nickname"`
	AuthorAvatar   string        `db:"author_avatar"`
	SupportCount   int           `db:"support_count"`
	CreatedAt      time.Time     `db:"created_at"`
}

// ListFilter narrows post listing
type ListFilter struct {
	Community string
	Limit     int
	Offset    int
}

// Normalize applies paging defaults. Community "all" means no filter.
func (f ListFilter) Normalize() ListFilter {
	if f.Community == "all" {
		f.Community = ""
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func nullUserID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
