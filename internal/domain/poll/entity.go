package poll

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Type is the poll presentation type
type Type string

const (
	TypeEmoji    Type = "emoji"
	TypeMultiple Type = "multiple"
	TypeScale    Type = "scale"
	TypeYesNo    Type = "yesno"
)

// Status of a poll
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

const (
	MinOptions    = 2
	MaxOptions    = 6
	MinScaleRange = 2
	MaxScaleRange = 10

	MaxOptionIDLength = 50
)

// Option is one votable choice
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Emoji string `json:"emoji,omitempty"`
}

// Options is stored as a jsonb column
type Options []Option

// Value implements driver.Valuer
func (o Options) Value() (driver.Value, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Scan implements sql.Scanner
func (o *Options) Scan(src interface{}) error {
	return scanJSON(src, o)
}

// Scale configures a 1..Range rating poll
type Scale struct {
	Range      int    `json:"range"`
	StartLabel string `json:"startLabel,omitempty"`
	EndLabel   string `json:"endLabel,omitempty"`
}

// NullScale is a nullable jsonb scale column
type NullScale struct {
	Scale Scale
	Valid bool
}

// Value implements driver.Valuer
func (s NullScale) Value() (driver.Value, error) {
	if !s.Valid {
		return nil, nil
	}
	return json.Marshal(s.Scale)
}

// Scan implements sql.Scanner
func (s *NullScale) Scan(src interface{}) error {
	if src == nil {
		s.Scale, s.Valid = Scale{}, false
		return nil
	}
	if err := scanJSON(src, &s.Scale); err != nil {
		return err
	}
	s.Valid = true
	return nil
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return errors.New("unsupported jsonb source type")
	}
}

// Poll is a community poll
type Poll struct {
	ID             uuid.UUID     `db:"id"`
	UserID         uuid.NullUUID `db:"user_id"`
	Question       string        `db:"question"`
	Type           Type          `db:"type"`
	Category       string        `db:"category"`
	AuthorNickname string        `db:"author_nickname"`
	AuthorAvatar   string        `db:"author_avatar"`
	Options        Options       `db:"options"`
	Scale          NullScale     `db:"scale"`
	Status         Status        `db:"status"`
	CreatedAt      time.Time     `db:"created_at"`
}

// OptionIDs returns the ids a vote may target, in display order.
// Scale polls vote on "1".."range".
func (p *Poll) OptionIDs() []string {
	if p.Type == TypeScale && p.Scale.Valid {
		ids := make([]string, 0, p.Scale.Scale.Range)
		for i := 1; i <= p.Scale.Scale.Range; i++ {
			ids = append(ids, strconv.Itoa(i))
		}
		return ids
	}
	ids := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		ids = append(ids, o.ID)
	}
	return ids
}

// HasOption reports whether optionID belongs to the poll
func (p *Poll) HasOption(optionID string) bool {
	for _, id := range p.OptionIDs() {
		if id == optionID {
			return true
		}
	}
	return false
}

// Tally zero-fills counts for every option and returns the total.
func (p *Poll) Tally(counts map[string]int) (map[string]int, int) {
	votes := make(map[string]int)
	for _, id := range p.OptionIDs() {
		votes[id] = counts[id]
	}
	total := 0
	for _, n := range votes {
		total += n
	}
	return votes, total
}

// yesNoOptions are fixed for yesno polls
var yesNoOptions = Options{
	{ID: "yes", Text: "Yes", Emoji: "👍"},
	{ID: "no", Text: "No", Emoji: "👎"},
}
