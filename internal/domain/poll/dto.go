package poll

import (
	"time"

	"github.com/zephy/zephy-api/internal/pkg/sanitize"
)

// Author is the display identity attached to a poll
type Author struct {
	Nickname string `json:"nickname" validate:"omitempty,max=50"`
	Avatar   string `json:"avatar" validate:"omitempty,max=10"`
}

// OptionInput is a client supplied option
type OptionInput struct {
	ID    string `json:"id" validate:"required,max=50"`
	Text  string `json:"text" validate:"required,max=100"`
	Emoji string `json:"emoji" validate:"omitempty,max=10"`
}

// ScaleInput is a client supplied scale
type ScaleInput struct {
	Range      int    `json:"range" validate:"required,gte=2,lte=10"`
	StartLabel string `json:"startLabel" validate:"omitempty,max=100"`
	EndLabel   string `json:"endLabel" validate:"omitempty,max=100"`
}

// CreateRequest is the body of POST /api/communities/polls
type CreateRequest struct {
	Question string        `json:"question" validate:"required,max=400"`
	Type     string        `json:"type" validate:"required,poll_type"`
	Category string        `json:"category" validate:"required,poll_category"`
	Author   *Author       `json:"author"`
	Options  []OptionInput `json:"options" validate:"omitempty,max=6,dive"`
	Scale    *ScaleInput   `json:"scale"`
}

// VoteRequest is the body of POST /api/communities/polls/{id}/vote
type VoteRequest struct {
	OptionID string `json:"optionId" validate:"required,max=50"`
}

// VoteResult is the authoritative tally after a vote
type VoteResult struct {
	Votes      map[string]int `json:"votes"`
	TotalVotes int            `json:"totalVotes"`
}

// PollResponse for API response
type PollResponse struct {
	ID         string         `json:"id"`
	Question   string         `json:"question"`
	Type       Type           `json:"type"`
	Category   string         `json:"category"`
	Author     Author         `json:"author"`
	Timestamp  string         `json:"timestamp"`
	Options    Options        `json:"options,omitempty"`
	Scale      *Scale         `json:"scale,omitempty"`
	Votes      map[string]int `json:"votes"`
	TotalVotes int            `json:"totalVotes"`
	Status     Status         `json:"status"`
}

// ToResponse converts entity plus live counts to response
func (p *Poll) ToResponse(counts map[string]int) *PollResponse {
	votes, total := p.Tally(counts)
	resp := &PollResponse{
		ID:         p.ID.String(),
		Question:   p.Question,
		Type:       p.Type,
		Category:   p.Category,
		Author:     Author{Nickname: p.AuthorNickname, Avatar: p.AuthorAvatar},
		Timestamp:  p.CreatedAt.Format(time.RFC3339),
		Options:    p.Options,
		Votes:      votes,
		TotalVotes: total,
		Status:     p.Status,
	}
	if p.Scale.Valid {
		s := p.Scale.Scale
		resp.Scale = &s
	}
	return resp
}

func normalizeAuthor(a *Author) Author {
	out := Author{Nickname: "Anonymous", Avatar: "🙂"}
	if a == nil {
		return out
	}
	if n := sanitize.Text(a.Nickname, sanitize.MaxNickname); n != "" {
		out.Nickname = n
	}
	if av := sanitize.Text(a.Avatar, sanitize.MaxAvatar); av != "" {
		out.Avatar = av
	}
	return out
}
