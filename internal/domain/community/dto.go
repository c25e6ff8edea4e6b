package community

import (
	"time"

	"github.com/zephy/zephy-api/internal/pkg/sanitize"
)

// Author is the display identity attached to posts and replies
type Author struct {
	Nickname string `json:"nickname" validate:"omitempty,max=50"`
	Avatar   string `json:"avatar" validate:"omitempty,max=10"`
}

func (a *Author) normalize() Author {
	out := Author{Nickname: DefaultNickname, Avatar: DefaultAvatar}
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

// CreatePostRequest is the body of POST /api/communities/posts
type CreatePostRequest struct {
	Content   string  `json:"content" validate:"required,max=500"`
	Community string  `json:"community" validate:"required,community"`
	Author    *Author `json:"author"`
}

// CreateReplyRequest is the body of POST /api/communities/posts/{id}/reply
type CreateReplyRequest struct {
	Content string  `json:"content" validate:"required,max=300"`
	Author  *Author `json:"author"`
}

// VoteRequest is the body of POST /api/communities/posts/{id}/vote
type VoteRequest struct {
	PollType string `json:"pollType" validate:"required"`
}

// PostResponse for API response
type PostResponse struct {
	ID         string           `json:"id"`
	Community  string           `json:"community"`
	Content    string           `json:"content"`
	Author     Author           `json:"author"`
	Timestamp  string           `json:"timestamp"`
	Polls      Tally            `json:"polls"`
	ReplyCount int              `json:"reply_count"`
	Replies    []*ReplyResponse `json:"replies,omitempty"`
}

// ReplyResponse for API response
type ReplyResponse struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	Content   string `json:"content"`
	Author    Author `json:"author"`
	Timestamp string `json:"timestamp"`
	Support   int    `json:"support"`
}

// ReactionResponse is returned by reaction toggles
type ReactionResponse struct {
	Polls  Tally `json:"polls"`
	Active bool  `json:"active"`
}

// ToResponse converts entity to response
func (p *Post) ToResponse() *PostResponse {
	return &PostResponse{
		ID:         p.ID.String(),
		Community:  p.Community,
		Content:    p.Content,
		Author:     Author{Nickname: p.AuthorNickname, Avatar: p.AuthorAvatar},
		Timestamp:  p.CreatedAt.Format(time.RFC3339),
		Polls:      p.Counts(),
		ReplyCount: p.ReplyCount,
	}
}

// ToResponse converts entity to response
func (r *Reply) ToResponse() *ReplyResponse {
	return &ReplyResponse{
		ID:        r.ID.String(),
		PostID:    r.PostID.String(),
		Content:   r.Content,
		Author:    Author{Nickname: r.AuthorNickname, Avatar: r.AuthorAvatar},
		Timestamp: r.CreatedAt.Format(time.RFC3339),
		Support:   r.SupportCount,
	}
}
