package community

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/middleware"
	"github.com/zephy/zephy-api/internal/pkg/errorhandler"
	"github.com/zephy/zephy-api/internal/pkg/response"
	"github.com/zephy/zephy-api/internal/pkg/validator"
)

// Handler handles community post HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates community handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// decode reads and validates a JSON body, writing the error response itself.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w)
			return false
		}
		response.BadRequest(w, "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(dst); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.NotFound(w, label+" not found")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /api/communities/posts?community=&limit=&offset=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	community := q.Get("community")
	if community != "" && community != "all" && validator.ValidateVar(community, "community") != nil {
		response.ValidationError(w, map[string]string{"community": "Invalid community"})
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	filter := ListFilter{Community: community, Limit: limit, Offset: offset}.Normalize()

	posts, err := h.service.ListPosts(r.Context(), filter)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "POSTS_FETCH_FAILED", "Failed to fetch posts", err)
		return
	}

	items := make([]*PostResponse, 0, len(posts))
	for _, p := range posts {
		items = append(items, p.ToResponse())
	}

	response.WithMeta(w, items, response.Meta{
		Count:   len(items),
		Limit:   filter.Limit,
		Offset:  filter.Offset,
		HasMore: len(items) == filter.Limit,
	})
}

// Create handles POST /api/communities/posts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !decode(w, r, &req) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err, "Failed to create post")
		return
	}

	response.Created(w, post.ToResponse())
}

// GetByID handles GET /api/communities/posts/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "Post")
	if !ok {
		return
	}

	post, replies, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch post")
		return
	}

	resp := post.ToResponse()
	resp.Replies = make([]*ReplyResponse, 0, len(replies))
	for _, reply := range replies {
		resp.Replies = append(resp.Replies, reply.ToResponse())
	}
	response.OK(w, resp)
}

// Vote handles POST /api/communities/posts/{id}/vote
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "Post")
	if !ok {
		return
	}

	var req VoteRequest
	if !decode(w, r, &req) {
		return
	}

	counts, active, err := h.service.ReactToPost(r.Context(), id, middleware.GetUserID(r.Context()), req.PollType)
	if err != nil {
		h.handleError(w, r, err, "Failed to vote")
		return
	}

	response.OK(w, ReactionResponse{Polls: counts, Active: active})
}

// Reply handles POST /api/communities/posts/{id}/reply
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "Post")
	if !ok {
		return
	}

	var req CreateReplyRequest
	if !decode(w, r, &req) {
		return
	}

	reply, err := h.service.CreateReply(r.Context(), id, middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err, "Failed to add reply")
		return
	}

	response.Created(w, reply.ToResponse())
}

// SupportReply handles POST /api/communities/posts/{id}/replies/{replyId}/support
func (h *Handler) SupportReply(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathUUID(w, r, "id", "Post")
	if !ok {
		return
	}
	replyID, ok := pathUUID(w, r, "replyId", "Reply")
	if !ok {
		return
	}

	counts, active, err := h.service.SupportReply(r.Context(), postID, replyID, middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, r, err, "Failed to support reply")
		return
	}

	response.OK(w, map[string]interface{}{"support": counts[KindSupport], "active": active})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		response.NotFound(w, "Post not found")
	case errors.Is(err, ErrReplyNotFound):
		response.NotFound(w, "Reply not found")
	case errors.Is(err, ErrInvalidReactionKind):
		response.ValidationError(w, map[string]string{"pollType": "Invalid poll type"})
	case errors.Is(err, ErrEmptyContent):
		response.ValidationError(w, map[string]string{"content": "This field is required"})
	case errors.Is(err, ErrInvalidCommunity):
		response.ValidationError(w, map[string]string{"community": "Invalid community"})
	default:
		errorhandler.Internal(r.Context(), w, message, err)
	}
}
