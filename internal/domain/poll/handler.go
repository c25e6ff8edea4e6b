package poll

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

// Handler handles poll HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates poll handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
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

func pollID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Poll not found")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /api/communities/polls?status=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	if status != "" && validator.ValidateVar(status, "poll_status") != nil {
		response.ValidationError(w, map[string]string{"status": "Invalid status. Must be: active or closed"})
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	polls, err := h.service.List(r.Context(), Status(status), limit, offset)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "POLLS_FETCH_FAILED", "Failed to fetch polls", err)
		return
	}
	response.OK(w, polls)
}

// Create handles POST /api/communities/polls
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !h.decode(w, r, &req) {
		return
	}

	poll, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err, "Failed to create poll")
		return
	}

	response.Created(w, poll.ToResponse(nil))
}

// GetByID handles GET /api/communities/polls/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}

	poll, counts, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch poll")
		return
	}
	response.OK(w, poll.ToResponse(counts))
}

// Vote handles POST /api/communities/polls/{id}/vote
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}

	var req VoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Vote(r.Context(), id, middleware.GetUserID(r.Context()), req.OptionID)
	if err != nil {
		h.handleError(w, r, err, "Failed to vote")
		return
	}
	response.OK(w, result)
}

// Close handles POST /api/communities/polls/{id}/close
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}

	poll, err := h.service.Close(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, r, err, "Failed to close poll")
		return
	}
	response.OK(w, map[string]interface{}{"id": poll.ID.String(), "status": poll.Status})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(w, verrs)
	case errors.Is(err, ErrEmptyQuestion):
		response.ValidationError(w, map[string]string{"question": "This field is required"})
	case errors.Is(err, ErrPollNotFound):
		response.NotFound(w, "Poll not found")
	case errors.Is(err, ErrInvalidOption):
		response.BadRequest(w, "Invalid option")
	case errors.Is(err, ErrPollClosed):
		response.Conflict(w, "Poll is closed")
	case errors.Is(err, ErrNotPollOwner):
		response.Forbidden(w, "Only the poll author can close it")
	default:
		errorhandler.Internal(r.Context(), w, message, err)
	}
}
