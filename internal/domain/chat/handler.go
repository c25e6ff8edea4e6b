package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/middleware"
	"github.com/zephy/zephy-api/internal/pkg/completion"
	"github.com/zephy/zephy-api/internal/pkg/errorhandler"
	"github.com/zephy/zephy-api/internal/pkg/response"
	"github.com/zephy/zephy-api/internal/pkg/validator"
)

const (
	msgEmpty          = "Message is required and cannot be empty"
	msgAuthFailed     = "API authentication failed. Please check configuration."
	msgUpstreamBusy   = "Too many requests. Please wait a moment and try again."
	msgBadUpstreamReq = "Invalid request. Please check your message."
	msgGeneric        = "Sorry, I'm having trouble responding right now. Please try again."
)

// Handler handles chat HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates chat handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Send handles POST /api/chat
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w)
			return
		}
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ErrorWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", msgEmpty, errs)
		return
	}

	resp, err := h.service.Send(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, resp)
}

// History handles GET /api/chat/history?session_id=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	var sessionID *uuid.UUID
	if raw := r.URL.Query().Get("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.NotFound(w, "Chat session not found")
			return
		}
		sessionID = &id
	}

	resp, err := h.service.History(r.Context(), middleware.GetUserID(r.Context()), sessionID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, resp)
}

// handleError maps upstream status classes. Only 429 and 400 are passed through.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var provider *completion.ProviderError
	switch {
	case errors.Is(err, ErrEmptyMessage):
		response.BadRequest(w, msgEmpty)
	case errors.Is(err, ErrSessionNotFound):
		response.NotFound(w, "Chat session not found")
	case errors.As(err, &provider):
		errorhandler.LogExternalServiceError(r.Context(), "completion", provider.StatusCode, err)
		switch provider.StatusCode {
		case http.StatusUnauthorized:
			response.ServerError(w, msgAuthFailed)
		case http.StatusTooManyRequests:
			response.TooManyRequests(w, msgUpstreamBusy, 0)
		case http.StatusBadRequest:
			response.BadRequest(w, msgBadUpstreamReq)
		default:
			response.ServerError(w, msgGeneric)
		}
	case errors.Is(err, completion.ErrNotConfigured), errors.Is(err, completion.ErrEmptyResponse), errors.Is(err, ErrEmptyReply):
		errorhandler.LogExternalServiceError(r.Context(), "completion", 0, err)
		response.ServerError(w, msgGeneric)
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "CHAT_FAILED", msgGeneric, err)
	}
}
