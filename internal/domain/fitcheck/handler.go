package fitcheck

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/zephy/zephy-api/internal/middleware"
	"github.com/zephy/zephy-api/internal/pkg/errorhandler"
	"github.com/zephy/zephy-api/internal/pkg/response"
	"github.com/zephy/zephy-api/internal/pkg/validator"
)

// Handler handles fitcheck HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates fitcheck handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Record handles POST /api/fitcheck
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w)
			return
		}
		response.BadRequest(w, "Invalid mood/stress/energy values")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ErrorWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid mood/stress/energy values", errs)
		return
	}

	a, err := h.service.Record(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err, "Failed to record assessment")
		return
	}
	response.Created(w, a.ToResponse())
}

// History handles GET /api/fitcheck/history?limit=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.service.History(r.Context(), middleware.GetUserID(r.Context()), limit)
	if err != nil {
		h.handleError(w, r, err, "Failed to load history")
		return
	}

	out := make([]*AssessmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, a.ToResponse())
	}
	response.OK(w, out)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidScore):
		response.BadRequest(w, "Invalid mood/stress/energy values")
	case errors.Is(err, ErrNoUser):
		response.Unauthorized(w, "Unauthorized")
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "FITCHECK_FAILED", message, err)
	}
}
