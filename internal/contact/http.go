package contact

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"portfolio-service/common/httputil"
	"portfolio-service/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	clientIP func(*http.Request) string
}

func NewHandler(service Service, logger *slog.Logger, clientIP func(*http.Request) string) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		clientIP: clientIP,
	}
}

// RegisterRoutes mounts the contact endpoints. submitMiddlewares wrap only
// POST /api/contact (the stricter submission rate limit).
func (h *Handler) RegisterRoutes(router chi.Router, submitMiddlewares ...func(http.Handler) http.Handler) {
	router.With(submitMiddlewares...).Post("/api/contact", h.Submit)
	router.Get("/api/contacts", h.ListAll)
	router.Patch("/api/contacts/{id}", h.UpdateStatus)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	// An empty body is treated like {} so the caller gets the field violations.
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondWithJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"errors":  []string{"Invalid request body"},
		})
		return
	}

	caller := Caller{
		IPAddress: h.clientIP(r),
		UserAgent: r.UserAgent(),
	}

	submission, err := h.service.Submit(r.Context(), req, caller)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.logger.InfoContext(r.Context(), "contact submission rejected", "violations", len(verr.Violations))
			httputil.RespondWithJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"errors":  verr.Violations,
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to save contact", "error", err)
		httputil.RespondWithFailure(w, http.StatusInternalServerError, "Failed to save contact information. Please try again.")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, SubmitResponse{
		Success: true,
		Message: AcknowledgementMessage,
		ID:      submission.ID,
	})
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.ListAll(r.Context(), auth.BearerToken(r))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch contacts")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, ListResponse{
		Success:  true,
		Contacts: contacts,
		Total:    len(contacts),
	})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || h.validate.Struct(&req) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	// An unparseable id becomes 0 and is rejected by the service after the credential check.
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		id = 0
	}

	if err := h.service.UpdateStatus(r.Context(), auth.BearerToken(r), id, req.Status); err != nil {
		h.handleServiceError(w, r, err, "Failed to update contact")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Contact status updated",
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		h.logger.WarnContext(r.Context(), "unauthorized admin request", "path", r.URL.Path)
		httputil.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrInvalidStatus):
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid contact ID")
	case errors.Is(err, ErrContactNotFound):
		h.logger.InfoContext(r.Context(), "contact not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Contact not found")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, failure)
	}
}
