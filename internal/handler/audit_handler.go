package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/archive"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditHandler serves the admin audit dashboard and the archive trigger.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("handler", "audit").Logger(),
		now:     time.Now,
	}
}

// List handles GET /api/admin/audit requests.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, "failed to list audit entries", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Get handles GET /api/admin/audit/{id} requests.
func (h *AuditHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to retrieve audit entry", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

type reclassifyRequest struct {
	Severity model.AuditSeverity `json:"severity"`
}

// Reclassify handles PATCH /api/admin/audit/{id} requests.
func (h *AuditHandler) Reclassify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}

	var req reclassifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid JSON request body", h.logger)
		return
	}

	entry, err := h.service.Reclassify(r.Context(), id, req.Severity)
	if err != nil {
		writeDomainError(w, err, "failed to reclassify audit entry", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

type archiveRequest struct {
	Since *time.Time `json:"since"`
	Until *time.Time `json:"until"`
}

// Archive handles POST /internal/audit/archive requests. Without a body the
// previous UTC day is exported.
func (h *AuditHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid JSON request body", h.logger)
		return
	}

	since, until := archive.PreviousDay(h.now())
	if req.Since != nil {
		since = *req.Since
	}
	if req.Until != nil {
		until = *req.Until
	}

	report, err := h.service.Archive(r.Context(), since, until)
	if errors.Is(err, archive.ErrInvalidWindow) {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, archive.ErrInvalidWindow.Error(), h.logger)
		return
	}
	if err != nil {
		writeDomainError(w, err, "failed to archive audit entries", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *AuditHandler) entryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "audit entry ID must be a valid UUID", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func parseAuditFilter(r *http.Request) (model.AuditFilter, error) {
	q := r.URL.Query()
	filter := model.AuditFilter{Limit: defaultAuditLimit}

	if v := q.Get("event_type"); v != "" {
		eventType := model.AuditEventType(strings.ToLower(v))
		filter.EventType = &eventType
	}
	if v := q.Get("severity"); v != "" {
		severity := model.AuditSeverity(strings.ToLower(v))
		filter.Severity = &severity
	}
	if v := q.Get("session_id"); v != "" {
		filter.SessionID = &v
	}
	if v := q.Get("user_id"); v != "" {
		filter.UserID = &v
	}

	var err error
	if filter.Since, err = timeParam(q.Get("since"), "since"); err != nil {
		return filter, err
	}
	if filter.Until, err = timeParam(q.Get("until"), "until"); err != nil {
		return filter, err
	}

	limit, ok := intParam(r, "limit", defaultAuditLimit)
	if !ok || limit <= 0 {
		return filter, errors.New("invalid limit parameter")
	}
	filter.Limit = min(limit, maxAuditLimit)

	offset, ok := intParam(r, "offset", 0)
	if !ok {
		return filter, errors.New("invalid offset parameter")
	}
	filter.Offset = offset

	return filter, nil
}

func timeParam(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New("invalid " + name + " parameter, expected RFC3339")
	}
	return &t, nil
}
