package handler

import (
	"errors"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/validation"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles guest and authenticated checkout requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Guest handles POST /api/checkout/guest requests.
func (h *CheckoutHandler) Guest(w http.ResponseWriter, r *http.Request) {
	var req model.GuestCheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid JSON request body", h.logger)
		return
	}

	resp, err := h.service.GuestCheckout(r.Context(), &req, requestMeta(r))
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Checkout handles POST /api/checkout requests for signed-in customers.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid JSON request body", h.logger)
		return
	}

	resp, err := h.service.Checkout(r.Context(), &req, requestMeta(r))
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var failed *model.ValidationFailedError
	if !errors.As(err, &failed) {
		writeDomainError(w, err, "failed to place order", h.logger)
		return
	}

	result := failed.Result
	h.logger.Info().
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("checkout rejected by validation")

	writeJSON(w, http.StatusUnprocessableEntity, model.ValidationErrorResponse{
		Error:    model.ErrCodeValidationFailed,
		Message:  result.Summary(),
		Errors:   result.Errors,
		Warnings: result.Warnings,
		Guidance: guidanceFor(result),
	})
}

func guidanceFor(result model.ValidationResult) map[string]string {
	out := make(map[string]string, len(result.Errors)+len(result.Warnings))
	for _, e := range result.Errors {
		out[e.Code] = validation.Guidance(e.Code)
	}
	for _, w := range result.Warnings {
		out[w.Code] = validation.Guidance(w.Code)
	}
	return out
}
