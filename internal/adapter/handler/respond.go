package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/funkystitch/storefront/internal/core/service"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// writeServiceError maps known service errors onto HTTP statuses.
// Anything unmapped is a 500 with a generic body; the cause is logged,
// not leaked.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrEmailOrPhoneTaken),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrOrderAlreadyPaid),
		errors.Is(err, service.ErrDuplicateTransaction):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNoOrderItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrVariantNotFound),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrCannotDeleteAdmin),
		errors.Is(err, service.ErrPaymentNotVerified),
		errors.Is(err, service.ErrPaymentAmountMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
