package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"dacsan-be/internal/catalog"
	"dacsan-be/internal/checkout"
	"dacsan-be/internal/logger"
	"dacsan-be/internal/order"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleError maps domain errors to HTTP responses.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		code   string
	)

	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		status, code = http.StatusNotFound, "product_not_found"
	case errors.Is(err, order.ErrValidationUnmet):
		status, code = http.StatusUnprocessableEntity, "validation_unmet"
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		status, code = http.StatusConflict, "submission_in_flight"
	case errors.Is(err, checkout.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, checkout.ErrCartEmpty), errors.Is(err, order.ErrEmptyOrder):
		status, code = http.StatusConflict, "cart_empty"
	case errors.Is(err, order.ErrPersistenceFailure), errors.Is(err, order.ErrStoreUnavailable):
		// store errors can carry hosts and credentials; they stay in the log
		logger.FromCtx(r.Context()).Error("order persistence failed", zap.Error(err), zap.String("path", r.URL.Path))
		respondError(w, http.StatusBadGateway, "persistence_failure", checkout.FailureMessage)
		return
	default:
		logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err), zap.String("path", r.URL.Path))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
