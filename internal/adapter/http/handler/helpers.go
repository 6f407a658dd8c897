package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/motorlot/financing/internal/adapter/http/dto"
	"github.com/motorlot/financing/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnitNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLockContention):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAlreadyInitialized),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrAlreadyPaidOff),
		errors.Is(err, domain.ErrOpenPeriodExists),
		errors.Is(err, domain.ErrAccrualNotHalted),
		errors.Is(err, domain.ErrNoOpenPeriod):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAmountExceedsPayoff):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoDebt),
		errors.Is(err, domain.ErrNegativeCost),
		errors.Is(err, domain.ErrInvalidBasis),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrPeriodOverlap),
		errors.Is(err, domain.ErrPortionMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
