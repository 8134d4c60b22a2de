package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/light11014/Moodmate-Backend/internal/model"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	}
	WriteJSON(w, statusCode, response)
}

// WriteBadRequest writes a 400 Bad Request response
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteInternalError writes a 500 Internal Server Error response
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// StatusFor maps a service error to its HTTP status. AI failures are the only
// 5xx domain error; every other domain error is the caller's fault.
func StatusFor(err error) int {
	switch {
	case model.IsNotFoundError(err), errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case model.IsAccessDeniedError(err):
		return http.StatusForbidden
	case errors.Is(err, model.ErrDuplicateFeedback):
		return http.StatusConflict
	case model.IsQuotaExceededError(err):
		return http.StatusTooManyRequests
	case model.IsValidationError(err):
		return http.StatusBadRequest
	case model.IsAnalysisFailedError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err with the status chosen by StatusFor.
// Unclassified errors are logged and reported without internal detail.
func WriteServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Stack().Err(err).Msg("unhandled service error")
		WriteInternalError(w, "internal error")
		return
	}
	if status == http.StatusBadGateway {
		log.Error().Err(err).Msg("analysis failed")
		WriteError(w, status, "AI analysis failed, please try again later")
		return
	}
	WriteError(w, status, err.Error())
}
