package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rahul4469/verifact/internal/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusForKind maps analysis failure kinds onto HTTP statuses.
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidationFailure:
		return http.StatusBadRequest
	case models.KindConfigurationFailure:
		return http.StatusServiceUnavailable
	case models.KindRateLimitFailure:
		return http.StatusTooManyRequests
	case models.KindDataIntegrityFailure, models.KindUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
