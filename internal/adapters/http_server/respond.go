package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"realty_catalog/internal/domain"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(envelope{Success: true, Data: data})
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		writeFailure(w, http.StatusInternalServerError, apiError{Code: "INTERNAL_ERROR", Message: "internal error"})
		return
	}
	writeJSON(w, status, body)
}

func writeFailure(w http.ResponseWriter, status int, e apiError) {
	body, _ := json.Marshal(envelope{Success: false, Error: &e})
	writeJSON(w, status, body)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		ferr *domain.InvalidFilterError
	)
	switch {
	case errors.As(err, &verr):
		writeFailure(w, http.StatusBadRequest, apiError{Code: "VALIDATION_ERROR", Message: verr.Error(), Field: verr.Field})
	case errors.As(err, &ferr):
		writeFailure(w, http.StatusBadRequest, apiError{Code: "INVALID_FILTER", Message: ferr.Error(), Field: ferr.Field})
	case errors.Is(err, domain.ErrTenantNotFound):
		writeFailure(w, http.StatusBadRequest, apiError{Code: "TENANT_NOT_FOUND", Message: "tenant not found"})
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, apiError{Code: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, domain.ErrConflict):
		writeFailure(w, http.StatusConflict, apiError{Code: "CONFLICT", Message: "resource already exists"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("store unavailable")
		writeFailure(w, http.StatusServiceUnavailable, apiError{Code: "STORE_UNAVAILABLE", Message: "storage temporarily unavailable"})
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeFailure(w, http.StatusInternalServerError, apiError{Code: "INTERNAL_ERROR", Message: "internal error"})
	}
}

// writeETagged marshals the success envelope once, hashes it, and answers
// 304 when the client already holds that version.
func writeETagged(w http.ResponseWriter, r *http.Request, data any) {
	body, err := json.Marshal(envelope{Success: true, Data: data})
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
