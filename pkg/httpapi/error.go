// Package httpapi holds the JSON error envelope shared by the API controllers
// and the auth/logging middleware, so every error the service emits has the
// same shape.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the error body for every /api response. Code is a stable
// machine-readable string (the ASSIGN_*/USER_* domain codes, UNAUTHORIZED,
// FORBIDDEN, ...); Meta carries request-scoped context such as the request id.
type ErrorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}
