// Package httpx holds small helpers shared by all HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; every payload in this API is small.
const maxBodyBytes = 1 << 20

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a client-facing error message as JSON.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// ValidationError writes a 422 with per-field detail.
func ValidationError(w http.ResponseWriter, message string, fields map[string][]string) {
	JSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": message,
		"errors":  fields,
	})
}

// Decode reads a JSON request body into v, rejecting unknown fields and
// oversized payloads.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrMalformedBody, err)
	}
	return nil
}

// ErrMalformedBody marks request bodies that could not be parsed.
var ErrMalformedBody = errors.New("malformed request body")
