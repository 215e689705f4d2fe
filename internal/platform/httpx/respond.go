// Package httpx provides small JSON request/response helpers shared by the
// HTTP handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// errorBody is the wire shape of every failure response. The admin console
// renders it as a transient toast, so the message is the whole payload.
type errorBody struct {
	Error string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends a failure response carrying a user-facing message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
