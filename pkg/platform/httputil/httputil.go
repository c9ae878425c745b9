// Package httputil writes JSON responses and maps coded domain errors onto
// HTTP statuses. Handlers should never hand-roll error bodies.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "letterc/pkg/domain-errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError renders err as a JSON error envelope. The error code becomes the
// "error" field; the message is included as "error_description" except for
// internal errors, whose details stay server-side.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{
		Error:            string(code),
		ErrorDescription: dErrors.Message(err),
	}
	WriteJSON(w, dErrors.ToHTTPStatus(err), resp)
}

// WriteJSON renders v with the given status. Encoding failures are swallowed;
// by then the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
