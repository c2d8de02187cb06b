package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
)

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a transport-level error in the same structured
// envelope the pipeline uses, so clients only ever parse one error shape.
// Transport errors are never retryable: the request itself was bad or the
// server failed in a way a resend will not fix.
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, &models.ErrorResponse{
		Type:      "ERROR",
		ErrorCode: errorCode,
		Message:   message,
	})
}
