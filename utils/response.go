package utils

import (
	"encoding/json"
	"net/http"
)

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// RespondWithErrorCode emits the fixed error taxonomy used by the API:
// a machine-readable code plus a human message.
func RespondWithErrorCode(w http.ResponseWriter, status int, code, msg string) {
	RespondWithJSON(w, status, map[string]string{"code": code, "error": msg})
}

type M map[string]interface{}
