package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Fail writes the uniform failure body used by every handler
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Failure{Success: false, Error: message})
}

// Failure is the uniform error shape for handled failures
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
