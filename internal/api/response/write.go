package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response. Every verdict payload (sync, tampering,
// registration) goes through here so the content type is set uniformly.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
