package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError rejects a request with the same {"error": ...} envelope the
// API core uses.
func writeError(w http.ResponseWriter, status int, msg string) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write(b)
}
