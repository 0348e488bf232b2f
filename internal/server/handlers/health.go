// Package handlers contains the HTTP handlers served by the report server.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the body returned by the health endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Health reports process liveness. It carries no dependency checks; a
// response at all means the server loop is running.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // nolint:errcheck // client went away
}
