package mcp

import (
	"encoding/json"
	"net/http"
	"time"
)

const serviceName = "docloader-mcp"

// HealthResponse represents the JSON response for health endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// AccessChecker reports whether the storage backing the server can be read
type AccessChecker interface {
	IsAccessible() bool
}

// LivenessHandler checks if the server is running and accepting requests.
// It always returns 200 OK.
func (s *Server) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.logger.DebugContext(ctx, "liveness check requested")

	writeHealth(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Version:   serverVersion,
	})
}

// ReadinessHandler returns 200 OK if the storage root is accessible, 503 if not
func (s *Server) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.logger.DebugContext(ctx, "readiness check requested")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Version:   serverVersion,
		Checks:    make(map[string]string),
	}

	if s.storage != nil && s.storage.IsAccessible() {
		response.Checks["storage"] = "accessible"
		writeHealth(w, http.StatusOK, response)
		s.logger.DebugContext(ctx, "readiness check completed", "status", "healthy", "storage", "accessible")
		return
	}

	response.Status = "unhealthy"
	response.Checks["storage"] = "inaccessible"
	writeHealth(w, http.StatusServiceUnavailable, response)
	s.logger.ErrorContext(ctx, "readiness check failed", "status", "unhealthy", "storage", "inaccessible")
}

func writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
