package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"careercast/internal/artifacts"
	"careercast/internal/storage"
	"careercast/pkg/logger"
)

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	store       storage.Gateway
	bundle      *artifacts.Bundle
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler
func New(
	log *logger.Logger,
	store storage.Gateway,
	bundle *artifacts.Bundle,
	serviceName string,
	version string,
) *Handler {
	return &Handler{
		log:         log,
		store:       store,
		bundle:      bundle,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	Detail       string `json:"detail,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if service is ready to accept traffic
// Used by Kubernetes readiness probe
//
// A missing model degrades the status but does not fail readiness: the
// service keeps answering prediction requests with the sentinel label.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth)

	storageHealth := h.checkStorage(ctx)
	checks["storage"] = storageHealth

	checks["model"] = h.checkModel()

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	switch {
	case storageHealth.Status != "healthy":
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	case !h.bundle.HasModel():
		status.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(status)
}

// HandleHealth is the general health endpoint with full component detail
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.HandleReadiness(w, r)
}

func (h *Handler) checkStorage(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := h.store.Health(ctx); err != nil {
		return ComponentHealth{
			Status:       "unhealthy",
			Detail:       h.store.Engine(),
			ResponseTime: time.Since(start).String(),
			Error:        err.Error(),
		}
	}
	return ComponentHealth{
		Status:       "healthy",
		Detail:       h.store.Engine(),
		ResponseTime: time.Since(start).String(),
	}
}

func (h *Handler) checkModel() ComponentHealth {
	if !h.bundle.HasModel() {
		return ComponentHealth{
			Status: "degraded",
			Detail: "no model loaded, serving sentinel predictions",
		}
	}
	return ComponentHealth{Status: "healthy"}
}
