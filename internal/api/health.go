package api

import (
	"net/http"
	"time"

	"github.com/light11014/Moodmate-Backend/internal/api/respond"
)

// ServiceHealth is the aggregate view the health endpoint reports.
type ServiceHealth interface {
	IsHealthy() bool
	Components() map[string]bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	svc ServiceHealth
}

// NewHealthHandler creates a new health handler. A nil svc reports healthy.
func NewHealthHandler(svc ServiceHealth) *HealthHandler { return &HealthHandler{svc: svc} }

// CheckHealth handles GET /api/health
// Returns 200 when every dependency is up and 503 otherwise.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	healthy := true
	components := map[string]string{}
	if h.svc != nil {
		healthy = h.svc.IsHealthy()
		for name, up := range h.svc.Components() {
			components[name] = statusText(up)
		}
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	respond.WriteJSON(w, code, map[string]interface{}{
		"status":     statusText(healthy),
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func statusText(up bool) string {
	if up {
		return "UP"
	}
	return "DOWN"
}
