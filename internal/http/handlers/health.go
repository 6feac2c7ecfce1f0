package handlers

import "net/http"

// HealthHandler reports process liveness.
type HealthHandler struct{}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "", map[string]string{"status": "ok"})
}
