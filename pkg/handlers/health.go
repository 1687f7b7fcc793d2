package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// HealthCheck reports gateway liveness plus a snapshot of the upstream's
// health. The upstream probe carries its own 5s budget, so a dead backend
// degrades the payload instead of hanging the endpoint.
func (h *Handlers) HealthCheck(c *gin.Context) {
	upstreamStatus := "online"
	health, err := h.Upstream.HealthCheck(c.Request.Context())
	if err != nil {
		log.Debugf("HealthCheck: upstream probe failed: %v", err)
		upstreamStatus = "offline"
	}

	payload := gin.H{
		"status":   "ok",
		"message":  "Manim Asset Gateway is running",
		"upstream": upstreamStatus,
	}
	if health != nil && health.Status != "" {
		payload["upstream_status"] = health.Status
	}
	c.JSON(http.StatusOK, payload)
}
