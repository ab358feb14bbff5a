package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "Musical Practice Companion API"

// HealthHandler reports liveness and which optional collaborators are enabled
type HealthHandler struct {
	version     string
	ocrProvider string
}

func NewHealthHandler(version, ocrProvider string) *HealthHandler {
	return &HealthHandler{version: version, ocrProvider: ocrProvider}
}

// Root returns the service banner
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": serviceName,
		"status":  "running",
		"version": h.version,
	})
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ocrStatus := "enabled"
	if h.ocrProvider == "" || h.ocrProvider == "none" {
		ocrStatus = "disabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"text_recognition": gin.H{
			"status":   ocrStatus,
			"provider": h.ocrProvider,
		},
	})
}
