package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/practice-companion/internal/harmony"
	"github.com/Conceptual-Machines/practice-companion/internal/models"
)

// SuggestConfig handles POST /suggest-config
func SuggestConfig(c *gin.Context) {
	var result models.AnalysisResult
	if err := c.ShouldBindJSON(&result); err != nil {
		respondError(c, http.StatusBadRequest, "invalid analysis result: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, harmony.SuggestConfig(result))
}
