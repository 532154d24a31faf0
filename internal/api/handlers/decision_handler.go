package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/argus-sec/argus/internal/services"
)

// DecisionHandler lists recent pipeline decisions for the admin UI.
type DecisionHandler struct {
	decisions *services.DecisionService
}

// NewDecisionHandler returns a DecisionHandler.
func NewDecisionHandler(decisions *services.DecisionService) *DecisionHandler {
	return &DecisionHandler{decisions: decisions}
}

// List returns recent decisions, newest first. Supports ?limit= and
// ?identity= filters.
func (h *DecisionHandler) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	if identity := c.Query("identity"); identity != "" {
		list, err := h.decisions.ListByIdentity(identity, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list decisions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"decisions": list})
		return
	}

	list, err := h.decisions.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list decisions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": list})
}
