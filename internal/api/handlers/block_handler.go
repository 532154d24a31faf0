package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/argus-sec/argus/internal/blocklist"
	"github.com/argus-sec/argus/internal/models"
	"github.com/argus-sec/argus/internal/services"
)

// BlockHandler administers the block list.
type BlockHandler struct {
	blocks    *blocklist.BlockList
	decisions *services.DecisionService
}

// NewBlockHandler returns a BlockHandler.
func NewBlockHandler(blocks *blocklist.BlockList, decisions *services.DecisionService) *BlockHandler {
	return &BlockHandler{blocks: blocks, decisions: decisions}
}

// List returns all blocked identities.
func (h *BlockHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"blocks": h.blocks.List()})
}

type blockRequest struct {
	Identity string `json:"identity" binding:"required"`
	Reason   string `json:"reason"`
}

// Block adds a manual block for an identity.
func (h *BlockHandler) Block(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity is required"})
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}
	h.blocks.Block(req.Identity, reason, time.Now())

	if err := h.decisions.Log(&models.Decision{
		Source:   "manual",
		Action:   "reject",
		Identity: req.Identity,
		Details:  reason,
	}); err != nil {
		// The block itself took effect; only its paper trail failed.
		c.JSON(http.StatusOK, gin.H{"blocked": req.Identity, "warning": "decision log write failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": req.Identity})
}

// Unblock removes a block.
func (h *BlockHandler) Unblock(c *gin.Context) {
	identity := c.Param("identity")
	if !h.blocks.Unblock(identity) {
		c.JSON(http.StatusNotFound, gin.H{"error": "identity not blocked"})
		return
	}
	_ = h.decisions.Log(&models.Decision{
		Source:   "manual",
		Action:   "allow",
		Identity: identity,
		Details:  "unblocked",
	})
	c.JSON(http.StatusOK, gin.H{"unblocked": identity})
}
