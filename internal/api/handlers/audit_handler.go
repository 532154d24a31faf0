package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/argus-sec/argus/internal/audit"
	"github.com/argus-sec/argus/internal/pipeline"
)

// AuditHandler exposes stored audit records and their verification.
type AuditHandler struct {
	pipe *pipeline.Pipeline
}

// NewAuditHandler returns an AuditHandler backed by the pipeline.
func NewAuditHandler(p *pipeline.Pipeline) *AuditHandler {
	return &AuditHandler{pipe: p}
}

// Get returns the metadata and hash of one audit record. The ciphertext
// stays server-side.
func (h *AuditHandler) Get(c *gin.Context) {
	rec, err := h.pipe.GetAuditRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, audit.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "audit record not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Verify re-checks a stored record's integrity. Tampering is reported with
// its own status so monitoring can alert on it distinctly.
func (h *AuditHandler) Verify(c *gin.Context) {
	ok, err := h.pipe.VerifyAuditRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, audit.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "audit record not found"})
			return
		}
		if errors.Is(err, audit.ErrIntegrity) {
			c.JSON(http.StatusOK, gin.H{"verified": false, "error": "integrity violation"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": ok})
}
