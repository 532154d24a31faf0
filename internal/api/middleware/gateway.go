package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/argus-sec/argus/internal/models"
	"github.com/argus-sec/argus/internal/pipeline"
)

// maxInspectBytes caps how much request body the pipeline inspects. Larger
// bodies pass through with only their prefix examined.
const maxInspectBytes = 64 << 10

// Gateway adapts an incoming request into a normalized RequestEvent and
// enforces the pipeline decision: 429 for rate limiting, 403 for blocked
// clients, 400 for suspicious content. Identity comes from ClientIP, which
// respects gin's trusted proxy configuration.
func Gateway(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			limited := io.LimitReader(c.Request.Body, maxInspectBytes)
			read, err := io.ReadAll(limited)
			if err != nil {
				// The body is partially drained; passing it through would
				// hand downstream handlers a truncated stream.
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
				return
			}
			body = read
			// Splice the inspected prefix back so downstream handlers see
			// the original stream.
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(read), c.Request.Body))
		}

		ev := &models.RequestEvent{
			Identity: c.ClientIP(),
			Method:   c.Request.Method,
			URL:      c.Request.RequestURI,
			Body:     body,
		}
		dec := p.Evaluate(c.Request.Context(), ev)
		c.Writer.Header().Set("X-Correlation-ID", dec.CorrelationID)

		switch dec.Outcome {
		case pipeline.RejectRateLimited:
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		case pipeline.RejectBlocked:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "client is blocked"})
		case pipeline.RejectSuspicious:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "suspicious payload detected"})
		default:
			c.Next()
		}
	}
}
