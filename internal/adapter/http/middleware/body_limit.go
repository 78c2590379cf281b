package middleware

import (
	"net/http"

	"payment-engine/pkg/apperror"
	"payment-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaxBodySize rejects requests whose declared length exceeds maxBytes and
// caps the body reader for the rest, so handlers see a read error instead of
// an unbounded body.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, apperror.ErrPayloadTooLarge())
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
