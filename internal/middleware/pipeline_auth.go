package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "vinvest/internal/errors"
)

// APIKeyHeader carries the shared secret of scheduled callers.
const APIKeyHeader = "X-API-Key"

// PipelineAuthMiddleware guards machine-to-machine routes such as the
// snapshot trigger. An empty apiKey disables the routes entirely.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)

	return func(c *gin.Context) {
		if len(expected) == 0 {
			abortWithError(c, apperrors.ErrPipelineDisabled)
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(APIKeyHeader)), expected) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
