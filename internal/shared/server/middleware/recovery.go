package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/shared/server/respond"
	"jobhunt-backend/internal/shared/telemetry"
)

// Recovery turns a panic into a 500 internal_error envelope. When the
// handler already started writing, the connection is only aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("request.panic", map[string]any{
				"requestId": RequestIDFromContext(c),
				"userId":    UserIDFromContext(c),
				"method":    c.Request.Method,
				"route":     c.FullPath(),
				"panic":     rec,
				"stack":     string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
		}()
		c.Next()
	}
}
