package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic in any handler into a JSON 500 with the same
// {"error": ...} body the handlers use. Panic values are logged, never
// returned to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}

			attrs := []any{
				"panic", fmt.Sprint(p),
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			}
			if key := c.Param("key"); key != "" {
				attrs = append(attrs, "key", strings.ToUpper(key))
			}
			slog.ErrorContext(c.Request.Context(), "handler panicked", attrs...)

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
		}()
		c.Next()
	}
}
