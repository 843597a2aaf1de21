package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorLogger logs failed requests in key=value form and recovers panics
// into a JSON 500.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf("level=error msg=panic recovered method=%s path=%s panic=%v stack=%q",
					c.Request.Method, c.Request.URL.Path, recovered, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
			}
		}()

		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			log.Printf("level=warn msg=request failed method=%s path=%s status=%d duration=%s",
				c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		}
	}
}
