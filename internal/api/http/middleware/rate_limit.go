package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SyncRateLimit caps how often the bulk template sync can run per process.
// Sync fans out over every project referencing a template, so a misbehaving
// client hammering the endpoint would multiply database write load.
func SyncRateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 6
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":    false,
				"error": "sync rate limit exceeded, retry later",
			})
			return
		}
		c.Next()
	}
}
