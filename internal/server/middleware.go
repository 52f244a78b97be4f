package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anchore/riskboard/internal/log"
	"github.com/anchore/riskboard/riskboard/store"
)

// ActorHeader names the caller recorded on activity entries.
const ActorHeader = "X-Riskboard-Actor"

func requestLogger() gin.HandlerFunc {
	logger := log.Nested("component", "api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			logger.WithFields(append(fields, "errors", c.Errors.String())...).Warn("request failed")
			return
		}
		logger.WithFields(fields...).Debug("request served")
	}
}

func actorFromHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader(ActorHeader)); actor != "" {
			c.Request = c.Request.WithContext(store.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}
