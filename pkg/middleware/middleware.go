// Package middleware carries the gin middleware shared by the HTTP
// surface: request logging, panic recovery and request id propagation.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "mqttlog/pkg/errors"
)

// RequestLogger logs one line per request after the handler chain ran.
// Server-side failures log at error level so they stand out next to the
// ingest pipeline's output.
func RequestLogger(logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if raw != "" {
			path = path + "?" + raw
		}

		logFields := []interface{}{
			"status", statusCode,
			"latency", latency,
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
		}

		if errorMessage != "" {
			logFields = append(logFields, "error", errorMessage)
		}

		if statusCode >= http.StatusInternalServerError {
			logger.Errorw("HTTP request", logFields...)
		} else {
			logger.Infow("HTTP request", logFields...)
		}
	}
}

// Recovery converts handler panics into a coded 500 response instead of
// killing the connection.
func Recovery(logger interface {
	Errorw(msg string, keysAndValues ...interface{})
}) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorw("Panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			apperrors.ToErrorResponse(apperrors.ErrInternal))
	})
}

// RequestID propagates an incoming X-Request-ID or mints one, so query
// responses can be correlated with their log lines.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func generateRequestID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Unix())
}
