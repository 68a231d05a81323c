package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an id and logs its outcome.
func (h *Handler) requestLogger(c *gin.Context) {
	reqID := c.GetHeader(requestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	c.Set("requestId", reqID)
	c.Header(requestIDHeader, reqID)

	start := time.Now()
	c.Next()

	if h.log == nil {
		return
	}
	fields := []interface{}{
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"latency", time.Since(start),
	}
	switch status := c.Writer.Status(); {
	case status >= 500:
		h.log.Errorw("http_request", fields...)
	case status >= 400:
		h.log.Warnw("http_request", fields...)
	default:
		h.log.Debugw("http_request", fields...)
	}
}
