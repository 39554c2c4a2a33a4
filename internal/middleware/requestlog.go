package middleware

import (
  "time"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/rarchives/ir/internal/logger"
)

type RequestLogMiddleware struct {
  log         *logger.Logger
}

func NewRequestLogMiddleware(baseLog *logger.Logger) *RequestLogMiddleware {
  return &RequestLogMiddleware{log: baseLog.With("middleware", "RequestLog")}
}

// Handler tags each request with an id and logs method, path and
// latency on the way out.
func (m *RequestLogMiddleware) Handler() gin.HandlerFunc {
  return func(c *gin.Context) {
    requestID := uuid.NewString()
    c.Set("request_id", requestID)
    c.Header("X-Request-ID", requestID)

    start := time.Now()
    c.Next()

    m.log.Info("Request",
      "request_id", requestID,
      "method", c.Request.Method,
      "path", c.Request.URL.Path,
      "status", c.Writer.Status(),
      "duration", time.Since(start).String(),
    )
  }
}
