package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// RequestLogger 替每個請求綁定帶 request_id 的子日誌器，並在結束時記一行摘要。
// 等級依狀態碼：5xx 為 error、4xx 為 warn；quietPaths 中的路由只在 debug 記錄。
func RequestLogger(base zerolog.Logger, quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)

		reqLog := base.With().Str(FieldRequestID, id).Logger()
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), reqLog))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = reqLog.Error()
		case status >= 400:
			evt = reqLog.Warn()
		case quiet[route]:
			evt = reqLog.Debug()
		default:
			evt = reqLog.Info()
		}

		evt = evt.Str(FieldMethod, c.Request.Method).
			Str(FieldPath, route).
			Int(FieldStatus, status).
			Dur(FieldLatency, time.Since(start)).
			Str(FieldClientIP, c.ClientIP())
		if name := c.GetString(FieldUsername); name != "" {
			evt = evt.Str(FieldUsername, name)
		}
		if len(c.Errors) > 0 {
			evt = evt.Str(zerolog.ErrorFieldName, c.Errors.String())
		}
		evt.Msg("request")
	}
}
