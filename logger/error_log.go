package logger

import (
	"github.com/gin-gonic/gin"
)

// LogHTTPError writes one structured entry for a failed request. Server errors
// log at error level, client errors at warn.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	log := GetLogger()

	fields := []interface{}{
		"error", err,
		"status", statusCode,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", c.GetString("request_id"),
		"client_ip", MaskIP(c.ClientIP()),
	}
	if userID := c.GetString("userID"); userID != "" {
		fields = append(fields, "user_id", userID)
	}

	if statusCode >= 500 {
		log.Errorw(message, fields...)
		return
	}
	log.Warnw(message, fields...)
}
