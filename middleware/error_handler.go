package middleware

import (
	"errors"
	"net/http"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error as
//
//	{"success": false, "error": <message>, "type": <type>, "code": <code>, ...data}
//
// Details of server-side failures never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		err := last.Err

		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
			status := appErr.GetHTTPStatus()
			logger.LogHTTPError(c, err, status, string(appErr.Type))
			c.JSON(status, errorBody(appErr))

		case last.Type == gin.ErrorTypeBind:
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			body := gin.H{
				"success": false,
				"error":   "Invalid request body",
				"type":    string(apperrors.ValidationError),
			}
			if gin.IsDebugging() {
				body["details"] = err.Error()
			}
			c.JSON(http.StatusBadRequest, body)

		default:
			logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Internal Server Error",
				"type":    string(apperrors.ServerError),
			})
		}
	}
}

func errorBody(appErr *apperrors.AppError) gin.H {
	body := gin.H{
		"success": false,
		"error":   appErr.Message,
		"type":    string(appErr.Type),
	}
	if appErr.Code != "" {
		body["code"] = appErr.Code
	}
	if appErr.Detail != "" && (appErr.Type == apperrors.ValidationError || appErr.Type == apperrors.NotFoundError) {
		body["details"] = appErr.Detail
	}
	for k, v := range appErr.Data {
		if _, reserved := body[k]; !reserved {
			body[k] = v
		}
	}
	return body
}
