package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "cortex/internal/errors"
	"cortex/internal/logger"
)

func errorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

// abortWithError stops the chain with the sentinel's status and code. An
// empty message falls back to the sentinel's own.
func abortWithError(c *gin.Context, sentinel *apperrors.AppError, message string) {
	if message == "" {
		message = sentinel.Message
	}
	c.AbortWithStatusJSON(sentinel.StatusCode, errorBody(sentinel.Code, message))
}

// ErrorHandler converts errors attached with c.Error into the JSON error
// envelope. AppErrors keep their code and message; bind errors become
// INVALID_INPUT; anything else is logged and reported as INTERNAL_ERROR.
// Nothing is written when the handler already responded.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		err := last.Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
			c.JSON(appErr.StatusCode, errorBody(appErr.Code, appErr.Message))
			return
		}

		if last.IsType(gin.ErrorTypeBind) {
			c.JSON(apperrors.ErrInvalidInput.StatusCode, errorBody(apperrors.ErrInvalidInput.Code, err.Error()))
			return
		}

		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", c.GetString(requestIDKey),
		)
		c.JSON(apperrors.ErrInternalServer.StatusCode,
			errorBody(apperrors.ErrInternalServer.Code, apperrors.ErrInternalServer.Message))
	}
}
