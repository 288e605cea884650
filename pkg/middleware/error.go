package middleware

import (
	"errors"
	"net/http"

	"luxlife-studio/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last handler error. BaseError values keep their own
// payload; anything else carrying a CoreStatus is wrapped into one.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var base errutil.BaseError
		if errors.As(last.Err, &base) {
			c.JSON(base.Code.HTTPStatus(), base.JSON())
			return
		}

		status := errutil.StatusOf(last.Err)
		if status == errutil.StatusInternal {
			zap.L().Error("unhandled request error", zap.String("path", c.FullPath()), zap.Error(last.Err))
			c.JSON(http.StatusInternalServerError, errutil.BaseError{Code: status, Message: "internal error"}.JSON())
			return
		}
		c.JSON(status.HTTPStatus(), errutil.BaseError{Code: status, Message: last.Err.Error()}.JSON())
	}
}
