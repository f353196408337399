package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stock-service/internal/domain/dto"
)

// ErrorHandler turns errors attached with c.Error into a fail envelope when
// the handler did not write a response itself. It is the last line of defence
// for the "exactly one envelope per request" rule.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	c.JSON(status, dto.Fail(dto.MessageFailed, c.Errors.Last().Err))
}

// AbortWithError stops the chain and writes a fail envelope with the given status.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.Fail(message, err))
}
