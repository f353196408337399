package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stock-service/internal/domain/dto"
	"github.com/guttosm/stock-service/internal/logger"
)

// RecoveryMiddleware returns a Gin middleware that recovers from any panic
// raised further down the chain, logs it with the stack trace, and answers
// with a generic fail envelope.
//
// The panic value and stack only go to the log; the client sees
// {"status":"fail","message":"internal server error"}.
//
// Example:
//
//	router := gin.New()
//	router.Use(middleware.RecoveryMiddleware())
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.L().Error().
					Str("request_id", GetRequestID(c)).
					Str("panic", fmt.Sprintf("%v", r)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Fail(dto.MessageInternalError, nil))
			}
		}()

		c.Next()
	}
}
