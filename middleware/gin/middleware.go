// Package ginmw adapts vine body validation to gin.
package ginmw

import (
	"github.com/gin-gonic/gin"

	"github.com/reoring/vine/middleware"
)

// ValidateJSON validates the request body with v, stores the output in the
// request context and continues, or aborts with the failure payload.
func ValidateJSON(v middleware.Validator, opt middleware.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := middleware.Body(c.Request, v, opt)
		if err != nil {
			status, payload := middleware.Failure(err)
			c.AbortWithStatusJSON(status, payload)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValidated(c.Request.Context(), out))
		c.Next()
	}
}

// GetValidated fetches the validated body from gin.Context.
func GetValidated(c *gin.Context) (any, bool) {
	return middleware.ValidatedFromContext(c.Request.Context())
}
