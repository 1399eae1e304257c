// Package echomw adapts vine body validation to echo.
package echomw

import (
	"github.com/labstack/echo/v4"

	"github.com/reoring/vine/middleware"
)

// ValidateJSON validates the request body with v and stores the output in
// the request context on success. Failures are answered with JSON.
func ValidateJSON(v middleware.Validator, opt middleware.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			out, err := middleware.Body(c.Request(), v, opt)
			if err != nil {
				status, payload := middleware.Failure(err)
				return c.JSON(status, payload)
			}
			ctx := middleware.ContextWithValidated(c.Request().Context(), out)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetValidated fetches the validated body from echo.Context.
func GetValidated(c echo.Context) (any, bool) {
	return middleware.ValidatedFromContext(c.Request().Context())
}
