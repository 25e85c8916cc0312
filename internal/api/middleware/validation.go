package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"azubimatch/pkg/models"
	"azubimatch/pkg/utils"
)

// RequestValidation middleware tags every request with an ID and rejects
// oversized bodies before they reach a handler.
func RequestValidation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := utils.GenerateRequestID()
			c.Set("request_id", requestID)
			c.Response().Header().Set("X-Request-ID", requestID)

			if c.Request().Method == http.MethodPost {
				if c.Request().ContentLength > 64*1024 {
					return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Error: "Request body too large",
					})
				}
			}

			return next(c)
		}
	}
}
