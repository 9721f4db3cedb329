// Package errors maps gateway failures to their externally observable
// responses. Every body is the uniform {error} shape; internal detail is
// logged by the caller, never returned.
package errors

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookaio/backend/pkg/models"
)

// BadRequest returns a 400 with a correctable client error message
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: message})
}

// Unauthorized returns a 401 with a generic message. Verification internals
// are never surfaced.
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: "Invalid or expired session. Please log in again.",
	})
}

// RateLimited returns a 429 with a Retry-After hint in whole seconds
func RateLimited(c echo.Context, retryAfter time.Duration) error {
	seconds := int(retryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))

	return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
		Error: "Too many requests. Please wait before trying again.",
	})
}

// QuotaExceeded returns a 429 flagged for the plan-upgrade UI
func QuotaExceeded(c echo.Context, message string) error {
	return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
		Error:         message,
		QuotaExceeded: true,
	})
}

// UpstreamFailure returns a 502 with no upstream detail
func UpstreamFailure(c echo.Context) error {
	return c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error: "The generation service returned an error. Please try again.",
	})
}

// UpstreamTimeout returns a 504 for calls that exceeded the deadline
func UpstreamTimeout(c echo.Context) error {
	return c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
		Error: "The generation took too long and was aborted.",
	})
}

// Internal returns a 500 with a generic message
func Internal(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: "An internal error occurred. Please try again later.",
	})
}
