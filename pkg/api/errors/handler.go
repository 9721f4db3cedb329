package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/models"
)

// ErrorHandler returns an Echo HTTPErrorHandler that keeps the uniform
// {error} body for failures raised outside handlers, such as the router's
// 405 for a non-POST on the generate endpoint. Unexpected errors are logged
// and returned as a generic 500.
func ErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "An internal error occurred. Please try again later."

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			switch status {
			case http.StatusMethodNotAllowed:
				message = "Method not allowed."
			case http.StatusNotFound:
				message = "The requested resource was not found."
			case http.StatusRequestEntityTooLarge:
				message = "Request body too large."
			default:
				if msg, ok := httpErr.Message.(string); ok && status < http.StatusInternalServerError {
					message = msg
				}
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("unhandled request error", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, models.ErrorResponse{Error: message})
	}
}
