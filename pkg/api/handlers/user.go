package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bookaio/backend/pkg/api/errors"
	"github.com/bookaio/backend/pkg/api/middleware"
	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/models"
	"github.com/bookaio/backend/pkg/quota"
)

// UsageReader reports quota statistics for a user
type UsageReader interface {
	Usage(ctx context.Context, userID string) (*models.UsageResponse, error)
}

// UserHandler serves the authenticated user's account endpoints
type UserHandler struct {
	usage UsageReader
	log   logger.Logger
}

// NewUserHandler creates a user handler
func NewUserHandler(usage UsageReader, log logger.Logger) *UserHandler {
	return &UserHandler{usage: usage, log: log}
}

// Usage handles GET /api/v1/usage
func (h *UserHandler) Usage(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return apierrors.Unauthorized(c)
	}

	usage, err := h.usage.Usage(c.Request().Context(), identity.UserID)
	if errors.Is(err, quota.ErrProfileNotFound) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "No usage profile found."})
	}
	if err != nil {
		h.log.Error("failed to read usage", "user_id", identity.UserID, "error", err)
		return apierrors.Internal(c)
	}

	return c.JSON(http.StatusOK, usage)
}
