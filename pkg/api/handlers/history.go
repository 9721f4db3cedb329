package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/bookaio/backend/pkg/api/errors"
	"github.com/bookaio/backend/pkg/api/middleware"
	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/models"
)

// HistoryService reads and writes generation log records
type HistoryService interface {
	Record(ctx context.Context, userID string, typ models.GenerationType, title, url string) (*models.HistoryItem, error)
	List(ctx context.Context, userID string) ([]models.HistoryItem, error)
}

// RecordHistoryRequest is the body of POST /api/v1/history. The client
// reports a finished generation after uploading the asset to storage.
type RecordHistoryRequest struct {
	Type  string `json:"type" validate:"required,oneof=ebook cover mockup ad video"`
	Title string `json:"title" validate:"required,max=500"`
	URL   string `json:"url" validate:"required,url,max=2000"`
}

// HistoryHandler serves the generation history endpoints
type HistoryHandler struct {
	history  HistoryService
	validate *validator.Validate
	log      logger.Logger
}

// NewHistoryHandler creates a history handler
func NewHistoryHandler(history HistoryService, log logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		history:  history,
		validate: validator.New(),
		log:      log,
	}
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return apierrors.Unauthorized(c)
	}

	items, err := h.history.List(c.Request().Context(), identity.UserID)
	if err != nil {
		h.log.Error("failed to list history", "user_id", identity.UserID, "error", err)
		return apierrors.Internal(c)
	}

	return c.JSON(http.StatusOK, items)
}

// Record handles POST /api/v1/history
func (h *HistoryHandler) Record(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return apierrors.Unauthorized(c)
	}

	var req RecordHistoryRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid JSON request body.")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apierrors.BadRequest(c, "Invalid history entry.")
	}

	item, err := h.history.Record(c.Request().Context(), identity.UserID, models.GenerationType(req.Type), req.Title, req.URL)
	if err != nil {
		h.log.Error("failed to record history", "user_id", identity.UserID, "error", err)
		return apierrors.Internal(c)
	}

	return c.JSON(http.StatusCreated, item)
}
