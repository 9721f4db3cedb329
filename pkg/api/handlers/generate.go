package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bookaio/backend/pkg/api/errors"
	"github.com/bookaio/backend/pkg/api/middleware"
	"github.com/bookaio/backend/pkg/auth"
	"github.com/bookaio/backend/pkg/engine"
	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/metrics"
	"github.com/bookaio/backend/pkg/models"
	"github.com/bookaio/backend/pkg/quota"
	"github.com/bookaio/backend/pkg/ratelimit"
	"github.com/bookaio/backend/pkg/validate"
)

// QuotaService is the quota interaction the gateway needs
type QuotaService interface {
	Check(ctx context.Context, userID string) error
	Increment(ctx context.Context, userID string) error
}

// Engine proxies a validated request to the generation engine
type Engine interface {
	Generate(ctx context.Context, req *models.GenerateRequest, userID string) (*models.GenerationResult, error)
}

// GenerateHandler is the gateway between the studio UI and the generation
// engine. Each request runs a strict pipeline; every stage is a terminal
// failure point and no later stage executes after a failure:
//
//	authenticate → rate limit → validate body → quota check (metered types)
//	→ proxy upstream → quota increment (metered types) → respond
type GenerateHandler struct {
	verifier  auth.Verifier
	limiter   ratelimit.Limiter
	validator *validate.Validator
	quota     QuotaService
	engine    Engine
	metrics   *metrics.Metrics
	log       logger.Logger
}

// NewGenerateHandler creates the gateway handler
func NewGenerateHandler(
	verifier auth.Verifier,
	limiter ratelimit.Limiter,
	validator *validate.Validator,
	quotaService QuotaService,
	eng Engine,
	m *metrics.Metrics,
	log logger.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		verifier:  verifier,
		limiter:   limiter,
		validator: validator,
		quota:     quotaService,
		engine:    eng,
		metrics:   m,
		log:       log,
	}
}

// Generate handles POST /api/v1/generate
func (h *GenerateHandler) Generate(c echo.Context) error {
	ctx := c.Request().Context()

	// Authenticate before any counter is touched; unauthenticated traffic
	// must not consume rate limit or quota.
	token, ok := middleware.BearerToken(c)
	if !ok {
		return apierrors.Unauthorized(c)
	}

	identity, err := h.verifier.Verify(ctx, token)
	if err != nil {
		return apierrors.Unauthorized(c)
	}

	// Rate limit. A limiter backend failure admits the request: the durable
	// quota check still stands and a Redis blip should not block paying
	// users.
	decision, err := h.limiter.Allow(ctx, identity.UserID)
	if err != nil {
		h.log.Warn("rate limiter unavailable, admitting request", "user_id", identity.UserID, "error", err)
		decision = ratelimit.Decision{Allowed: true}
	}
	if !decision.Allowed {
		h.metrics.RateLimitRejected.Inc()
		return apierrors.RateLimited(c, decision.RetryAfter)
	}

	// Validate the body
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apierrors.BadRequest(c, "Unable to read request body.")
	}

	req, err := h.validator.ParseRequest(body)
	if err != nil {
		var tooLong *validate.FieldTooLongError
		switch {
		case errors.As(err, &tooLong):
			return apierrors.BadRequest(c, tooLong.Error())
		case errors.Is(err, validate.ErrInvalidType):
			return apierrors.BadRequest(c, "Invalid generation type.")
		default:
			return apierrors.BadRequest(c, "Invalid JSON request body.")
		}
	}

	// Quota check, metered types only
	if req.Type.Metered() {
		if err := h.quota.Check(ctx, identity.UserID); err != nil {
			var exceeded *quota.QuotaExceededError
			if errors.As(err, &exceeded) {
				h.metrics.QuotaRejected.Inc()
				return apierrors.QuotaExceeded(c, exceeded.Error()+" Please upgrade your plan.")
			}
			h.log.Error("quota check failed", "user_id", identity.UserID, "error", err)
			return apierrors.Internal(c)
		}
	}

	// Proxy to the engine
	start := time.Now()
	result, err := h.engine.Generate(ctx, req, identity.UserID)
	elapsed := time.Since(start)
	if err != nil {
		var upstream *engine.UpstreamError
		switch {
		case errors.Is(err, engine.ErrTimeout):
			h.metrics.RecordGeneration(string(req.Type), "timeout", elapsed)
			return apierrors.UpstreamTimeout(c)
		case errors.As(err, &upstream):
			h.metrics.RecordGeneration(string(req.Type), "upstream_error", elapsed)
			return apierrors.UpstreamFailure(c)
		default:
			h.log.Error("generation failed", "user_id", identity.UserID, "type", req.Type, "error", err)
			h.metrics.RecordGeneration(string(req.Type), "internal_error", elapsed)
			return apierrors.Internal(c)
		}
	}

	// Debit quota only after confirmed delivery from the engine. An
	// increment failure is logged but does not fail the request; the user
	// already has their result.
	if req.Type.Metered() {
		if err := h.quota.Increment(ctx, identity.UserID); err != nil {
			h.log.Error("quota increment failed after successful generation", "user_id", identity.UserID, "error", err)
		}
	}

	h.metrics.RecordGeneration(string(req.Type), "success", elapsed)

	return c.Blob(http.StatusOK, result.ContentType, result.Body)
}
