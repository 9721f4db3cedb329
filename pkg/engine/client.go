// Package engine is the HTTP client for the external n8n generation
// workflows. The engine is a black box: it accepts a typed job and returns
// a file or JSON payload, or times out.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/models"
)

// ErrTimeout is returned when the upstream call exceeds its deadline
var ErrTimeout = errors.New("generation timed out")

// UpstreamError is returned for non-2xx upstream responses and transport
// failures. The upstream status is logged, never relayed to the client.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return "generation engine returned an error"
}

// endpointSuffixes maps each generation type to its webhook endpoint suffix
var endpointSuffixes = map[models.GenerationType]string{
	models.TypeEbook:  "",
	models.TypeCover:  "-cover",
	models.TypeMockup: "-mockup",
	models.TypeAd:     "-ad",
	models.TypeVideo:  "-video",
}

// Client proxies validated generation requests to the engine
type Client struct {
	baseURL string
	secret  string
	timeout time.Duration
	http    *http.Client
	log     logger.Logger
}

// New creates an engine client. The shared secret is held server-side only.
func New(baseURL, secret string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		timeout: timeout,
		http:    &http.Client{},
		log:     log,
	}
}

// Generate forwards a quota-cleared request to the engine and relays the
// raw response. The caller's identity is attached as request metadata; the
// response body and content type pass through untouched.
func (c *Client) Generate(ctx context.Context, req *models.GenerateRequest, userID string) (*models.GenerationResult, error) {
	payload := make(map[string]any, len(req.Fields)+1)
	for k, v := range req.Fields {
		payload[k] = v
	}
	payload["user_id"] = userID

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpointSuffixes[req.Type], bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-BookAIO-Secret", c.secret)
	httpReq.Header.Set("X-User-Id", userID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.log.Error("upstream call timed out", "type", req.Type, "duration", time.Since(start))
			return nil, ErrTimeout
		}
		c.log.Error("upstream call failed", "type", req.Type, "error", err)
		return nil, &UpstreamError{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("upstream returned non-2xx", "type", req.Type, "status", resp.StatusCode)
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		c.log.Error("failed reading upstream response", "type", req.Type, "error", err)
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	c.log.Info("generation completed", "type", req.Type, "content_type", contentType, "bytes", len(raw), "duration", time.Since(start))

	return &models.GenerationResult{
		ContentType: contentType,
		Body:        raw,
	}, nil
}
