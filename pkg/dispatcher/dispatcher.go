// Package dispatcher is the client-side caller of the generation gateway.
// It classifies failures into retryable and terminal conditions, applies a
// fixed backoff schedule to the transient ones, and hands the UI a uniform
// result: binary payload, JSON document, or nothing.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bookaio/backend/pkg/logger"
)

var (
	// ErrNoSession means no token was available; logging in is the only fix
	ErrNoSession = errors.New("no active session")
	// ErrUnavailable means every attempt failed on a transient condition
	ErrUnavailable = errors.New("generation service unavailable")
)

// RequestError is a definitive gateway rejection. Retrying cannot help
// until external state changes: new credentials, a corrected request, a
// plan upgrade, or time passing.
type RequestError struct {
	Status        int
	Message       string
	QuotaExceeded bool
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request rejected with status %d", e.Status)
}

// ResultKind discriminates the payload the gateway relayed
type ResultKind int

const (
	KindBlob ResultKind = iota
	KindJSON
)

// Result is a successful generation outcome
type Result struct {
	Kind        ResultKind
	ContentType string
	Blob        []byte
	JSON        map[string]any
}

// DefaultBackoff is the delay before each retry
var DefaultBackoff = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}

// Dispatcher invokes the gateway's generate endpoint
type Dispatcher struct {
	endpoint string
	log      logger.Logger

	// HTTPClient and Backoff may be replaced before first use
	HTTPClient *http.Client
	Backoff    []time.Duration
}

// New creates a dispatcher for the given generate endpoint URL
func New(endpoint string, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		endpoint:   endpoint,
		log:        log,
		HTTPClient: &http.Client{},
		Backoff:    DefaultBackoff,
	}
}

// Send submits a generation payload, retrying transient failures on the
// backoff schedule. It returns a nil result with ErrUnavailable once every
// attempt is spent; terminal rejections return immediately.
func (d *Dispatcher) Send(ctx context.Context, token string, payload map[string]any) (*Result, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	attempts := len(d.Backoff) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := d.Backoff[attempt-1]
			d.log.Info("retrying generation request", "attempt", attempt+1, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := d.attempt(ctx, token, body)
		if err == nil {
			return result, nil
		}

		var terminal *RequestError
		if errors.As(err, &terminal) {
			return nil, terminal
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		d.log.Warn("generation attempt failed", "attempt", attempt+1, "error", err)
	}

	return nil, ErrUnavailable
}

// attempt performs one gateway call. Terminal rejections come back as
// *RequestError; every other failure is transient.
func (d *Dispatcher) attempt(ctx context.Context, token string, body []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return parseResult(resp.Header.Get("Content-Type"), raw), nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("server failure: status %d", resp.StatusCode)
	default:
		return nil, terminalError(resp.StatusCode, raw)
	}
}

func terminalError(status int, raw []byte) *RequestError {
	var body struct {
		Error         string `json:"error"`
		QuotaExceeded bool   `json:"quota_exceeded"`
	}
	_ = json.Unmarshal(raw, &body)

	return &RequestError{
		Status:        status,
		Message:       body.Error,
		QuotaExceeded: body.QuotaExceeded,
	}
}

func parseResult(contentType string, raw []byte) *Result {
	if isBinary(contentType) {
		return &Result{Kind: KindBlob, ContentType: contentType, Blob: raw}
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Some workflows reply 200 with an empty or non-JSON body
		doc = map[string]any{"status": "success"}
	}
	return &Result{Kind: KindJSON, ContentType: contentType, JSON: doc}
}

func isBinary(contentType string) bool {
	return strings.Contains(contentType, "application/pdf") ||
		strings.Contains(contentType, "image/") ||
		strings.Contains(contentType, "video/mp4") ||
		strings.Contains(contentType, "application/octet-stream")
}
