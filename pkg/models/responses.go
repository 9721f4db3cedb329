package models

// ErrorResponse is the uniform error body returned by every failure path
type ErrorResponse struct {
	Error         string `json:"error"`
	QuotaExceeded bool   `json:"quota_exceeded,omitempty"`
}

// UsageResponse represents usage statistics for the authenticated user
type UsageResponse struct {
	UsageCount int    `json:"usage_count"`
	UsageLimit int    `json:"usage_limit"`
	Remaining  int    `json:"remaining"`
	ResetAt    string `json:"reset_at"`
	Plan       string `json:"plan"`
}

// HistoryItem is one entry in a user's generation history
type HistoryItem struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
	ExpiresAt int64  `json:"expiresAt"`
}
