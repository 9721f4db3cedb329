package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookaio/backend/pkg/api/middleware"
	"github.com/bookaio/backend/pkg/auth"
	"github.com/bookaio/backend/pkg/logger"
	"github.com/bookaio/backend/pkg/models"
)

type fakeHistory struct {
	items    []models.HistoryItem
	recorded []models.HistoryItem
}

func (f *fakeHistory) Record(_ context.Context, userID string, typ models.GenerationType, title, url string) (*models.HistoryItem, error) {
	item := models.HistoryItem{
		ID:        "generated-id",
		Type:      string(typ),
		Title:     title,
		URL:       url,
		Timestamp: time.Now().UnixMilli(),
	}
	f.recorded = append(f.recorded, item)
	return &item, nil
}

func (f *fakeHistory) List(context.Context, string) ([]models.HistoryItem, error) {
	return f.items, nil
}

func newHistoryEcho(fh *fakeHistory) *echo.Echo {
	e := echo.New()
	h := NewHistoryHandler(fh, logger.New("error", "text"))
	mw := middleware.RequireAuth(auth.NewJWTVerifier(gatewaySecret, nil))
	e.GET("/api/v1/history", h.List, mw)
	e.POST("/api/v1/history", h.Record, mw)
	return e
}

func TestHistory_List(t *testing.T) {
	fh := &fakeHistory{items: []models.HistoryItem{
		{ID: "1", Type: "ebook", Title: "My Book", URL: "https://cdn.bookaio.app/1.pdf"},
		{ID: "2", Type: "cover", Title: "My Cover", URL: "https://cdn.bookaio.app/2.png"},
	}}
	e := newHistoryEcho(fh)

	rec := authedRequest(t, e, http.MethodGet, "/api/v1/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.HistoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 2)
	assert.Equal(t, "My Book", items[0].Title)
}

func TestHistory_Record(t *testing.T) {
	fh := &fakeHistory{}
	e := newHistoryEcho(fh)

	body := `{"type":"mockup","title":"Desk mockup","url":"https://cdn.bookaio.app/3.png"}`
	rec := authedRequest(t, e, http.MethodPost, "/api/v1/history", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, fh.recorded, 1)
	assert.Equal(t, "mockup", fh.recorded[0].Type)
	assert.Equal(t, "Desk mockup", fh.recorded[0].Title)
}

func TestHistory_RecordRejectsInvalidBody(t *testing.T) {
	fh := &fakeHistory{}
	e := newHistoryEcho(fh)

	for name, body := range map[string]string{
		"bad type":    `{"type":"podcast","title":"x","url":"https://a.b/c"}`,
		"missing url": `{"type":"ebook","title":"x"}`,
		"not a url":   `{"type":"ebook","title":"x","url":"nope"}`,
		"broken json": `{"type":`,
	} {
		rec := authedRequest(t, e, http.MethodPost, "/api/v1/history", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.Empty(t, fh.recorded)
}
