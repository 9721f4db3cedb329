package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookaio/backend/pkg/models"
)

func TestParseRequest_Valid(t *testing.T) {
	v := New(5000)

	req, err := v.ParseRequest([]byte(`{"type":"ebook","title":"Marketing 101","nombre_pages":12,"avec_image":true}`))
	require.NoError(t, err)

	assert.Equal(t, models.TypeEbook, req.Type)
	assert.Equal(t, "Marketing 101", req.Fields["title"])
	assert.Equal(t, "ebook", req.Fields["type"])
}

func TestParseRequest_MalformedJSON(t *testing.T) {
	v := New(5000)

	for _, body := range []string{"", "{", `"just a string"`, "[1,2,3]"} {
		_, err := v.ParseRequest([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedBody, "body: %s", body)
	}
}

func TestParseRequest_InvalidType(t *testing.T) {
	v := New(5000)

	for _, body := range []string{
		`{"title":"no type at all"}`,
		`{"type":"podcast"}`,
		`{"type":""}`,
	} {
		_, err := v.ParseRequest([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidType, "body: %s", body)
	}
}

func TestParseRequest_AllTypesAccepted(t *testing.T) {
	v := New(5000)

	for _, typ := range []string{"ebook", "cover", "mockup", "ad", "video"} {
		req, err := v.ParseRequest([]byte(`{"type":"` + typ + `"}`))
		require.NoError(t, err, typ)
		assert.Equal(t, models.GenerationType(typ), req.Type)
	}
}

func TestParseRequest_OversizedFieldNamed(t *testing.T) {
	v := New(100)

	body := `{"type":"cover","prompt":"` + strings.Repeat("a", 101) + `"}`
	_, err := v.ParseRequest([]byte(body))

	var tooLong *FieldTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, "prompt", tooLong.Field)
	assert.Contains(t, err.Error(), `"prompt"`)
}

func TestParseRequest_NestedOversizedField(t *testing.T) {
	v := New(100)

	body := `{"type":"ad","options":{"description":"` + strings.Repeat("b", 101) + `"}}`
	_, err := v.ParseRequest([]byte(body))

	var tooLong *FieldTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, "options.description", tooLong.Field)
}

func TestParseRequest_BoundaryLengthAllowed(t *testing.T) {
	v := New(100)

	body := `{"type":"video","description":"` + strings.Repeat("c", 100) + `"}`
	_, err := v.ParseRequest([]byte(body))
	assert.NoError(t, err)
}
