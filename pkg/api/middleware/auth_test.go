package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookaio/backend/pkg/auth"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		token  string
		ok     bool
	}{
		"valid":           {header: "Bearer abc123", token: "abc123", ok: true},
		"case insensitiv": {header: "bearer abc123", token: "abc123", ok: true},
		"missing":         {header: "", ok: false},
		"no scheme":       {header: "abc123", ok: false},
		"wrong scheme":    {header: "Basic abc123", ok: false},
		"empty token":     {header: "Bearer ", ok: false},
	}

	e := echo.New()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			token, ok := BearerToken(c)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.token, token)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	const secret = "mw-secret"
	verifier := auth.NewJWTVerifier(secret, nil)

	e := echo.New()
	handler := RequireAuth(verifier)(func(c echo.Context) error {
		identity, ok := IdentityFrom(c)
		require.True(t, ok)
		return c.String(http.StatusOK, identity.UserID)
	})

	t.Run("valid token passes identity through", func(t *testing.T) {
		token, err := auth.GenerateJWT("user-9", "a@b.c", "abundance", secret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-9", rec.Body.String())
	})

	t.Run("missing header is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
