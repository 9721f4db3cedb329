package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bookaio/backend/pkg/api/errors"
	"github.com/bookaio/backend/pkg/auth"
)

const identityKey = "identity"

// RequireAuth creates an Echo middleware that resolves the bearer token to
// a verified identity and stores it in the request context. Any
// verification failure yields the same generic 401.
func RequireAuth(verifier auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c)
			if !ok {
				return apierrors.Unauthorized(c)
			}

			identity, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return apierrors.Unauthorized(c)
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// BearerToken extracts the bearer token from the Authorization header
func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// IdentityFrom returns the identity stored by RequireAuth
func IdentityFrom(c echo.Context) (*auth.Identity, bool) {
	identity, ok := c.Get(identityKey).(*auth.Identity)
	return identity, ok
}
