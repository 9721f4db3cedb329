package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookaio/backend/pkg/models"
)

// ErrUnauthenticated is the single error surfaced for any verification
// failure. Invalid signature, expired token and revoked session are
// deliberately indistinguishable to the caller.
var ErrUnauthenticated = errors.New("invalid or expired token")

// Identity is a verified caller identity
type Identity struct {
	UserID string
	Email  string
	Plan   models.Plan
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Plan   string `json:"plan"`
	jwt.RegisteredClaims
}

// Verifier resolves a bearer token to a verified identity
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// JWTVerifier verifies HS256-signed session tokens, optionally consulting
// a revocation blacklist.
type JWTVerifier struct {
	secret    string
	blacklist *TokenBlacklist
}

// NewJWTVerifier creates a verifier. The blacklist may be nil.
func NewJWTVerifier(secret string, blacklist *TokenBlacklist) *JWTVerifier {
	return &JWTVerifier{secret: secret, blacklist: blacklist}
}

// Verify validates the token and returns the caller's identity
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	claims, err := ValidateJWT(tokenString, v.secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if v.blacklist != nil {
		revoked, err := v.blacklist.IsBlacklisted(ctx, tokenString)
		if err != nil || revoked {
			return nil, ErrUnauthenticated
		}
	}

	return &Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Plan:   models.ParsePlan(claims.Plan),
	}, nil
}

// GenerateJWT generates a new JWT token
func GenerateJWT(userID, email, plan, secret string, expiration time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Plan:   plan,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
