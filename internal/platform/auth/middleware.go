package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/mch/mch/pkg/permission"
)

type contextKey string

const IdentityKey contextKey = "identity"

// Claims are the custom JWT claims issued at login.
type Claims struct {
	jwt.RegisteredClaims
	Username    string   `json:"username"`
	UserType    string   `json:"user_type"`
	Permissions []string `json:"permissions"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	AccountID   string
	Username    string
	UserType    string
	Permissions permission.Set
	TokenID     string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type JWTConfig struct {
	Issuer      string
	SigningKey  []byte
	Revocations *TokenRevocationStore
	// Skipper bypasses authentication when it returns true.
	Skipper func(c echo.Context) bool
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return cfg.SigningKey, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := parser.ParseWithClaims(parts[1], claims, keyFunc)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			id := identityFromClaims(claims)
			if cfg.Revocations != nil && cfg.Revocations.IsRevoked(id.TokenID, id.AccountID, id.IssuedAt) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
			}

			c.Set("account_id", id.AccountID)
			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))

			return next(c)
		}
	}
}

func identityFromClaims(claims *Claims) *Identity {
	id := &Identity{
		AccountID:   claims.Subject,
		Username:    claims.Username,
		UserType:    claims.UserType,
		Permissions: permission.FromStrings(claims.Permissions),
		TokenID:     claims.ID,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(IdentityKey).(*Identity)
	return id
}

func AccountIDFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.AccountID
	}
	return ""
}

func PermissionsFromContext(ctx context.Context) permission.Set {
	if id := IdentityFromContext(ctx); id != nil {
		return id.Permissions
	}
	return nil
}
