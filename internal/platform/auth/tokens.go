package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mch/mch/pkg/permission"
)

// Issuer signs login tokens with HS256.
type Issuer struct {
	issuer string
	key    []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(issuer string, key []byte, ttl time.Duration) *Issuer {
	return &Issuer{issuer: issuer, key: key, ttl: ttl, now: time.Now}
}

// IssuedToken is a signed token and the claims it carries.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// Issue signs a token for the account. Permissions are derived from the
// user type at issue time.
func (i *Issuer) Issue(accountID, username, userType string) (*IssuedToken, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	jti := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    i.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username:    username,
		UserType:    userType,
		Permissions: permission.Strings(permission.ForUserType(userType)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &IssuedToken{Token: signed, TokenID: jti, ExpiresAt: exp}, nil
}
