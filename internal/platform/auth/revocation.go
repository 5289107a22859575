package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	revocationCleanupInterval = 5 * time.Minute
	accountCutoffTTL          = 7 * 24 * time.Hour
)

// TokenRevocationStore tracks revoked tokens until they would have expired
// anyway. Tokens are revoked one at a time by JTI (logout) or all at once
// per account (password change, deactivation). Entries expire from the
// underlying cache on their own.
type TokenRevocationStore struct {
	tokens   *cache.Cache
	accounts *cache.Cache
	// cutoffTTL bounds how long an account cutoff is kept; it should be at
	// least the token lifetime.
	cutoffTTL time.Duration
	now       func() time.Time
}

func NewTokenRevocationStore(tokenTTL time.Duration) *TokenRevocationStore {
	cutoffTTL := accountCutoffTTL
	if tokenTTL > 0 {
		cutoffTTL = tokenTTL
	}
	return &TokenRevocationStore{
		tokens:    cache.New(cache.NoExpiration, revocationCleanupInterval),
		accounts:  cache.New(cache.NoExpiration, revocationCleanupInterval),
		cutoffTTL: cutoffTTL,
		now:       time.Now,
	}
}

func tokenKey(jti string) string { return "jti:" + jti }

func accountKey(id string) string { return "account:" + id }

// Revoke adds a token's JTI to the revocation list until expiresAt.
func (s *TokenRevocationStore) Revoke(jti string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return
	}
	s.tokens.Set(tokenKey(jti), expiresAt, ttl)
}

// RevokeAccount rejects every token for accountID issued up to and including
// the current second. iat has one-second resolution, so a token issued later
// in that same second is rejected as well and the user signs in again.
func (s *TokenRevocationStore) RevokeAccount(accountID string) {
	s.accounts.Set(accountKey(accountID), s.now().Truncate(time.Second), s.cutoffTTL)
}

// IsRevoked reports whether the token with jti, issued to accountID at
// issuedAt, has been revoked.
func (s *TokenRevocationStore) IsRevoked(jti, accountID string, issuedAt time.Time) bool {
	if _, ok := s.tokens.Get(tokenKey(jti)); ok {
		return true
	}
	if v, ok := s.accounts.Get(accountKey(accountID)); ok {
		return !issuedAt.After(v.(time.Time))
	}
	return false
}

// Count returns the number of individually revoked tokens.
func (s *TokenRevocationStore) Count() int {
	return s.tokens.ItemCount()
}
