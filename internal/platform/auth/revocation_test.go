package auth

import (
	"sync"
	"testing"
	"time"
)

func TestRevoke_and_IsRevoked(t *testing.T) {
	store := NewTokenRevocationStore(time.Hour)

	store.Revoke("token-abc-123", time.Now().Add(time.Hour))

	if !store.IsRevoked("token-abc-123", "acc-1", time.Now()) {
		t.Error("expected JTI to be revoked")
	}
	if store.IsRevoked("unknown-jti", "acc-1", time.Now()) {
		t.Error("expected unknown JTI to not be revoked")
	}
	if store.Count() != 1 {
		t.Errorf("expected count 1, got %d", store.Count())
	}
}

func TestRevoke_AlreadyExpiredIsIgnored(t *testing.T) {
	store := NewTokenRevocationStore(time.Hour)
	store.Revoke("old", time.Now().Add(-time.Minute))
	store.Revoke("", time.Now().Add(time.Hour))

	if store.Count() != 0 {
		t.Errorf("expected nothing stored, got %d", store.Count())
	}
}

func TestRevokeAccount_CutsOffEarlierTokens(t *testing.T) {
	store := NewTokenRevocationStore(time.Hour)
	store.RevokeAccount("acc-1")

	if !store.IsRevoked("jti-a", "acc-1", time.Now().Add(-time.Minute)) {
		t.Error("expected token issued before cutoff to be revoked")
	}
	if store.IsRevoked("jti-b", "acc-1", time.Now().Add(2*time.Second)) {
		t.Error("expected token issued after cutoff to be valid")
	}
	if store.IsRevoked("jti-c", "acc-2", time.Now().Add(-time.Minute)) {
		t.Error("expected other accounts to be unaffected")
	}
}

func TestRevokeAccount_SameSecondTokenIsRevoked(t *testing.T) {
	changedAt := time.Date(2026, 3, 2, 9, 15, 4, 700*int(time.Millisecond), time.UTC)
	store := NewTokenRevocationStore(time.Hour)
	store.now = func() time.Time { return changedAt }
	store.RevokeAccount("acc-1")

	// A token minted at 09:15:04.300 carries iat 09:15:04.
	if !store.IsRevoked("jti-a", "acc-1", changedAt.Truncate(time.Second)) {
		t.Error("expected token issued earlier in the same second to be revoked")
	}
	if store.IsRevoked("jti-b", "acc-1", changedAt.Truncate(time.Second).Add(time.Second)) {
		t.Error("expected token issued in the next second to be valid")
	}
}

func TestRevocationStore_Concurrent(t *testing.T) {
	store := NewTokenRevocationStore(time.Hour)
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jti := "jti-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
			store.Revoke(jti, exp)
			_ = store.IsRevoked(jti, "acc", time.Now())
		}(i)
	}
	wg.Wait()

	if store.Count() != 50 {
		t.Errorf("expected 50 revoked tokens, got %d", store.Count())
	}
}
