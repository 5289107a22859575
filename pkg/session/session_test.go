package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mch/mch/pkg/client"
	"github.com/mch/mch/pkg/permission"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "acc-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func midwife() client.Account {
	return client.Account{ID: "acc-1", Username: "esi", UserType: permission.Midwife}
}

func TestManager_LoginDerivesPermissions(t *testing.T) {
	m, err := NewManager(NewMemoryStore())
	require.NoError(t, err)
	assert.Nil(t, m.Current())

	s, err := m.Login(midwife(), "tok")
	require.NoError(t, err)
	assert.True(t, s.Can(permission.PatientsWrite))
	assert.False(t, s.Can(permission.AccountsManage))
	assert.Equal(t, "tok", m.Token())
}

func TestManager_RefreshRestoresFromStore(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	m1, err := NewManager(store)
	require.NoError(t, err)
	_, err = m1.Login(midwife(), "tok")
	require.NoError(t, err)

	m2, err := NewManager(store)
	require.NoError(t, err)
	cur := m2.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "esi", cur.Account.Username)
	assert.True(t, cur.Can(permission.AntenatalRead))
}

func TestManager_LogoutRecordsReason(t *testing.T) {
	store := NewMemoryStore()
	m, err := NewManager(store)
	require.NoError(t, err)
	_, err = m.Login(midwife(), "tok")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ReasonManual, "bye"))
	assert.Nil(t, m.Current())
	assert.Empty(t, m.Token())

	reason, msg, err := m.LastLogout()
	require.NoError(t, err)
	assert.Equal(t, ReasonManual, reason)
	assert.Equal(t, "bye", msg)

	_, err = m.Login(midwife(), "tok2")
	require.NoError(t, err)
	reason, _, err = m.LastLogout()
	require.NoError(t, err)
	assert.Empty(t, reason)
}

func TestManager_CheckIdleTimeout(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m, err := NewManager(NewMemoryStore(), WithIdleTimeout(15*time.Minute), WithClock(clock.Now))
	require.NoError(t, err)
	_, err = m.Login(midwife(), "opaque")
	require.NoError(t, err)

	reason, err := m.Check(clock.t.Add(10 * time.Minute))
	require.NoError(t, err)
	assert.Empty(t, reason)

	clock.t = clock.t.Add(10 * time.Minute)
	require.NoError(t, m.Touch())

	reason, err = m.Check(clock.t.Add(14 * time.Minute))
	require.NoError(t, err)
	assert.Empty(t, reason)

	reason, err = m.Check(clock.t.Add(15 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ReasonIdle, reason)
	assert.Nil(t, m.Current())

	reason, err = m.Check(clock.t.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, reason)
}

func TestManager_CheckTokenExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m, err := NewManager(NewMemoryStore(), WithIdleTimeout(0), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	_, err = m.Login(midwife(), signedToken(t, now.Add(time.Hour)))
	require.NoError(t, err)

	reason, err := m.Check(now.Add(59 * time.Minute))
	require.NoError(t, err)
	assert.Empty(t, reason)

	reason, err = m.Check(now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, ReasonExpired, reason)

	got, msg, err := m.LastLogout()
	require.NoError(t, err)
	assert.Equal(t, ReasonExpired, got)
	assert.Contains(t, msg, "expired")
}

func TestManager_TouchWithoutSession(t *testing.T) {
	m, err := NewManager(NewMemoryStore())
	require.NoError(t, err)
	assert.ErrorIs(t, m.Touch(), ErrNoSession)
}

func TestManager_Invalidate(t *testing.T) {
	m, err := NewManager(NewMemoryStore())
	require.NoError(t, err)
	_, err = m.Login(midwife(), "tok")
	require.NoError(t, err)

	require.NoError(t, m.Invalidate())
	reason, _, err := m.LastLogout()
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalid, reason)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "nope", "session.json")).Load()
	require.NoError(t, err)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Token)
}

func TestManager_SetIdleTimeoutPersists(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	clock := &fakeClock{t: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)}
	m, err := NewManager(store, WithClock(clock.Now))
	require.NoError(t, err)
	assert.Equal(t, DefaultIdleTimeout, m.IdleTimeout())

	_, err = m.Login(midwife(), "tok")
	require.NoError(t, err)
	applied, err := m.SetIdleTimeout(10 * time.Minute)
	require.NoError(t, err)
	assert.True(t, applied)

	// A later run picks the server's period up from the store.
	m2, err := NewManager(store, WithClock(clock.Now))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, m2.IdleTimeout())

	clock.t = clock.t.Add(11 * time.Minute)
	reason, err := m2.Check(clock.Now())
	require.NoError(t, err)
	assert.Equal(t, ReasonIdle, reason)
}

func TestManager_PinnedIdleTimeoutWins(t *testing.T) {
	store := NewMemoryStore()
	m, err := NewManager(store, WithIdleTimeout(time.Hour))
	require.NoError(t, err)
	_, err = m.Login(midwife(), "tok")
	require.NoError(t, err)

	applied, err := m.SetIdleTimeout(5 * time.Minute)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, time.Hour, m.IdleTimeout())

	applied, err = mustManager(t, store).SetIdleTimeout(0)
	require.NoError(t, err)
	assert.False(t, applied, "zero is not a usable server setting")
}

func mustManager(t *testing.T, store Store) *Manager {
	t.Helper()
	m, err := NewManager(store)
	require.NoError(t, err)
	return m
}
