package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qoo-shop/shopclient/internal/cache"
	"github.com/qoo-shop/shopclient/internal/gateway"
	"github.com/qoo-shop/shopclient/internal/logging"
)

type stubLoginGateway struct {
	data *gateway.LoginData
	err  error
}

func (s *stubLoginGateway) Login(ctx context.Context, account, password string) (*gateway.LoginData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": exp.Unix(), "id": 1, "account": "u1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(":memory:")
	require.NoError(t, err)
	return store
}

func TestManager_Login_Success(t *testing.T) {
	t.Parallel()

	gw := &stubLoginGateway{data: &gateway.LoginData{
		Token:    signToken(t, time.Now().Add(15*time.Minute)),
		Account:  "u1",
		Username: "U",
		ImageURL: "/a.png",
		Identity: 1,
	}}
	store := newTestStore(t)
	m := NewManager(gw, store, logging.New("error", "text"))

	sess, err := m.Login(context.Background(), "u1", "p")
	require.NoError(t, err)

	assert.True(t, sess.Authenticated)
	assert.True(t, sess.Admin)
	assert.Equal(t, "u1", sess.Account)
	assert.Equal(t, "U", sess.Username)
	assert.Equal(t, "/a.png", sess.AvatarURL)
	assert.False(t, m.Expired())

	token, account, err := store.LoadCredential()
	require.NoError(t, err)
	assert.Equal(t, sess.Token, token)
	assert.Equal(t, "u1", account)
}

func TestManager_Login_NonAdminIdentity(t *testing.T) {
	t.Parallel()

	gw := &stubLoginGateway{data: &gateway.LoginData{
		Token:    signToken(t, time.Now().Add(time.Hour)),
		Account:  "u2",
		Name:     "plain",
		Identity: 0,
	}}
	m := NewManager(gw, newTestStore(t), logging.New("error", "text"))

	sess, err := m.Login(context.Background(), "u2", "p")
	require.NoError(t, err)
	assert.False(t, sess.Admin)
	assert.Equal(t, "plain", sess.Username)
}

func TestManager_Login_Rejected(t *testing.T) {
	t.Parallel()

	gw := &stubLoginGateway{err: &gateway.APIError{Code: 1, Message: "wrong account or password"}}
	m := NewManager(gw, newTestStore(t), logging.New("error", "text"))

	_, err := m.Login(context.Background(), "u1", "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.Contains(t, err.Error(), "wrong account or password")
	assert.False(t, m.Current().Authenticated)
}

func TestManager_Login_TransportError(t *testing.T) {
	t.Parallel()

	gw := &stubLoginGateway{err: gateway.ErrUnavailable}
	m := NewManager(gw, newTestStore(t), logging.New("error", "text"))

	_, err := m.Login(context.Background(), "u1", "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
}

func TestManager_Logout_ClearsEverything(t *testing.T) {
	t.Parallel()

	gw := &stubLoginGateway{data: &gateway.LoginData{
		Token:   signToken(t, time.Now().Add(time.Hour)),
		Account: "u1",
	}}
	store := newTestStore(t)
	m := NewManager(gw, store, logging.New("error", "text"))

	_, err := m.Login(context.Background(), "u1", "p")
	require.NoError(t, err)

	m.Logout()

	assert.False(t, m.Current().Authenticated)
	assert.True(t, m.Expired())
	token, account, err := store.LoadCredential()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, account)
}

func TestManager_ExpiredToken_ForcesLoggedOut(t *testing.T) {
	t.Parallel()

	gw := &stubLoginGateway{data: &gateway.LoginData{
		Token:   signToken(t, time.Now().Add(-time.Minute)),
		Account: "u1",
	}}
	m := NewManager(gw, newTestStore(t), logging.New("error", "text"))

	sess, err := m.Login(context.Background(), "u1", "p")
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)

	assert.True(t, m.Expired())
	assert.False(t, m.Current().Authenticated)
}

func TestManager_ExpiresWithin(t *testing.T) {
	t.Parallel()

	gw := &stubLoginGateway{data: &gateway.LoginData{
		Token:   signToken(t, time.Now().Add(2*time.Minute)),
		Account: "u1",
	}}
	m := NewManager(gw, newTestStore(t), logging.New("error", "text"))

	_, err := m.Login(context.Background(), "u1", "p")
	require.NoError(t, err)

	assert.True(t, m.ExpiresWithin(5*time.Minute))
	assert.False(t, m.ExpiresWithin(time.Minute))
}

func TestManager_RestoresPersistedSession(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.SaveCredential(signToken(t, time.Now().Add(time.Hour)), "u1"))

	m := NewManager(&stubLoginGateway{}, store, logging.New("error", "text"))

	cur := m.Current()
	assert.True(t, cur.Authenticated)
	assert.Equal(t, "u1", cur.Account)
}

func TestManager_DoesNotRestoreExpiredCredential(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.SaveCredential(signToken(t, time.Now().Add(-time.Hour)), "u1"))

	m := NewManager(&stubLoginGateway{}, store, logging.New("error", "text"))
	assert.False(t, m.Current().Authenticated)
}

func TestExpiryOf_DecodeFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "bearer only", token: "Bearer "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, expired(tt.token, 0))
		})
	}
}

func TestExpiryOf_StripsBearerPrefix(t *testing.T) {
	t.Parallel()

	token := "Bearer " + signToken(t, time.Now().Add(time.Hour))
	assert.False(t, expired(token, 0))
}
