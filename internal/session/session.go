package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/qoo-shop/shopclient/internal/gateway"
)

var ErrAuth = errors.New("authentication failed")

// adminIdentity is the identity value the login endpoint assigns to
// administrator accounts.
const adminIdentity = 1

type Session struct {
	Token         string
	Account       string
	Username      string
	AvatarURL     string
	Authenticated bool
	Admin         bool
}

type CredentialStore interface {
	SaveCredential(token, account string) error
	LoadCredential() (token, account string, err error)
	ClearCredential() error
}

type LoginGateway interface {
	Login(ctx context.Context, account, password string) (*gateway.LoginData, error)
}

// Manager owns the authentication token and its lifecycle. The persisted
// credential is loaded once at construction and written back on every login,
// so a restart resumes the session until the token expires.
type Manager struct {
	mu    sync.Mutex
	gw    LoginGateway
	creds CredentialStore
	log   *slog.Logger
	cur   Session
}

func NewManager(gw LoginGateway, creds CredentialStore, log *slog.Logger) *Manager {
	m := &Manager{gw: gw, creds: creds, log: log}

	token, account, err := creds.LoadCredential()
	if err != nil {
		log.Warn("load persisted credential", "error", err)
		return m
	}
	if token == "" {
		return m
	}
	if expired(token, 0) {
		log.Debug("persisted credential expired, starting logged out")
		return m
	}
	// Only token and account survive a restart; display name and avatar
	// come back on the next login.
	m.cur = Session{Token: token, Account: account, Authenticated: true}
	return m
}

func (m *Manager) Login(ctx context.Context, account, password string) (Session, error) {
	data, err := m.gw.Login(ctx, account, password)
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			return Session{}, fmt.Errorf("login rejected: %s: %w", apiErr.Message, ErrAuth)
		}
		return Session{}, fmt.Errorf("login: %w: %w", err, ErrAuth)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cur = Session{
		Token:         data.Token,
		Account:       data.Account,
		Username:      data.DisplayName(),
		AvatarURL:     data.ImageURL,
		Authenticated: true,
		Admin:         data.Identity == adminIdentity,
	}
	if err := m.creds.SaveCredential(data.Token, data.Account); err != nil {
		m.log.Warn("persist credential", "error", err)
	}
	m.log.Info("logged in", "account", data.Account, "admin", m.cur.Admin)
	return m.cur, nil
}

// Logout resets the session unconditionally and never fails.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cur = Session{}
	if err := m.creds.ClearCredential(); err != nil {
		m.log.Warn("clear persisted credential", "error", err)
	}
	m.log.Info("logged out")
}

// Current recomputes Authenticated before returning, so an expired token
// reads as logged out from the first check after expiry.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Authenticated && expired(m.cur.Token, 0) {
		m.cur.Authenticated = false
	}
	return m.cur
}

// Expired reports whether the current credential is past its expiry. An
// empty or undecodable credential counts as expired, failing toward
// re-authentication.
func (m *Manager) Expired() bool {
	m.mu.Lock()
	token := m.cur.Token
	m.mu.Unlock()
	return expired(token, 0)
}

// ExpiresWithin reports whether the credential expires in less than window.
func (m *Manager) ExpiresWithin(window time.Duration) bool {
	m.mu.Lock()
	token := m.cur.Token
	m.mu.Unlock()
	return expired(token, window)
}

func expired(token string, window time.Duration) bool {
	exp, err := expiryOf(token)
	if err != nil {
		return true
	}
	return time.Until(exp) < window
}
