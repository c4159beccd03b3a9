// Package session owns the authentication state: the bearer token, the
// cached user profile, and the login/register/logout/refresh operations over
// the auth endpoints. Whether the user counts as logged in is derived from
// token presence alone; the profile may lag behind during refresh.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dnovikovs/recordkeeper/internal/client/api"
	"github.com/dnovikovs/recordkeeper/internal/client/models"
	"github.com/dnovikovs/recordkeeper/internal/logging"
	"github.com/dnovikovs/recordkeeper/internal/validate"
)

const (
	landingPath = "/"
	loginPath   = "/auth/login"
)

// Navigator performs application navigation after auth transitions.
type Navigator interface {
	Navigate(path string)
}

// Manager is the single access point for session state.
type Manager struct {
	mu    sync.Mutex
	token string
	user  *models.User

	api   api.Client
	store Store
	nav   Navigator
	log   logging.Logger
}

// NewManager builds a Manager and restores the persisted token. A restored
// JWT whose exp claim is already past is discarded without a server call.
func NewManager(ctx context.Context, client api.Client, store Store, nav Navigator, log logging.Logger) *Manager {
	m := &Manager{api: client, store: store, nav: nav, log: log}

	if store != nil {
		token, err := store.LoadToken(ctx)
		if err != nil {
			log.Warn(ctx, "restoring session failed", "err", err)
		} else if token != "" {
			if tokenExpired(token) {
				log.Info(ctx, "stored token expired, discarding")
				if err := store.DeleteToken(ctx); err != nil {
					log.Warn(ctx, "deleting expired token failed", "err", err)
				}
			} else {
				m.token = token
			}
		}
	}

	return m
}

// tokenExpired peeks at the JWT exp claim without verifying the signature;
// verification is the server's job. Opaque or claimless tokens are kept and
// left for the server to judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// IsLoggedIn reports whether a token is present. Cheap: it is consulted on
// every navigation.
func (m *Manager) IsLoggedIn() bool {
	return m.Token() != ""
}

// User returns the cached profile, or nil when it has not been fetched.
func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login authenticates and, on success, stores the session and navigates to
// the landing page. Validation failures and request errors are returned to
// the caller; state stays anonymous and no navigation happens.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) error {
	if err := validate.Struct(creds); err != nil {
		return err
	}

	var res authResponse
	if err := m.api.Post(ctx, "/auth/login", creds, &res); err != nil {
		return err
	}

	m.setSession(ctx, res.Token, &res.User)
	m.nav.Navigate(landingPath)
	return nil
}

// Register creates an account; success behaves exactly like a login.
func (m *Manager) Register(ctx context.Context, reg models.Registration) error {
	if err := validate.Struct(reg); err != nil {
		return err
	}

	var res authResponse
	if err := m.api.Post(ctx, "/auth/register", reg, &res); err != nil {
		return err
	}

	m.setSession(ctx, res.Token, &res.User)
	m.nav.Navigate(landingPath)
	return nil
}

// Logout notifies the server best-effort, then always clears local state and
// navigates to the login page. The local session must be clearable even when
// the server is down.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		m.log.Warn(ctx, "remote logout failed", "err", err)
	}

	m.clearSession(ctx)
	m.nav.Navigate(loginPath)
}

// FetchUser replaces the cached profile from GET /auth/me. Any failure,
// transport or envelope, clears the session: the token is presumed invalid.
func (m *Manager) FetchUser(ctx context.Context) error {
	if !m.IsLoggedIn() {
		return nil
	}

	var u models.User
	if err := m.api.Get(ctx, "/auth/me", nil, &u); err != nil {
		m.log.Warn(ctx, "fetching user failed, clearing session", "err", err)
		m.clearSession(ctx)
		return err
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return nil
}

// RefreshToken swaps the token for a fresh one. On failure the whole session
// is logged out. Returns whether the refresh succeeded.
func (m *Manager) RefreshToken(ctx context.Context) bool {
	var res struct {
		Token string `json:"token"`
	}
	if err := m.api.Post(ctx, "/auth/refresh", nil, &res); err != nil {
		m.log.Warn(ctx, "token refresh failed", "err", err)
		m.Logout(ctx)
		return false
	}

	m.mu.Lock()
	m.token = res.Token
	m.mu.Unlock()
	m.persistToken(ctx, res.Token)
	return true
}

// CheckAuth reconciles local token presence against the server. Idempotent
// and safe to call before every navigation: errors are swallowed (FetchUser
// already clears an invalid session) so a dead server cannot break routing.
func (m *Manager) CheckAuth(ctx context.Context) {
	m.mu.Lock()
	needsFetch := m.token != "" && m.user == nil
	m.mu.Unlock()

	if needsFetch {
		_ = m.FetchUser(ctx)
	}
}

// Preferences returns the stored device preferences.
func (m *Manager) Preferences(ctx context.Context) (models.Preferences, error) {
	if m.store == nil {
		return models.DefaultPreferences(), nil
	}
	return m.store.Preferences(ctx)
}

// UpdatePreferences merges non-empty fields of patch into the stored
// preferences and persists the result.
func (m *Manager) UpdatePreferences(ctx context.Context, patch models.Preferences) (models.Preferences, error) {
	prefs, err := m.Preferences(ctx)
	if err != nil {
		return models.Preferences{}, err
	}

	if patch.Theme != "" {
		prefs.Theme = patch.Theme
	}
	if patch.Language != "" {
		prefs.Language = patch.Language
	}
	if patch.Currency != "" {
		prefs.Currency = patch.Currency
	}

	if m.store != nil {
		if err := m.store.SavePreferences(ctx, prefs); err != nil {
			return models.Preferences{}, err
		}
	}
	return prefs, nil
}

func (m *Manager) setSession(ctx context.Context, token string, user *models.User) {
	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()
	m.persistToken(ctx, token)
}

func (m *Manager) clearSession(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.DeleteToken(ctx); err != nil {
			m.log.Warn(ctx, "deleting stored token failed", "err", err)
		}
	}
}

func (m *Manager) persistToken(ctx context.Context, token string) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveToken(ctx, token); err != nil {
		m.log.Warn(ctx, "persisting token failed", "err", err)
	}
}
