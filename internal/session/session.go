// Package session owns the persisted authenticated identity. Every consumer
// goes through the Manager; nothing else reads or writes the auth keys.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Gerri254/chainctl/internal/store"
	"github.com/Gerri254/chainctl/pkg/models"
)

// The three persisted keys, unchanged from the browser apps' local storage.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

// Manager loads the session once at startup and keeps the in-memory copy
// and the state store in step through login, refresh, and logout.
type Manager struct {
	store *store.Store

	mu      sync.RWMutex
	current models.Session
}

// NewManager loads any persisted session from the store. A corrupt user
// record clears the session rather than failing startup.
func NewManager(ctx context.Context, st *store.Store) (*Manager, error) {
	m := &Manager{store: st}

	access, ok, err := st.Get(ctx, keyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return m, nil
	}

	refresh, _, err := st.Get(ctx, keyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	rawUser, _, err := st.Get(ctx, keyUser)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var user models.User
	if rawUser != "" {
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			// stale or hand-edited state: start signed out
			_ = st.Delete(ctx, keyAccessToken, keyRefreshToken, keyUser)
			return m, nil
		}
	}

	m.current = models.Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    tokenExpiry(access),
	}
	return m, nil
}

// Current returns a copy of the session.
func (m *Manager) Current() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AccessToken satisfies chainapi.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.AccessToken
}

// Establish persists a fresh login or registration result.
func (m *Manager) Establish(ctx context.Context, user models.User, accessToken, refreshToken string) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := m.store.Set(ctx, keyAccessToken, accessToken); err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyRefreshToken, refreshToken); err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyUser, string(rawUser)); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = models.Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    tokenExpiry(accessToken),
	}
	m.mu.Unlock()
	return nil
}

// UpdateAccessToken swaps in a refreshed access token, keeping the user and
// refresh token.
func (m *Manager) UpdateAccessToken(ctx context.Context, accessToken string) error {
	if err := m.store.Set(ctx, keyAccessToken, accessToken); err != nil {
		return err
	}

	m.mu.Lock()
	m.current.AccessToken = accessToken
	m.current.ExpiresAt = tokenExpiry(accessToken)
	m.mu.Unlock()
	return nil
}

// Clear wipes the persisted keys and the in-memory session.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, keyAccessToken, keyRefreshToken, keyUser); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = models.Session{}
	m.mu.Unlock()
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the client
// never validates tokens, it only needs the expiry for display and refresh
// decisions. Undecodable tokens yield a zero time.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}

	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
