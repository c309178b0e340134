package chainapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gerri254/chainctl/pkg/models"
)

// AuthService covers /api/auth.
type AuthService struct {
	c *Client
}

// RegisterInput is the self-registration payload. Self-registered users get
// the public role; user_type selects the SkillChain persona.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	UserType    string `json:"user_type,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the data block of register/login responses: the safe user
// view plus both tokens.
type AuthResult struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	raw, err := s.c.post(ctx, "/api/auth/register", in)
	if err != nil {
		return nil, err
	}
	var out AuthResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode register response: %w", err)
	}
	return &out, nil
}

func (s *AuthService) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	raw, err := s.c.post(ctx, "/api/auth/login", creds)
	if err != nil {
		return nil, err
	}
	var out AuthResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &out, nil
}

// Refresh trades a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	raw, err := s.c.post(ctx, "/api/auth/refresh", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return "", err
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	return out.AccessToken, nil
}

// Logout tells the server to record the logout. Clearing persisted tokens is
// the session layer's job.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.c.post(ctx, "/api/auth/logout", nil)
	return err
}

// Me returns the authenticated user's safe view.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	raw, err := s.c.get(ctx, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// UserUpdate holds the fields the /me endpoint accepts.
type UserUpdate struct {
	FullName   string `json:"full_name,omitempty"`
	Department string `json:"department,omitempty"`
}

func (s *AuthService) UpdateMe(ctx context.Context, in UserUpdate) (*models.User, error) {
	raw, err := s.c.put(ctx, "/api/auth/me", in)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}
