package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sangkips/posprint/pkg/apperror"
	"github.com/sangkips/posprint/pkg/utils"
)

// AgentCredential is a till or kitchen display allowed to call the print API.
type AgentCredential struct {
	ClientID string   `mapstructure:"client_id" json:"client_id"`
	KeyHash  string   `mapstructure:"key_hash" json:"-"`
	Scopes   []string `mapstructure:"scopes" json:"scopes"`
}

// AuthService exchanges agent keys for access tokens
type AuthService struct {
	agents     map[string]AgentCredential
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(agents []AgentCredential, jwtManager *utils.JWTManager) *AuthService {
	m := make(map[string]AgentCredential, len(agents))
	for _, a := range agents {
		if len(a.Scopes) == 0 {
			a.Scopes = []string{utils.ScopePrint}
		}
		m[strings.TrimSpace(a.ClientID)] = a
	}
	return &AuthService{agents: m, jwtManager: jwtManager}
}

// TokenInput represents the token request input
type TokenInput struct {
	ClientID string
	Key      string
}

// TokenOutput represents an issued access token
type TokenOutput struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Scopes      []string  `json:"scopes"`
}

// IssueToken authenticates an agent and returns a bearer token
func (s *AuthService) IssueToken(_ context.Context, input *TokenInput) (*TokenOutput, error) {
	agent, ok := s.agents[strings.TrimSpace(input.ClientID)]
	if !ok || !utils.CheckPasswordHash(input.Key, agent.KeyHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(agent.ClientID, agent.Scopes)
	if err != nil {
		return nil, apperror.Wrap(http.StatusInternalServerError, "Failed to issue token", err)
	}

	return &TokenOutput{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(s.jwtManager.Expiry()),
		Scopes:      agent.Scopes,
	}, nil
}
