package service

import (
	"github.com/t-azam747/SecureRelief-sub003/internal/config"
	"github.com/t-azam747/SecureRelief-sub003/internal/models"
	"github.com/t-azam747/SecureRelief-sub003/internal/security"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionIssuer mints stateless token pairs. Access and refresh tokens are
// signed with separate secrets.
type SessionIssuer struct {
	cfg config.SecurityConfig
}

func NewSessionIssuer(cfg config.SecurityConfig) *SessionIssuer {
	return &SessionIssuer{cfg: cfg}
}

func (s *SessionIssuer) GenerateTokens(user models.User) (TokenPair, error) {
	access, err := security.GenerateAccessToken(
		s.cfg.JWTAccessSecret,
		user.ID,
		string(user.Role),
		user.WalletAddress,
		s.cfg.JWTAccessTTL,
	)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := security.GenerateRefreshToken(s.cfg.JWTRefreshSecret, user.ID, s.cfg.JWTRefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
