package service

import (
	"context"
	"fmt"

	"github.com/t-azam747/SecureRelief-sub003/internal/metrics"
	"github.com/t-azam747/SecureRelief-sub003/internal/security"
)

// NonceIssuer hands out single-use sign-in nonces. Each issue replaces
// whatever nonce the user had, so only the latest one can be consumed.
type NonceIssuer struct {
	users   UserStore
	metrics *metrics.Auth
}

func NewNonceIssuer(users UserStore, m *metrics.Auth) *NonceIssuer {
	return &NonceIssuer{users: users, metrics: m}
}

func (n *NonceIssuer) Issue(ctx context.Context, userID string) (string, error) {
	nonce, err := security.GenerateNonce()
	if err != nil {
		return "", err
	}
	if _, err := n.users.SetNonce(ctx, userID, &nonce); err != nil {
		return "", fmt.Errorf("store nonce: %w", err)
	}
	n.metrics.NonceIssued()
	return nonce, nil
}
