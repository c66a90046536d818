package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/t-azam747/SecureRelief-sub003/internal/security"
)

const (
	claimsKey = "access_claims"
	tokenKey  = "access_token"
)

// RevocationChecker reports whether a bearer token was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Auth verifies the bearer access token and stores its claims on the
// context. revoked may be nil when logout revocation is disabled.
func Auth(secret string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "detail": "missing bearer token"})
			return
		}

		claims, err := security.ParseAccessToken(tokenStr, secret)
		if err != nil {
			detail := "invalid token"
			if errors.Is(err, security.ErrTokenExpired) {
				detail = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "detail": detail})
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), tokenStr)
			if err != nil {
				zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("user_id", claims.UserID).Msg("denylist lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "detail": "token revoked"})
				return
			}
		}

		c.Set(tokenKey, tokenStr)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Claims returns the claims stored by Auth.
func Claims(c *gin.Context) (*security.AccessClaims, bool) {
	val, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*security.AccessClaims)
	return claims, ok && claims != nil
}
