package security

import "errors"

var ErrForbiddenRole = errors.New("insufficient role")

// Authorize passes when the claims' role is one of allowed.
func Authorize(claims *AccessClaims, allowed ...string) error {
	if claims == nil {
		return ErrInvalidToken
	}
	for _, role := range allowed {
		if claims.Role == role {
			return nil
		}
	}
	return ErrForbiddenRole
}
