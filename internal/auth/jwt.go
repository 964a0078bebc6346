package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be learned from a token without the server.
type TokenInfo struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (i *TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// InspectToken reads the claims of a JWT access token without verifying
// its signature. Opaque tokens return ErrInvalidJWTFormat.
func InspectToken(token string) (*TokenInfo, error) {
	if strings.Count(token, ".") != 2 {
		return nil, constants.ErrInvalidJWTFormat
	}

	claims := &jwt.RegisteredClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	info := &TokenInfo{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}

	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}

	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}

	return info, nil
}

// TokenExpiration returns the exp claim of a JWT access token.
func TokenExpiration(token string) (time.Time, error) {
	info, err := InspectToken(token)
	if err != nil {
		return time.Time{}, err
	}

	if info.ExpiresAt.IsZero() {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return info.ExpiresAt, nil
}
