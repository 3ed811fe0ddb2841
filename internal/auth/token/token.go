// Package token issues session tokens and tracks revoked ones.
package token

import (
	"time"

	"lead_management_backend/platform/httpkit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is a freshly signed session token.
type Session struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Issue signs an HS256 access token for userID valid for ttl.
func Issue(userID, secret string, ttl time.Duration, now time.Time) (Session, error) {
	expiresAt := now.Add(ttl)
	claims := httpkit.SessionClaims{
		Type: httpkit.AccessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, ID: claims.ID, ExpiresAt: expiresAt}, nil
}
