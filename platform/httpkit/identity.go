// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Identity represents the authenticated caller's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access the owner scope without depending on Gin keys.
type Identity interface {
	// OwnerID returns the authenticated owner's ID.
	OwnerID() string
	// TokenID returns the ID of the session token, if any.
	TokenID() string
	// TokenExpiry returns when the session token expires.
	TokenExpiry() time.Time
	// IsAuthenticated returns true if the caller is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	ownerID     string
	tokenID     string
	tokenExpiry time.Time
}

func (i *identity) OwnerID() string        { return i.ownerID }
func (i *identity) TokenID() string        { return i.tokenID }
func (i *identity) TokenExpiry() time.Time { return i.tokenExpiry }
func (i *identity) IsAuthenticated() bool  { return i.ownerID != "" }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if owner info is not present.
func GetIdentity(c *gin.Context) Identity {
	id := &identity{
		ownerID: c.GetString(ContextOwnerIDKey),
		tokenID: c.GetString(ContextTokenIDKey),
	}
	if expiry, ok := c.Get(ContextTokenExpiryKey); ok {
		id.tokenExpiry, _ = expiry.(time.Time)
	}
	return id
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the caller is not authenticated, it aborts with 401 and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: errNotAuthenticated})
		return nil
	}
	return id
}
