// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"lead_management_backend/platform/config"
	"lead_management_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

const (
	// ContextOwnerIDKey is the gin context key for the authenticated owner ID.
	ContextOwnerIDKey = "ownerID"
	// ContextTokenIDKey is the gin context key for the session token ID (jti).
	ContextTokenIDKey = "tokenID"
	// ContextTokenExpiryKey is the gin context key for the session token expiry.
	ContextTokenExpiryKey = "tokenExpiry"

	// AccessTokenType is the value of the "type" claim on session tokens.
	AccessTokenType = "access"

	errNotAuthenticated = "Not authenticated"
	errInvalidToken     = "Token invalid or expired"
)

// RevocationChecker reports whether a session token ID has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// HTTPRecorder receives per-request measurements.
type HTTPRecorder interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// RequestLogger logs HTTP requests with timing. Errors attached with c.Error
// are logged as well.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()

		reqLog := log.WithContext(c.Request.Context())
		if ownerID := c.GetString(ContextOwnerIDKey); ownerID != "" {
			reqLog = reqLog.WithOwnerID(ownerID)
		}
		for _, ginErr := range c.Errors {
			reqLog.HTTPError(c.Request.Method, path, status, ginErr.Err, clientIP)
		}
		reqLog.HTTPRequest(c.Request.Method, path, status, float64(latency.Milliseconds()), clientIP)
	}
}

// RequestMetrics records request count and latency by matched route.
func RequestMetrics(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// IPRateLimiter manages per-IP rate limiters.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewIPRateLimiter creates a new IP-based rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
		log:   log,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return limiter.(*rate.Limiter)
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := i.getLimiter(ip)

		if !limiter.Allow() {
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests"})
			return
		}

		c.Next()
	}
}

// AuthRateLimiter is a stricter rate limiter for auth endpoints.
type AuthRateLimiter struct {
	*IPRateLimiter
}

// NewAuthRateLimiter creates a rate limiter for authentication endpoints
// allowing perMinute requests per client IP, with the same burst.
func NewAuthRateLimiter(perMinute int, log *logger.Logger) *AuthRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &AuthRateLimiter{
		IPRateLimiter: NewIPRateLimiter(rate.Limit(float64(perMinute)/60.0), perMinute, log),
	}
}

// AuthRequired returns middleware that validates session tokens.
// The token is read from the session cookie, falling back to a Bearer
// Authorization header. revoked may be nil when no revocation list is configured.
func AuthRequired(cfg config.SessionConfig, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := SessionToken(c, cfg.GetCookieName())
		if !ok {
			abortUnauthorized(c, errNotAuthenticated)
			return
		}

		claims, err := ParseSessionToken(rawToken, cfg.GetJWTSecret())
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: internalErrorMessage})
				return
			}
			if isRevoked {
				abortUnauthorized(c, errInvalidToken)
				return
			}
		}

		c.Set(ContextOwnerIDKey, claims.Subject)
		c.Set(ContextTokenIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.OwnerIDKey, claims.Subject))
		c.Next()
	}
}

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// ParseSessionToken verifies an HS256 session token and returns its claims.
func ParseSessionToken(rawToken, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, errors.New(errInvalidToken)
	}

	if claims.Type != AccessTokenType || strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New(errInvalidToken)
	}

	return claims, nil
}

// SessionToken returns the raw session token from the cookie or, failing
// that, from a Bearer Authorization header.
func SessionToken(c *gin.Context, cookieName string) (string, bool) {
	if cookie, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie), true
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}

	return rawToken, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}
