package jwtmw

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"user_backend/internal/shared/envelope"
)

const (
	// ContextClaims is the gin context key holding *Claims.
	ContextClaims = "claims"
	// ContextSubject is the gin context key holding the authenticated name.
	ContextSubject = "subject"

	bearerPrefix = "Bearer "

	msgNotAuthenticated = "Not Authenticated"
	errMissingToken     = "missing bearer token"
	errInvalidToken     = "Could not validate credentials"
)

// TokenVerifier decodes a bearer token into claims.
// Following Go convention: interfaces are defined by the consumer (middleware), not the provider (Service).
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to authenticated callers only.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, bearerPrefix) {
			unauthorized(c, errMissingToken)
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
		if tokenStr == "" {
			unauthorized(c, errMissingToken)
			return
		}

		// 2. Verify signature and expiry
		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			slog.Warn("token rejected", "error", err, "remote_addr", c.ClientIP(), "path", c.FullPath())
			unauthorized(c, errInvalidToken)
			return
		}

		// 3. Expose claims to downstream handlers
		c.Set(ContextClaims, claims)
		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthRequired.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// unauthorized aborts with 401 and advertises the Bearer scheme.
func unauthorized(c *gin.Context, reason string) {
	c.Header("WWW-Authenticate", "Bearer")
	envelope.Abort(c, http.StatusUnauthorized, envelope.Failure(envelope.OpAuth, msgNotAuthenticated, reason, nil))
}
