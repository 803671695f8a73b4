// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. The verified token
// subject becomes the caller identity for every downstream handler, rate
// limiter bucket and idempotency record.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/skillswap-backend/internal/auth"
)

// ctxKeyUser holds the authenticated username.
const ctxKeyUser = "userID"

// TokenVerifier resolves a raw token to its subject. *auth.Verifier
// implements it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthOptions configures Auth.
type AuthOptions struct {
	// QueryParam, when set, is consulted if the Authorization header carries
	// no bearer token. Browsers cannot set headers on websocket upgrades.
	QueryParam string
}

// Auth rejects requests without a valid bearer token with 401 and stores the
// token subject for UserID.
func Auth(v TokenVerifier, opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := auth.BearerToken(c.GetHeader("Authorization"))
		if tok == "" && opts.QueryParam != "" {
			tok = strings.TrimSpace(c.Query(opts.QueryParam))
		}

		sub, err := v.Verify(tok)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				msg = "missing bearer token"
			}
			LoggerFrom(c).Debug().Err(err).Msg("authentication failed")
			abortJSON(c, http.StatusUnauthorized, "unauthorized", msg)
			return
		}
		c.Set(ctxKeyUser, sub)
		c.Next()
	}
}

// UserID returns the authenticated username or "" when the request did not
// pass through Auth.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUser); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// abortJSON writes the shared error envelope and stops the chain.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
