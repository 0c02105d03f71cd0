// Package auth carries the learner's bearer token from the incoming request to
// the backend collaborators. Tokens are issued and verified by the backend;
// this service only forwards them and reads the subject for logging and telemetry.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

const (
	ContextUserID = "user_id"
	ContextToken  = "auth_token"
)

var ErrNoSubject = errors.New("token carries no subject")

// WithToken returns a copy of ctx carrying token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

// TokenFromContext returns the bearer token placed by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(ctxKey{}).(string)
	return token
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Subject reads the "sub" claim without verifying the signature.
func Subject(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}

// Middleware stores the bearer token on the request context and the token
// subject under ContextUserID. Requests without a token pass through; the
// backend decides whether an anonymous call is allowed.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token != "" {
			c.Set(ContextToken, token)
			c.Request = c.Request.WithContext(WithToken(c.Request.Context(), token))
			if sub, err := Subject(token); err == nil {
				c.Set(ContextUserID, sub)
			}
		}
		c.Next()
	}
}

// UserID returns the subject stored by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
