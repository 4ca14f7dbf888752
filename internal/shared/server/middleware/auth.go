package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/auth"
	"lbs-connect/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userRoleKey  = "userRole"
)

type identity struct {
	userID string
	email  string
	role   string
}

var (
	errNoIdentity = errors.New("missing identity")
	errBadToken   = errors.New("missing or invalid token")
)

// Auth resolves the caller from a bearer session token and stores it on the
// context. Paths under publicPrefixes skip the check. In dev, X-User-Id and
// X-User-Email stand in for a token.
func Auth(keys *auth.Keys, env string, publicPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		id, err := resolveIdentity(c.Request, keys, env == "dev")
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, err.Error())
			return
		}
		c.Set(userIDKey, id.userID)
		if id.email != "" {
			c.Set(userEmailKey, id.email)
		}
		if id.role != "" {
			c.Set(userRoleKey, id.role)
		}
		c.Next()
	}
}

func resolveIdentity(r *http.Request, keys *auth.Keys, allowDevHeaders bool) (identity, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || keys == nil {
			return identity{}, errBadToken
		}
		claims, err := keys.Verify(token)
		if err != nil {
			return identity{}, errBadToken
		}
		return identity{userID: claims.Subject, email: claims.Email, role: claims.Role}, nil
	}
	if allowDevHeaders {
		if userID := strings.TrimSpace(r.Header.Get("X-User-Id")); userID != "" {
			return identity{userID: userID, email: strings.TrimSpace(r.Header.Get("X-User-Email"))}, nil
		}
	}
	return identity{}, errNoIdentity
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return contextString(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return contextString(c, userEmailKey)
}

// IsServiceRole reports whether the caller authenticated with a service token.
func IsServiceRole(c *gin.Context) bool {
	return contextString(c, userRoleKey) == auth.RoleService
}

// CanActFor reports whether the caller may operate on userID's data.
func CanActFor(c *gin.Context, userID string) bool {
	if IsServiceRole(c) {
		return true
	}
	caller := UserIDFromContext(c)
	return caller != "" && caller == userID
}

func contextString(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
