package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ownerContextKey = "owner_id"

// Claims represents JWT claims
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

func parseBearerToken(c *gin.Context, secret string) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}

	token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub := claims.Sub
	if sub == "" {
		sub = claims.Subject
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}

	return sub, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// owner id in the context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := parseBearerToken(c, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.Set(ownerContextKey, ownerID)
		c.Next()
	}
}

// OptionalAuth stores the owner id when a valid token is present but lets
// unauthenticated requests through. The OAuth callback uses this: a missing
// owner is a domain-level terminal error there, not a transport 401.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ownerID, err := parseBearerToken(c, secret); err == nil {
			c.Set(ownerContextKey, ownerID)
		}
		c.Next()
	}
}

// ownerID returns the authenticated owner id, or "" when absent.
func ownerID(c *gin.Context) string {
	if v, ok := c.Get(ownerContextKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
