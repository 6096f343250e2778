package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/requestdata"
)

type AuthMiddleware struct {
	log      *logger.Logger
	secret   []byte
	devAllow bool
}

// NewAuthMiddleware reads JWT_SECRET for token verification. When
// AUTH_DEV_ALLOW_HEADER=true, a plain X-User-ID header is accepted instead,
// which keeps local development and integration tests free of token plumbing.
func NewAuthMiddleware(log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		log:      log.With("Middleware", "AuthMiddleware"),
		secret:   []byte(os.Getenv("JWT_SECRET")),
		devAllow: strings.EqualFold(os.Getenv("AUTH_DEV_ALLOW_HEADER"), "true"),
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, tokenString, err := am.resolveUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
			TokenString: tokenString,
			UserID:      userID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) resolveUser(c *gin.Context) (uuid.UUID, string, error) {
	if am.devAllow {
		if header := strings.TrimSpace(c.GetHeader("X-User-ID")); header != "" {
			id, err := uuid.Parse(header)
			if err != nil {
				return uuid.Nil, "", fmt.Errorf("invalid X-User-ID header")
			}
			return id, "", nil
		}
	}

	tokenString := extractToken(c)
	if tokenString == "" {
		return uuid.Nil, "", fmt.Errorf("missing or invalid token")
	}
	if len(am.secret) == 0 {
		return uuid.Nil, "", fmt.Errorf("auth not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return am.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", fmt.Errorf("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, "", fmt.Errorf("token missing subject")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("token subject is not a user id")
	}
	return id, tokenString, nil
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
