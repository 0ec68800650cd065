package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/greenloop/greenloop-backend/internal/entity"
	userRepo "github.com/greenloop/greenloop-backend/internal/modules/user/repository"
	"github.com/greenloop/greenloop-backend/pkg/response"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository) *AuthMiddleware {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

// RequireAuth validates the bearer token and stores the caller's user ID in
// the gin context under "user_id".
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (used by the websocket client)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, response.Envelope{IsSuccess: false, Message: "authorization required"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, response.Envelope{IsSuccess: false, Message: "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.Envelope{IsSuccess: false, Message: "invalid token claims"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Next()
	}
}

// OptionalAuth resolves the caller when a valid token is present but lets
// anonymous requests through. It sets "user_id" and "current_user" on
// success.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			c.Next()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			c.Next()
			return
		}

		if user, err := m.userRepo.FindByID(c.Request.Context(), claims.Subject); err == nil {
			c.Set("user_id", claims.Subject)
			c.Set("current_user", user)
		}
		c.Next()
	}
}

// LoadUser fetches the authenticated user's record and stores it under
// "current_user". Must run after RequireAuth.
func (m *AuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, response.Envelope{IsSuccess: false, Message: "user not authenticated"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID.(string))
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.Envelope{IsSuccess: false, Message: "user not found"})
			c.Abort()
			return
		}

		c.Set("current_user", user)
		c.Next()
	}
}

// RequireStaff allows moderators and admins through.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return m.requireRole(entity.RoleAdmin, entity.RoleModerator)
}

// RequireAdmin allows admins only.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.requireRole(entity.RoleAdmin)
}

func (m *AuthMiddleware) requireRole(roles ...uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, response.Envelope{IsSuccess: false, Message: "user not authenticated"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID.(string))
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.Envelope{IsSuccess: false, Message: "user not found"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.RoleID == role {
				c.Set("current_user", user)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, response.Envelope{IsSuccess: false, Message: "insufficient role"})
		c.Abort()
	}
}
