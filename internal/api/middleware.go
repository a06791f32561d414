package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		claims, err := parseBearerToken(authHeader, jwtSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller identity when a valid token is
// present but lets the request through anonymously otherwise. Used on public
// routes whose responses differ for authenticated callers.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			if claims, err := parseBearerToken(authHeader, jwtSecret); err == nil {
				c.Set(ContextUserIDKey, claims.UserID)
				c.Set(ContextUserRoleKey, claims.Role)
			}
			// Invalid token means public access, not a failure.
		}
		c.Next()
	}
}

// parseBearerToken validates a "Bearer <token>" header value and returns the
// embedded claims.
func parseBearerToken(authHeader, jwtSecret string) (*service.Claims, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("authorization header format must be Bearer {token}")
	}

	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" || claims.Role == "" {
		return nil, errors.New("invalid token or missing claims")
	}
	return claims, nil
}

// RoleMiddleware creates middleware to check if the caller has one of the
// required roles. Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleRaw, exists := c.Get(ContextUserRoleKey)
		if !exists {
			abortWithError(c, http.StatusInternalServerError, "User role not found in context")
			return
		}

		userRole, ok := roleRaw.(domain.Role)
		if !ok {
			abortWithError(c, http.StatusInternalServerError, "Invalid user role type in context")
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}

		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole))
	}
}

// getCallerID returns the authenticated caller's ObjectID. Only valid after
// AuthMiddleware.
func getCallerID(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user ID type in context")
	}
	return primitive.ObjectIDFromHex(idStr)
}

// optionalCallerID returns the caller's ObjectID when the request carried a
// valid token, nil otherwise. For routes behind OptionalAuthMiddleware.
func optionalCallerID(c *gin.Context) *primitive.ObjectID {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return nil
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return nil
	}
	return &id
}

// getCallerRole returns the authenticated caller's role from the context.
func getCallerRole(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}
