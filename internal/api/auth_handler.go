package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type SignupRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     domain.Role `json:"role" binding:"required,oneof=user trainer"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UserResponse excludes sensitive info like the password hash.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AuthData carries the JWT and the account it belongs to.
type AuthData struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Signup creates a new account and logs it in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, AuthData{Token: token, User: mapUserToResponse(user)})
}

// Login authenticates an account and returns a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, AuthData{Token: token, User: mapUserToResponse(user)})
}

// ForgotPassword issues a password reset token. Email delivery is not part of
// this service; the token is returned directly.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resetToken, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Reset token issued", gin.H{"resetToken": resetToken})
}

// ResetPassword sets a new password for a valid reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), c.Param("resettoken"), req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Password has been reset", nil)
}

// Me returns the caller identity resolved from the token.
func (h *AuthHandler) Me(c *gin.Context) {
	callerID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	role, err := getCallerRole(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get role from token")
		return
	}
	respondData(c, http.StatusOK, gin.H{"userId": callerID.Hex(), "role": role})
}

// mapUserToResponse converts a domain User to a UserResponse DTO.
func mapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
