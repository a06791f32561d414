package api

import (
	"errors"
	"net/http"

	"github.com/kush1905/FitPlanHub/internal/repository"
	"github.com/kush1905/FitPlanHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Response{Success: true, Count: &count, Data: data})
}

func respondMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// Helper to return an error envelope and abort the request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Success: false, Message: message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// missing entities to 404, ownership failures to 403, state and validation
// failures to 400, everything unexpected to a generic 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrTrainerNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrAlreadyFollowing),
		errors.Is(err, service.ErrNotFollowing),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, service.ErrNotATrainer),
		errors.Is(err, service.ErrPaymentDeclined),
		errors.Is(err, service.ErrResetTokenInvalid),
		errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())

	default:
		// Never leak internals on unexpected failures.
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		abortWithError(c, http.StatusInternalServerError, "Server error")
	}
}
