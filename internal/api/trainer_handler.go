package api

import (
	"net/http"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerHandler serves the trainer directory and the follow relationship.
type TrainerHandler struct {
	socialService service.SocialService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(socialService service.SocialService) *TrainerHandler {
	return &TrainerHandler{socialService: socialService}
}

// FollowedTrainerResponse is a following-list entry.
type FollowedTrainerResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// ListTrainers returns all trainers with the caller's follow flags.
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.socialService.ListTrainers(c.Request.Context(), optionalCallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, trainers, len(trainers))
}

// Follow adds the trainer to the calling user's followed set.
func (h *TrainerHandler) Follow(c *gin.Context) {
	trainerID, ok := trainerIDParam(c)
	if !ok {
		return
	}
	userID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	trainer, err := h.socialService.FollowTrainer(c.Request.Context(), userID, trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Successfully followed trainer", gin.H{
		"trainer": FollowedTrainerResponse{
			ID:    trainer.ID.Hex(),
			Name:  trainer.Name,
			Email: trainer.Email,
			Role:  trainer.Role,
		},
	})
}

// Unfollow removes the trainer from the calling user's followed set.
func (h *TrainerHandler) Unfollow(c *gin.Context) {
	trainerID, ok := trainerIDParam(c)
	if !ok {
		return
	}
	userID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.socialService.UnfollowTrainer(c.Request.Context(), userID, trainerID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Successfully unfollowed trainer", nil)
}

// GetFollowing returns the trainers the calling user follows.
func (h *TrainerHandler) GetFollowing(c *gin.Context) {
	userID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	trainers, err := h.socialService.GetFollowing(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]FollowedTrainerResponse, 0, len(trainers))
	for i := range trainers {
		resp = append(resp, FollowedTrainerResponse{
			ID:    trainers[i].ID.Hex(),
			Name:  trainers[i].Name,
			Email: trainers[i].Email,
			Role:  trainers[i].Role,
		})
	}
	respondList(c, resp, len(resp))
}

// trainerIDParam parses the :id path parameter.
func trainerIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	trainerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format")
		return primitive.NilObjectID, false
	}
	return trainerID, true
}
