package api

import (
	"fmt"
	"net/http"

	"github.com/kush1905/FitPlanHub/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler holds the plan and social service dependencies.
type PlanHandler struct {
	planService   service.PlanService
	socialService service.SocialService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService, socialService service.SocialService) *PlanHandler {
	return &PlanHandler{planService: planService, socialService: socialService}
}

// --- Request Structs ---

type CreatePlanRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"min=0"`
	Duration    int     `json:"duration" binding:"required,min=1"`
}

// UpdatePlanRequest is a partial update; omitted fields are left unchanged.
type UpdatePlanRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Duration    *int     `json:"duration"`
}

type CoverUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type CoverConfirmRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// ListPlans returns all plans projected for the (possibly anonymous) caller.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	views, err := h.planService.ListPlans(c.Request.Context(), optionalCallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, views, len(views))
}

// GetPlan returns one plan projected for the caller.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	view, err := h.planService.GetPlan(c.Request.Context(), planID, optionalCallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// CreatePlan publishes a new plan owned by the calling trainer.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	trainerID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	view, err := h.planService.CreatePlan(c.Request.Context(), trainerID, service.CreatePlanInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

// UpdatePlan merges the provided fields into the caller's plan.
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, ok := planIDParam(c)
	if !ok {
		return
	}
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	trainerID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	view, err := h.planService.UpdatePlan(c.Request.Context(), trainerID, planID, service.UpdatePlanInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// DeletePlan removes the caller's plan permanently.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, ok := planIDParam(c)
	if !ok {
		return
	}
	trainerID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), trainerID, planID); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Plan deleted successfully", nil)
}

// GetTrainerPlans returns the calling trainer's own plans.
func (h *PlanHandler) GetTrainerPlans(c *gin.Context) {
	trainerID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	views, err := h.planService.GetTrainerPlans(c.Request.Context(), trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, views, len(views))
}

// Subscribe purchases the plan for the calling user.
func (h *PlanHandler) Subscribe(c *gin.Context) {
	planID, ok := planIDParam(c)
	if !ok {
		return
	}
	userID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	receipt, err := h.socialService.Subscribe(c.Request.Context(), userID, planID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Successfully subscribed to plan", gin.H{"plan": receipt})
}

// RequestCoverUpload returns a presigned PUT URL for the plan's cover image.
func (h *PlanHandler) RequestCoverUpload(c *gin.Context) {
	planID, ok := planIDParam(c)
	if !ok {
		return
	}
	var req CoverUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	trainerID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	resp, err := h.planService.RequestCoverUploadURL(c.Request.Context(), trainerID, planID, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, resp)
}

// ConfirmCoverUpload records the uploaded cover object on the plan.
func (h *PlanHandler) ConfirmCoverUpload(c *gin.Context) {
	planID, ok := planIDParam(c)
	if !ok {
		return
	}
	var req CoverConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	trainerID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.planService.ConfirmCoverUpload(c.Request.Context(), trainerID, planID, req.ObjectKey); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Cover image updated", nil)
}

// planIDParam parses the :id path parameter, answering 400 on a malformed id.
func planIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return primitive.NilObjectID, false
	}
	return planID, true
}
