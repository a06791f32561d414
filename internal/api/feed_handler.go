package api

import (
	"net/http"

	"github.com/kush1905/FitPlanHub/internal/service"

	"github.com/gin-gonic/gin"
)

// FeedHandler serves the personalized feed.
type FeedHandler struct {
	feedService service.FeedService
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feedService service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GetFeed returns the plans of the caller's followed trainers, newest first.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, err := getCallerID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	views, err := h.feedService.GetFeed(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, views, len(views))
}
