package api

import (
	"net/http"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planService service.PlanService,
	socialService service.SocialService,
	feedService service.FeedService,
) {
	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService, socialService)
	trainerHandler := NewTrainerHandler(socialService)
	feedHandler := NewFeedHandler(feedService)

	authMiddleware := AuthMiddleware(jwtSecret)
	optionalAuth := OptionalAuthMiddleware(jwtSecret)
	trainerOnly := RoleMiddleware(domain.RoleTrainer)
	userOnly := RoleMiddleware(domain.RoleUser)

	apiGroup := router.Group("/api")

	apiGroup.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{Success: true, Message: "FitPlanHub API is running"})
	})

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/forgotpassword", authHandler.ForgotPassword)
		authGroup.PUT("/resetpassword/:resettoken", authHandler.ResetPassword)
	}

	apiGroup.GET("/me", authMiddleware, authHandler.Me)

	planGroup := apiGroup.Group("/plans")
	{
		// Public routes with optional auth for subscription status
		planGroup.GET("", optionalAuth, planHandler.ListPlans)

		// Specific routes before parameterized ones
		planGroup.GET("/trainer/plans", authMiddleware, trainerOnly, planHandler.GetTrainerPlans)
		planGroup.POST("", authMiddleware, trainerOnly, planHandler.CreatePlan)
		planGroup.POST("/:id/subscribe", authMiddleware, userOnly, planHandler.Subscribe)

		// Cover image upload (owner checked in the service)
		planGroup.POST("/:id/cover", authMiddleware, trainerOnly, planHandler.RequestCoverUpload)
		planGroup.PUT("/:id/cover", authMiddleware, trainerOnly, planHandler.ConfirmCoverUpload)

		planGroup.GET("/:id", optionalAuth, planHandler.GetPlan)
		planGroup.PUT("/:id", authMiddleware, trainerOnly, planHandler.UpdatePlan)
		planGroup.DELETE("/:id", authMiddleware, trainerOnly, planHandler.DeletePlan)
	}

	userGroup := apiGroup.Group("/users")
	{
		userGroup.GET("/trainers", optionalAuth, trainerHandler.ListTrainers)
		userGroup.POST("/trainers/:id/follow", authMiddleware, userOnly, trainerHandler.Follow)
		userGroup.POST("/trainers/:id/unfollow", authMiddleware, userOnly, trainerHandler.Unfollow)
		userGroup.GET("/following", authMiddleware, userOnly, trainerHandler.GetFollowing)
	}

	apiGroup.GET("/feed", authMiddleware, userOnly, feedHandler.GetFeed)
}
