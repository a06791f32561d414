package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kush1905/FitPlanHub/internal/api"
	"github.com/kush1905/FitPlanHub/internal/config"
	"github.com/kush1905/FitPlanHub/internal/logger"
	"github.com/kush1905/FitPlanHub/internal/payment"
	"github.com/kush1905/FitPlanHub/internal/repository/mongo"
	"github.com/kush1905/FitPlanHub/internal/service"
	"github.com/kush1905/FitPlanHub/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}

	logger.Setup(cfg.Log.File)
	logrus.Info("starting FitPlanHub server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logrus.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() {
		logrus.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logrus.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logrus.Info("database connection established")

	// --- Ensure Indexes ---
	// The unique email index and the edge-write filters depend on these.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureUserIndexes(ctx, appDB.Collection("users")); err != nil {
			logrus.WithError(err).Warn("failed to create user indexes")
		}
		if err := mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans")); err != nil {
			logrus.WithError(err).Warn("failed to create plan indexes")
		}
		logrus.Info("index creation completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		logrus.Fatalf("failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)

	// --- Initialize Services ---
	authorizer := payment.NewSimulatedAuthorizer(cfg.Payment.SimulatedDelay)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanService(planRepo, userRepo, fileStorage)
	socialService := service.NewSocialService(userRepo, planRepo, authorizer)
	feedService := service.NewFeedService(planRepo, userRepo, fileStorage)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, planService, socialService, feedService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logrus.WithField("address", cfg.Server.Address).Info("server starting")

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listen and serve error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server")

	// In-flight requests get five seconds to finish.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}

	logrus.Info("server exiting")
}
