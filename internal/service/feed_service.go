package service

import (
	"context"
	"errors"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/repository"
	"github.com/kush1905/FitPlanHub/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUserNotFound = errors.New("user not found")

// --- Service Interface ---

// FeedService composes the personalized feed: every plan published by a
// trainer the caller follows, newest first, each projected for the caller.
type FeedService interface {
	GetFeed(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanView, error)
}

// --- Service Implementation ---

type feedService struct {
	planRepo repository.PlanRepository
	projector
}

// NewFeedService creates a new instance of feedService.
func NewFeedService(planRepo repository.PlanRepository, userRepo repository.UserRepository, fileStorage storage.FileStorage) FeedService {
	return &feedService{
		planRepo:  planRepo,
		projector: projector{userRepo: userRepo, fileStorage: fileStorage},
	}
}

// GetFeed returns the caller's feed. An empty follow set yields an empty
// feed, not an error. Items the caller has not subscribed to come back as
// previews; the feed grants no extra visibility.
func (s *feedService) GetFeed(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanView, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	plans, err := s.planRepo.GetByTrainerIDs(ctx, user.FollowedTrainers)
	if err != nil {
		return nil, err
	}

	return s.views(ctx, plans, user)
}
