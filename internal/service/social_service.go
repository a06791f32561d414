package service

import (
	"context"
	"errors"
	"time"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/payment"
	"github.com/kush1905/FitPlanHub/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTrainerNotFound   = errors.New("trainer not found")
	ErrNotATrainer       = errors.New("account is not a trainer")
	ErrSelfFollow        = errors.New("cannot follow yourself")
	ErrAlreadyFollowing  = errors.New("already following this trainer")
	ErrNotFollowing      = errors.New("not following this trainer")
	ErrAlreadySubscribed = errors.New("already subscribed to this plan")
	ErrPaymentDeclined   = errors.New("payment was declined")
)

// TrainerInfo is a trainer listing entry with the caller's follow flag.
type TrainerInfo struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	CreatedAt   time.Time   `json:"createdAt"`
	IsFollowing bool        `json:"isFollowing"`
}

// SubscriptionReceipt is returned on a successful subscribe.
type SubscriptionReceipt struct {
	PlanID string  `json:"planId"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
}

// --- Service Interface ---

// SocialService mutates the follow and subscription relationships and serves
// the trainer directory.
type SocialService interface {
	FollowTrainer(ctx context.Context, userID, trainerID primitive.ObjectID) (*domain.User, error)
	UnfollowTrainer(ctx context.Context, userID, trainerID primitive.ObjectID) error
	GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]domain.User, error)
	ListTrainers(ctx context.Context, callerID *primitive.ObjectID) ([]TrainerInfo, error)
	Subscribe(ctx context.Context, userID, planID primitive.ObjectID) (*SubscriptionReceipt, error)
}

// --- Service Implementation ---

type socialService struct {
	userRepo   repository.UserRepository
	planRepo   repository.PlanRepository
	authorizer payment.Authorizer
}

// NewSocialService creates a new instance of socialService.
func NewSocialService(userRepo repository.UserRepository, planRepo repository.PlanRepository, authorizer payment.Authorizer) SocialService {
	return &socialService{
		userRepo:   userRepo,
		planRepo:   planRepo,
		authorizer: authorizer,
	}
}

// === Follow edge ===

// FollowTrainer adds the trainer to the caller's follow set and returns the
// followed trainer. The edge is single-sided; trainers do not track followers.
func (s *socialService) FollowTrainer(ctx context.Context, userID, trainerID primitive.ObjectID) (*domain.User, error) {
	if userID == primitive.NilObjectID || trainerID == primitive.NilObjectID {
		return nil, errors.New("user ID and trainer ID are required")
	}
	if userID == trainerID {
		return nil, ErrSelfFollow
	}

	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, ErrNotATrainer
	}

	// Single conditional write; a duplicate (including a concurrent one)
	// comes back as ErrAlreadyExists rather than silently succeeding.
	err = s.userRepo.AddFollowedTrainer(ctx, userID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyFollowing
		}
		return nil, err
	}

	trainer.PasswordHash = ""
	return trainer, nil
}

// UnfollowTrainer removes the trainer from the caller's follow set.
func (s *socialService) UnfollowTrainer(ctx context.Context, userID, trainerID primitive.ObjectID) error {
	if userID == primitive.NilObjectID || trainerID == primitive.NilObjectID {
		return errors.New("user ID and trainer ID are required")
	}

	err := s.userRepo.RemoveFollowedTrainer(ctx, userID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFollowing
		}
		return err
	}
	return nil
}

// GetFollowing returns the accounts the caller follows. Dangling ids drop out.
func (s *socialService) GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	trainers, err := s.userRepo.GetByIDs(ctx, user.FollowedTrainers)
	if err != nil {
		return nil, err
	}
	for i := range trainers {
		trainers[i].PasswordHash = ""
	}
	return trainers, nil
}

// === Trainer directory ===

// ListTrainers returns all trainers, newest first. When the caller is an
// authenticated user account, each entry carries their follow flag.
func (s *socialService) ListTrainers(ctx context.Context, callerID *primitive.ObjectID) ([]TrainerInfo, error) {
	trainers, err := s.userRepo.GetTrainers(ctx)
	if err != nil {
		return nil, err
	}

	var caller *domain.User
	if callerID != nil && *callerID != primitive.NilObjectID {
		caller, err = s.userRepo.GetByID(ctx, *callerID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	infos := make([]TrainerInfo, 0, len(trainers))
	for i := range trainers {
		t := &trainers[i]
		info := TrainerInfo{
			ID:        t.ID.Hex(),
			Name:      t.Name,
			Email:     t.Email,
			Role:      t.Role,
			CreatedAt: t.CreatedAt,
		}
		if caller != nil && caller.IsUser() {
			info.IsFollowing = caller.Follows(t.ID)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// === Subscription edge ===

// Subscribe grants the caller permanent full visibility of the plan. The
// payment capability is consulted first; the edge is then written to the
// plan's subscriber set (authoritative side) in one atomic conditional
// update, and mirrored onto the account. A failed mirror write is compensated
// by pulling the subscriber back out before reporting the error.
func (s *socialService) Subscribe(ctx context.Context, userID, planID primitive.ObjectID) (*SubscriptionReceipt, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, errors.New("user ID and plan ID are required")
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	// Cheap pre-check for the common repeat-subscribe case. The
	// authoritative check is the conditional write below.
	if plan.HasSubscriber(userID) {
		return nil, ErrAlreadySubscribed
	}

	approved, err := s.authorizer.Authorize(ctx, userID, planID, plan.Price)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, ErrPaymentDeclined
	}

	err = s.planRepo.AddSubscriber(ctx, planID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadySubscribed
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	err = s.userRepo.AddPurchasedPlan(ctx, userID, planID)
	if err != nil {
		// The two sides of the edge must agree; undo the plan-side write.
		if compErr := s.planRepo.RemoveSubscriber(ctx, planID, userID); compErr != nil {
			logrus.WithError(compErr).WithFields(logrus.Fields{
				"plan": planID.Hex(),
				"user": userID.Hex(),
			}).Error("subscription edge left inconsistent after failed compensation")
		}
		return nil, err
	}

	return &SubscriptionReceipt{
		PlanID: plan.ID.Hex(),
		Title:  plan.Title,
		Price:  plan.Price,
	}, nil
}
