package repository

import (
	"context"
	"time"

	"github.com/kush1905/FitPlanHub/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrAlreadyExists = RepositoryError("already exists")
	ErrDuplicateKey  = RepositoryError("duplicate key")
	ErrUpdateFailed  = RepositoryError("update failed")
	ErrDeleteFailed  = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with account data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	GetTrainers(ctx context.Context) ([]domain.User, error)

	// Follow edge. AddFollowedTrainer returns ErrAlreadyExists when the edge
	// is already present; RemoveFollowedTrainer returns ErrNotFound when it
	// is not. Both checks are a single conditional update so concurrent
	// duplicates resolve deterministically.
	AddFollowedTrainer(ctx context.Context, userID, trainerID primitive.ObjectID) error
	RemoveFollowedTrainer(ctx context.Context, userID, trainerID primitive.ObjectID) error

	// Subscription edge, user side. The plan side (PlanRepository.AddSubscriber)
	// is authoritative; this mirrors it onto the account document.
	AddPurchasedPlan(ctx context.Context, userID, planID primitive.ObjectID) error

	// Password reset
	SetResetToken(ctx context.Context, userID primitive.ObjectID, tokenHash string, expires time.Time) error
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error
}

// PlanRepository defines the interface for interacting with plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	// GetAll returns every plan, newest first.
	GetAll(ctx context.Context) ([]domain.Plan, error)
	// GetByTrainerID returns a trainer's own plans, newest first.
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error)
	// GetByTrainerIDs returns all plans owned by any of the given trainers,
	// newest first. Used by the feed composer.
	GetByTrainerIDs(ctx context.Context, trainerIDs []primitive.ObjectID) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Subscription edge, plan side (authoritative). AddSubscriber performs an
	// atomic check-then-write: it returns ErrAlreadyExists when the user is
	// already in the subscriber set, ErrNotFound when the plan is gone.
	AddSubscriber(ctx context.Context, planID, userID primitive.ObjectID) error
	// RemoveSubscriber compensates a failed mirror write.
	RemoveSubscriber(ctx context.Context, planID, userID primitive.ObjectID) error

	SetCoverImageKey(ctx context.Context, planID primitive.ObjectID, objectKey string) error
}
