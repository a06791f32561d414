package service

import (
	"context"
	"errors"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/repository"
	"github.com/kush1905/FitPlanHub/internal/storage"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// projector assembles caller-specific plan views: it resolves trainer
// references in bulk, applies the access projection per item and attaches
// presigned cover URLs. Shared by the plan and feed services.
type projector struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// resolveCaller loads the caller account for an optional identity. A nil id
// (anonymous) or a token whose account no longer exists both yield a nil
// caller, which projects as unsubscribed.
func (p *projector) resolveCaller(ctx context.Context, callerID *primitive.ObjectID) (*domain.User, error) {
	if callerID == nil || *callerID == primitive.NilObjectID {
		return nil, nil
	}
	caller, err := p.userRepo.GetByID(ctx, *callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return caller, nil
}

// resolveTrainer loads a plan owner. A dangling owner reference yields nil;
// the projection renders a zero trainer ref rather than failing the request.
func (p *projector) resolveTrainer(ctx context.Context, trainerID primitive.ObjectID) *domain.User {
	trainer, err := p.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("trainer", trainerID.Hex()).Warn("failed to resolve plan owner")
		}
		return nil
	}
	return trainer
}

// views projects a plan list for the caller. Trainer references are resolved
// with one $in query instead of per item.
func (p *projector) views(ctx context.Context, plans []domain.Plan, caller *domain.User) ([]domain.PlanView, error) {
	trainers, err := p.trainersByID(ctx, plans)
	if err != nil {
		return nil, err
	}

	views := make([]domain.PlanView, 0, len(plans))
	for i := range plans {
		plan := &plans[i]
		view := domain.ProjectPlan(plan, trainers[plan.TrainerID], caller)
		p.attachCoverURL(ctx, plan, &view)
		views = append(views, view)
	}
	return views, nil
}

func (p *projector) trainersByID(ctx context.Context, plans []domain.Plan) (map[primitive.ObjectID]*domain.User, error) {
	seen := make(map[primitive.ObjectID]bool, len(plans))
	ids := make([]primitive.ObjectID, 0, len(plans))
	for i := range plans {
		if !seen[plans[i].TrainerID] {
			seen[plans[i].TrainerID] = true
			ids = append(ids, plans[i].TrainerID)
		}
	}

	trainers, err := p.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*domain.User, len(trainers))
	for i := range trainers {
		byID[trainers[i].ID] = &trainers[i]
	}
	return byID, nil
}

// attachCoverURL fills in a presigned download URL when the plan carries a
// cover image. Failures degrade to a view without a cover.
func (p *projector) attachCoverURL(ctx context.Context, plan *domain.Plan, view *domain.PlanView) {
	if plan.CoverImageKey == "" || p.fileStorage == nil {
		return
	}
	url, err := p.fileStorage.GeneratePresignedDownloadURL(ctx, plan.CoverImageKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		logrus.WithError(err).WithField("plan", plan.ID.Hex()).Warn("failed to presign cover image URL")
		return
	}
	view.CoverImageURL = url
}
