package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/repository"
	"github.com/kush1905/FitPlanHub/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanAccessDenied = errors.New("not authorized to modify this plan")
	ErrValidation       = errors.New("validation failed")
	ErrCoverURLFailed   = errors.New("failed to generate cover image URL")
)

// CreatePlanInput carries the fields required to publish a plan.
type CreatePlanInput struct {
	Title       string
	Description string
	Price       float64
	Duration    int
}

// UpdatePlanInput carries a partial update; nil fields are left untouched.
type UpdatePlanInput struct {
	Title       *string
	Description *string
	Price       *float64
	Duration    *int
}

// CoverUploadResponse returns the presigned URL and the object key the client
// must report back on confirm.
type CoverUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type PlanService interface {
	// Browsing. Caller may be nil (anonymous); the projection per item
	// depends on the caller's subscriptions.
	ListPlans(ctx context.Context, callerID *primitive.ObjectID) ([]domain.PlanView, error)
	GetPlan(ctx context.Context, planID primitive.ObjectID, callerID *primitive.ObjectID) (*domain.PlanView, error)

	// Trainer-owned CRUD.
	CreatePlan(ctx context.Context, trainerID primitive.ObjectID, input CreatePlanInput) (*domain.PlanView, error)
	UpdatePlan(ctx context.Context, trainerID, planID primitive.ObjectID, input UpdatePlanInput) (*domain.PlanView, error)
	DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error
	GetTrainerPlans(ctx context.Context, trainerID primitive.ObjectID) ([]domain.PlanView, error)

	// Cover image upload (owner only).
	RequestCoverUploadURL(ctx context.Context, trainerID, planID primitive.ObjectID, contentType string) (*CoverUploadResponse, error)
	ConfirmCoverUpload(ctx context.Context, trainerID, planID primitive.ObjectID, objectKey string) error
}

// --- Service Implementation ---

// planService implements the PlanService interface.
type planService struct {
	planRepo repository.PlanRepository
	userRepo repository.UserRepository
	projector
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanRepository, userRepo repository.UserRepository, fileStorage storage.FileStorage) PlanService {
	return &planService{
		planRepo:  planRepo,
		userRepo:  userRepo,
		projector: projector{userRepo: userRepo, fileStorage: fileStorage},
	}
}

// === Browsing ===

// ListPlans returns every plan, newest first, projected for the caller.
func (s *planService) ListPlans(ctx context.Context, callerID *primitive.ObjectID) ([]domain.PlanView, error) {
	plans, err := s.planRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := s.resolveCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, plans, caller)
}

// GetPlan returns a single plan projected for the caller.
func (s *planService) GetPlan(ctx context.Context, planID primitive.ObjectID, callerID *primitive.ObjectID) (*domain.PlanView, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	caller, err := s.resolveCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	trainer := s.resolveTrainer(ctx, plan.TrainerID)
	view := domain.ProjectPlan(plan, trainer, caller)
	s.attachCoverURL(ctx, plan, &view)
	return &view, nil
}

// === Trainer-owned CRUD ===

// CreatePlan validates and publishes a new plan owned by the trainer.
func (s *planService) CreatePlan(ctx context.Context, trainerID primitive.ObjectID, input CreatePlanInput) (*domain.PlanView, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	if err := validatePlanFields(input.Title, input.Description, input.Price, input.Duration); err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Duration:    input.Duration,
		TrainerID:   trainerID,
		// ID, Subscribers, CreatedAt, UpdatedAt set by the repository
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID

	trainer := s.resolveTrainer(ctx, trainerID)
	view := domain.ProjectPlanOwner(plan, trainer)
	return &view, nil
}

// UpdatePlan merges the provided fields into the plan after an ownership check.
func (s *planService) UpdatePlan(ctx context.Context, trainerID, planID primitive.ObjectID, input UpdatePlanInput) (*domain.PlanView, error) {
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		plan.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		plan.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		plan.Price = *input.Price
	}
	if input.Duration != nil {
		plan.Duration = *input.Duration
	}

	// Re-validate the merged state, not just the provided fields.
	if err := validatePlanFields(plan.Title, plan.Description, plan.Price, plan.Duration); err != nil {
		return nil, err
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	trainer := s.resolveTrainer(ctx, trainerID)
	view := domain.ProjectPlanOwner(plan, trainer)
	s.attachCoverURL(ctx, plan, &view)
	return &view, nil
}

// DeletePlan removes a plan permanently. Subscribers' purchase references are
// left dangling; readers treat a missing plan as simply absent.
func (s *planService) DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return err
	}

	if err := s.planRepo.Delete(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	// Best-effort cleanup of the cover object; the plan record is already gone.
	if plan.CoverImageKey != "" && s.fileStorage != nil {
		if err := s.fileStorage.DeleteObject(ctx, plan.CoverImageKey); err != nil {
			logrus.WithError(err).WithField("plan", planID.Hex()).Warn("failed to delete cover image object")
		}
	}
	return nil
}

// GetTrainerPlans returns the trainer's own plans with the full owner view.
func (s *planService) GetTrainerPlans(ctx context.Context, trainerID primitive.ObjectID) ([]domain.PlanView, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	plans, err := s.planRepo.GetByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	trainer := s.resolveTrainer(ctx, trainerID)
	views := make([]domain.PlanView, 0, len(plans))
	for i := range plans {
		view := domain.ProjectPlanOwner(&plans[i], trainer)
		s.attachCoverURL(ctx, &plans[i], &view)
		views = append(views, view)
	}
	return views, nil
}

// === Cover images ===

// RequestCoverUploadURL generates a presigned PUT URL for a plan cover image.
func (s *planService) RequestCoverUploadURL(ctx context.Context, trainerID, planID primitive.ObjectID, contentType string) (*CoverUploadResponse, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, fmt.Errorf("%w: cover must be an image content type", ErrValidation)
	}
	if _, err := s.ownedPlan(ctx, trainerID, planID); err != nil {
		return nil, err
	}

	ext := extensionForContentType(contentType)
	objectKey := path.Join("plans", planID.Hex(), "cover-"+uuid.NewString()+ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrCoverURLFailed
	}

	return &CoverUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmCoverUpload records the uploaded object key on the plan and removes
// the previous cover, if any.
func (s *planService) ConfirmCoverUpload(ctx context.Context, trainerID, planID primitive.ObjectID, objectKey string) error {
	if objectKey == "" || !strings.HasPrefix(objectKey, path.Join("plans", planID.Hex())+"/") {
		return fmt.Errorf("%w: object key does not belong to this plan", ErrValidation)
	}
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return err
	}

	if err := s.planRepo.SetCoverImageKey(ctx, planID, objectKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	if plan.CoverImageKey != "" && plan.CoverImageKey != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, plan.CoverImageKey); err != nil {
			logrus.WithError(err).WithField("plan", planID.Hex()).Warn("failed to delete replaced cover image")
		}
	}
	return nil
}

// === Helpers ===

// ownedPlan fetches the plan and enforces ownership: missing plan maps to
// ErrPlanNotFound, wrong owner to ErrPlanAccessDenied.
func (s *planService) ownedPlan(ctx context.Context, trainerID, planID primitive.ObjectID) (*domain.Plan, error) {
	if trainerID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and plan ID are required")
	}
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.TrainerID != trainerID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

// validatePlanFields enforces the plan field constraints.
func validatePlanFields(title, description string, price float64, duration int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if duration < 1 {
		return fmt.Errorf("%w: duration must be at least 1 day", ErrValidation)
	}
	return nil
}

func extensionForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
