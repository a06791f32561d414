package service

import (
	"context"
	"sort"
	"time"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUserRepo is an in-memory UserRepository mirroring the conditional-write
// semantics of the Mongo implementation.
type memUserRepo struct {
	users map[primitive.ObjectID]*domain.User

	addFollowErr    error
	addPurchasedErr error
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
	for _, u := range users {
		if u.ID == primitive.NilObjectID {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetTrainers(_ context.Context) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range r.users {
		if u.Role == domain.RoleTrainer {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memUserRepo) AddFollowedTrainer(_ context.Context, userID, trainerID primitive.ObjectID) error {
	if r.addFollowErr != nil {
		return r.addFollowErr
	}
	u, ok := r.users[userID]
	if !ok || u.Follows(trainerID) {
		return repository.ErrAlreadyExists
	}
	u.FollowedTrainers = append(u.FollowedTrainers, trainerID)
	return nil
}

func (r *memUserRepo) RemoveFollowedTrainer(_ context.Context, userID, trainerID primitive.ObjectID) error {
	u, ok := r.users[userID]
	if !ok || !u.Follows(trainerID) {
		return repository.ErrNotFound
	}
	kept := u.FollowedTrainers[:0]
	for _, id := range u.FollowedTrainers {
		if id != trainerID {
			kept = append(kept, id)
		}
	}
	u.FollowedTrainers = kept
	return nil
}

func (r *memUserRepo) AddPurchasedPlan(_ context.Context, userID, planID primitive.ObjectID) error {
	if r.addPurchasedErr != nil {
		return r.addPurchasedErr
	}
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if !u.HasPurchased(planID) {
		u.PurchasedPlans = append(u.PurchasedPlans, planID)
	}
	return nil
}

func (r *memUserRepo) SetResetToken(_ context.Context, userID primitive.ObjectID, tokenHash string, expires time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetPasswordToken = tokenHash
	exp := expires
	u.ResetPasswordExpires = &exp
	return nil
}

func (r *memUserRepo) GetByResetToken(_ context.Context, tokenHash string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetPasswordToken == tokenHash && u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID primitive.ObjectID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return nil
}

// memPlanRepo is an in-memory PlanRepository with the same edge semantics as
// the Mongo implementation.
type memPlanRepo struct {
	plans map[primitive.ObjectID]*domain.Plan

	updateErr error
}

func newMemPlanRepo(plans ...*domain.Plan) *memPlanRepo {
	r := &memPlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
	for _, p := range plans {
		if p.ID == primitive.NilObjectID {
			p.ID = primitive.NewObjectID()
		}
		r.plans[p.ID] = p
	}
	return r
}

func (r *memPlanRepo) Create(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Subscribers == nil {
		plan.Subscribers = []primitive.ObjectID{}
	}
	stored := *plan
	r.plans[plan.ID] = &stored
	return plan.ID, nil
}

func (r *memPlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPlanRepo) GetAll(_ context.Context) ([]domain.Plan, error) {
	return r.sorted(func(*domain.Plan) bool { return true }), nil
}

func (r *memPlanRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	return r.sorted(func(p *domain.Plan) bool { return p.TrainerID == trainerID }), nil
}

func (r *memPlanRepo) GetByTrainerIDs(_ context.Context, trainerIDs []primitive.ObjectID) ([]domain.Plan, error) {
	in := make(map[primitive.ObjectID]bool, len(trainerIDs))
	for _, id := range trainerIDs {
		in[id] = true
	}
	return r.sorted(func(p *domain.Plan) bool { return in[p.TrainerID] }), nil
}

func (r *memPlanRepo) sorted(keep func(*domain.Plan) bool) []domain.Plan {
	out := []domain.Plan{}
	for _, p := range r.plans {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memPlanRepo) Update(_ context.Context, plan *domain.Plan) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	p, ok := r.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Title = plan.Title
	p.Description = plan.Description
	p.Price = plan.Price
	p.Duration = plan.Duration
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memPlanRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *memPlanRepo) AddSubscriber(_ context.Context, planID, userID primitive.ObjectID) error {
	p, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.HasSubscriber(userID) {
		return repository.ErrAlreadyExists
	}
	p.Subscribers = append(p.Subscribers, userID)
	return nil
}

func (r *memPlanRepo) RemoveSubscriber(_ context.Context, planID, userID primitive.ObjectID) error {
	p, ok := r.plans[planID]
	if !ok {
		return nil
	}
	kept := p.Subscribers[:0]
	for _, id := range p.Subscribers {
		if id != userID {
			kept = append(kept, id)
		}
	}
	p.Subscribers = kept
	return nil
}

func (r *memPlanRepo) SetCoverImageKey(_ context.Context, planID primitive.ObjectID, objectKey string) error {
	p, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CoverImageKey = objectKey
	return nil
}

// stubStorage returns deterministic URLs without touching S3.
type stubStorage struct {
	uploadErr   error
	downloadErr error
	deletedKeys []string
}

func (s *stubStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *stubStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if s.downloadErr != nil {
		return "", s.downloadErr
	}
	return "https://storage.test/" + objectKey, nil
}

func (s *stubStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deletedKeys = append(s.deletedKeys, objectKey)
	return nil
}

// stubAuthorizer records calls and answers with a fixed verdict.
type stubAuthorizer struct {
	approved bool
	err      error
	calls    int
}

func (a *stubAuthorizer) Authorize(_ context.Context, _, _ primitive.ObjectID, _ float64) (bool, error) {
	a.calls++
	return a.approved, a.err
}
