package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kush1905/FitPlanHub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSocialFixture(t *testing.T) (*memUserRepo, *memPlanRepo, *stubAuthorizer, SocialService) {
	t.Helper()
	userRepo := newMemUserRepo()
	planRepo := newMemPlanRepo()
	authorizer := &stubAuthorizer{approved: true}
	return userRepo, planRepo, authorizer, NewSocialService(userRepo, planRepo, authorizer)
}

func addUser(r *memUserRepo, role domain.Role) *domain.User {
	u := &domain.User{ID: primitive.NewObjectID(), Name: "acct", Email: primitive.NewObjectID().Hex() + "@example.com", Role: role}
	r.users[u.ID] = u
	return u
}

func addPlan(r *memPlanRepo, trainerID primitive.ObjectID, price float64) *domain.Plan {
	p := &domain.Plan{
		ID:          primitive.NewObjectID(),
		Title:       "Plan",
		Description: "Desc",
		Price:       price,
		Duration:    30,
		TrainerID:   trainerID,
		Subscribers: []primitive.ObjectID{},
	}
	r.plans[p.ID] = p
	return p
}

// === Follow ===

func TestFollowTrainer_Success(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)

	followed, err := svc.FollowTrainer(context.Background(), user.ID, trainer.ID)
	require.NoError(t, err)
	assert.Equal(t, trainer.ID, followed.ID)
	assert.Empty(t, followed.PasswordHash)
	assert.True(t, userRepo.users[user.ID].Follows(trainer.ID))
}

func TestFollowTrainer_TrainerMissing(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)

	_, err := svc.FollowTrainer(context.Background(), user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrTrainerNotFound)
}

func TestFollowTrainer_TargetNotATrainer(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	other := addUser(userRepo, domain.RoleUser)

	_, err := svc.FollowTrainer(context.Background(), user.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotATrainer)
}

func TestFollowTrainer_SelfFollowRejected(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	trainer := addUser(userRepo, domain.RoleTrainer)

	_, err := svc.FollowTrainer(context.Background(), trainer.ID, trainer.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestFollowTrainer_DuplicateFails(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)

	_, err := svc.FollowTrainer(context.Background(), user.ID, trainer.ID)
	require.NoError(t, err)

	// The second call must fail, never silently succeed or duplicate.
	_, err = svc.FollowTrainer(context.Background(), user.ID, trainer.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.Len(t, userRepo.users[user.ID].FollowedTrainers, 1)
}

func TestUnfollowTrainer_RestoresPreFollowState(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)
	before := append([]primitive.ObjectID{}, user.FollowedTrainers...)

	_, err := svc.FollowTrainer(context.Background(), user.ID, trainer.ID)
	require.NoError(t, err)
	require.NoError(t, svc.UnfollowTrainer(context.Background(), user.ID, trainer.ID))

	assert.Equal(t, before, append([]primitive.ObjectID{}, userRepo.users[user.ID].FollowedTrainers...))
}

func TestUnfollowTrainer_NotFollowing(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)

	err := svc.UnfollowTrainer(context.Background(), user.ID, trainer.ID)
	assert.ErrorIs(t, err, ErrNotFollowing)
}

// === Trainer directory ===

func TestListTrainers_FollowFlags(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	followed := addUser(userRepo, domain.RoleTrainer)
	other := addUser(userRepo, domain.RoleTrainer)
	user.FollowedTrainers = []primitive.ObjectID{followed.ID}

	infos, err := svc.ListTrainers(context.Background(), &user.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[string]TrainerInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	assert.True(t, byID[followed.ID.Hex()].IsFollowing)
	assert.False(t, byID[other.ID.Hex()].IsFollowing)
}

func TestListTrainers_AnonymousHasNoFlags(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	addUser(userRepo, domain.RoleTrainer)

	infos, err := svc.ListTrainers(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.False(t, infos[0].IsFollowing)
}

// === Subscribe ===

func TestSubscribe_Success(t *testing.T) {
	userRepo, planRepo, authorizer, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)
	plan := addPlan(planRepo, trainer.ID, 29.99)

	receipt, err := svc.Subscribe(context.Background(), user.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID.Hex(), receipt.PlanID)
	assert.Equal(t, 29.99, receipt.Price)
	assert.Equal(t, 1, authorizer.calls)

	// Both sides of the edge must agree.
	assert.True(t, planRepo.plans[plan.ID].HasSubscriber(user.ID))
	assert.True(t, userRepo.users[user.ID].HasPurchased(plan.ID))
}

func TestSubscribe_PlanMissing(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)

	_, err := svc.Subscribe(context.Background(), user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestSubscribe_SecondCallAlwaysFails(t *testing.T) {
	userRepo, planRepo, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)
	plan := addPlan(planRepo, trainer.ID, 10)

	_, err := svc.Subscribe(context.Background(), user.ID, plan.ID)
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), user.ID, plan.ID)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
	assert.Len(t, planRepo.plans[plan.ID].Subscribers, 1)
	assert.Len(t, userRepo.users[user.ID].PurchasedPlans, 1)
}

func TestSubscribe_PaymentDeclined(t *testing.T) {
	userRepo, planRepo, authorizer, svc := newSocialFixture(t)
	authorizer.approved = false
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)
	plan := addPlan(planRepo, trainer.ID, 10)

	_, err := svc.Subscribe(context.Background(), user.ID, plan.ID)
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// No edge written on either side.
	assert.Empty(t, planRepo.plans[plan.ID].Subscribers)
	assert.Empty(t, userRepo.users[user.ID].PurchasedPlans)
}

func TestSubscribe_MirrorWriteFailureCompensates(t *testing.T) {
	userRepo, planRepo, _, svc := newSocialFixture(t)
	userRepo.addPurchasedErr = errors.New("write failed")
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)
	plan := addPlan(planRepo, trainer.ID, 10)

	_, err := svc.Subscribe(context.Background(), user.ID, plan.ID)
	require.Error(t, err)

	// The authoritative side was rolled back; the edge never half-exists.
	assert.Empty(t, planRepo.plans[plan.ID].Subscribers)
	assert.Empty(t, userRepo.users[user.ID].PurchasedPlans)
}

func TestGetFollowing_DanglingIDsDropOut(t *testing.T) {
	userRepo, _, _, svc := newSocialFixture(t)
	user := addUser(userRepo, domain.RoleUser)
	trainer := addUser(userRepo, domain.RoleTrainer)
	user.FollowedTrainers = []primitive.ObjectID{trainer.ID, primitive.NewObjectID()}

	trainers, err := svc.GetFollowing(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, trainers, 1)
	assert.Equal(t, trainer.ID, trainers[0].ID)
}
