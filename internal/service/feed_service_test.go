package service

import (
	"context"
	"testing"
	"time"

	"github.com/kush1905/FitPlanHub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newFeedFixture(t *testing.T) (*memUserRepo, *memPlanRepo, FeedService) {
	t.Helper()
	userRepo := newMemUserRepo()
	planRepo := newMemPlanRepo()
	return userRepo, planRepo, NewFeedService(planRepo, userRepo, &stubStorage{})
}

func TestGetFeed_UnionOfFollowedTrainers(t *testing.T) {
	userRepo, planRepo, svc := newFeedFixture(t)
	followedA := addUser(userRepo, domain.RoleTrainer)
	followedB := addUser(userRepo, domain.RoleTrainer)
	unfollowed := addUser(userRepo, domain.RoleTrainer)
	user := addUser(userRepo, domain.RoleUser)
	user.FollowedTrainers = []primitive.ObjectID{followedA.ID, followedB.ID}

	oldest := addPlan(planRepo, followedA.ID, 10)
	oldest.CreatedAt = time.Now().Add(-3 * time.Hour)
	middle := addPlan(planRepo, followedB.ID, 20)
	middle.CreatedAt = time.Now().Add(-2 * time.Hour)
	newest := addPlan(planRepo, followedA.ID, 30)
	newest.CreatedAt = time.Now().Add(-1 * time.Hour)
	addPlan(planRepo, unfollowed.ID, 40)

	feed, err := svc.GetFeed(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, newest.ID.Hex(), feed[0].ID)
	assert.Equal(t, middle.ID.Hex(), feed[1].ID)
	assert.Equal(t, oldest.ID.Hex(), feed[2].ID)
}

func TestGetFeed_ProjectsPerItem(t *testing.T) {
	// Following a trainer grants no visibility; only the subscribed item
	// comes back with the paywalled fields.
	userRepo, planRepo, svc := newFeedFixture(t)
	trainer := addUser(userRepo, domain.RoleTrainer)
	user := addUser(userRepo, domain.RoleUser)
	user.FollowedTrainers = []primitive.ObjectID{trainer.ID}

	purchased := addPlan(planRepo, trainer.ID, 10)
	purchased.CreatedAt = time.Now().Add(-2 * time.Hour)
	purchased.Subscribers = []primitive.ObjectID{user.ID}
	user.PurchasedPlans = []primitive.ObjectID{purchased.ID}
	locked := addPlan(planRepo, trainer.ID, 20)
	locked.CreatedAt = time.Now().Add(-1 * time.Hour)

	feed, err := svc.GetFeed(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	assert.Equal(t, locked.ID.Hex(), feed[0].ID)
	assert.False(t, feed[0].IsSubscribed)
	assert.Empty(t, feed[0].Description)
	assert.Nil(t, feed[0].SubscribersCount)

	assert.Equal(t, purchased.ID.Hex(), feed[1].ID)
	assert.True(t, feed[1].IsSubscribed)
	assert.Equal(t, "Desc", feed[1].Description)
	require.NotNil(t, feed[1].SubscribersCount)
	assert.Equal(t, 1, *feed[1].SubscribersCount)
}

func TestGetFeed_EmptyWhenFollowingNobody(t *testing.T) {
	userRepo, planRepo, svc := newFeedFixture(t)
	trainer := addUser(userRepo, domain.RoleTrainer)
	user := addUser(userRepo, domain.RoleUser)
	addPlan(planRepo, trainer.ID, 10)

	feed, err := svc.GetFeed(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestGetFeed_UserMissing(t *testing.T) {
	_, _, svc := newFeedFixture(t)

	_, err := svc.GetFeed(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
