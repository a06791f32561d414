package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.TrainerID == primitive.NilObjectID || plan.Title == "" {
		return primitive.NilObjectID, errors.New("plan requires trainerId and title")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Subscribers == nil {
		plan.Subscribers = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves every plan, newest first.
func (r *mongoPlanRepository) GetAll(ctx context.Context) ([]domain.Plan, error) {
	return r.findSorted(ctx, bson.M{})
}

// GetByTrainerID retrieves all plans owned by a trainer, newest first.
func (r *mongoPlanRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	return r.findSorted(ctx, bson.M{"trainer": trainerID})
}

// GetByTrainerIDs retrieves all plans owned by any of the given trainers,
// newest first. An empty id set yields an empty result, not an error.
func (r *mongoPlanRepository) GetByTrainerIDs(ctx context.Context, trainerIDs []primitive.ObjectID) ([]domain.Plan, error) {
	if len(trainerIDs) == 0 {
		return []domain.Plan{}, nil
	}
	return r.findSorted(ctx, bson.M{"trainer": bson.M{"$in": trainerIDs}})
}

func (r *mongoPlanRepository) findSorted(ctx context.Context, filter bson.M) ([]domain.Plan, error) {
	var plans []domain.Plan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.Plan{}
	}
	return plans, nil
}

// Update persists the mutable plan fields. Owner, subscribers and createdAt
// are never touched here.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}

	filter := bson.M{"_id": plan.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"title":       plan.Title,
			"description": plan.Description,
			"price":       plan.Price,
			"duration":    plan.Duration,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the plan permanently. Ownership is checked by the service
// layer before calling this.
func (r *mongoPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddSubscriber appends the user to the plan's subscriber set. This is the
// authoritative write for the subscription edge: the filter excludes plans
// already containing the user, so the check and the write happen atomically
// and two concurrent subscribes yield exactly one success.
func (r *mongoPlanRepository) AddSubscriber(ctx context.Context, planID, userID primitive.ObjectID) error {
	filter := bson.M{
		"_id":         planID,
		"subscribers": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{"subscribers": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Zero matches means the plan is gone or the user is already
		// subscribed. Disambiguate with an existence check.
		if _, getErr := r.GetByID(ctx, planID); getErr != nil {
			return getErr // repository.ErrNotFound or a real error
		}
		return repository.ErrAlreadyExists
	}
	return nil
}

// RemoveSubscriber undoes AddSubscriber. Only used to compensate a failed
// mirror write on the account side; there is no unsubscribe operation.
func (r *mongoPlanRepository) RemoveSubscriber(ctx context.Context, planID, userID primitive.ObjectID) error {
	filter := bson.M{"_id": planID}
	update := bson.M{
		"$pull": bson.M{"subscribers": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// SetCoverImageKey persists the S3 object key of the plan's cover image.
func (r *mongoPlanRepository) SetCoverImageKey(ctx context.Context, planID primitive.ObjectID, objectKey string) error {
	filter := bson.M{"_id": planID}
	update := bson.M{
		"$set": bson.M{
			"coverImageKey": objectKey,
			"updatedAt":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes for the plans collection.
// Call this once during application startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainer", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
