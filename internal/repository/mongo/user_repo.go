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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new account into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		// The unique index on email turns a concurrent double-signup into a
		// deterministic duplicate key error.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves an account by its email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves an account by its MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs retrieves all accounts whose id is in the given set. Missing ids
// are simply absent from the result; callers tolerate dangling references.
func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	var users []domain.User
	filter := bson.M{"_id": bson.M{"$in": ids}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetTrainers retrieves all trainer accounts, newest first.
func (r *mongoUserRepository) GetTrainers(ctx context.Context) ([]domain.User, error) {
	var trainers []domain.User
	filter := bson.M{"role": domain.RoleTrainer}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &trainers); err != nil {
		return nil, err
	}
	return trainers, nil
}

// AddFollowedTrainer appends the trainer to the account's follow set.
// The filter excludes documents already containing the trainer, so the
// check and the write are a single atomic operation: a concurrent duplicate
// follow matches zero documents and surfaces as ErrAlreadyExists.
func (r *mongoUserRepository) AddFollowedTrainer(ctx context.Context, userID, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":              userID,
		"followedTrainers": bson.M{"$ne": trainerID},
	}
	update := bson.M{
		"$addToSet": bson.M{"followedTrainers": trainerID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the account is gone or the edge already exists. The caller
		// has already resolved the account, so report the duplicate.
		return repository.ErrAlreadyExists
	}
	return nil
}

// RemoveFollowedTrainer removes the trainer from the account's follow set.
// Matching on the edge itself makes "not following" a zero-match, reported
// as ErrNotFound.
func (r *mongoUserRepository) RemoveFollowedTrainer(ctx context.Context, userID, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":              userID,
		"followedTrainers": trainerID,
	}
	update := bson.M{
		"$pull": bson.M{"followedTrainers": trainerID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
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

// AddPurchasedPlan mirrors the subscription edge onto the account document.
// $addToSet keeps the write idempotent; the authoritative duplicate check
// lives on the plan side.
func (r *mongoUserRepository) AddPurchasedPlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$addToSet": bson.M{"purchasedPlans": planID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
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

// SetResetToken stores the hashed reset token and its expiry on the account.
func (r *mongoUserRepository) SetResetToken(ctx context.Context, userID primitive.ObjectID, tokenHash string, expires time.Time) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$set": bson.M{
			"resetPasswordToken":   tokenHash,
			"resetPasswordExpires": expires.UTC(),
			"updatedAt":            time.Now().UTC(),
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

// GetByResetToken retrieves the account holding an unexpired reset token hash.
func (r *mongoUserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{
		"resetPasswordToken":   tokenHash,
		"resetPasswordExpires": bson.M{"$gt": time.Now().UTC()},
	}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword replaces the password hash and clears any pending reset token.
func (r *mongoUserRepository) UpdatePassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$set": bson.M{
			"passwordHash": passwordHash,
			"updatedAt":    time.Now().UTC(),
		},
		"$unset": bson.M{
			"resetPasswordToken":   "",
			"resetPasswordExpires": "",
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

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
