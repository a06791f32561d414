package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan represents a paid fitness program published by a trainer.
type Plan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`       // Must be >= 0
	Duration    int                `bson:"duration" json:"duration"` // In days, must be >= 1
	TrainerID   primitive.ObjectID `bson:"trainer" json:"trainerId"` // Owner; immutable after creation

	// Accounts subscribed to this plan. Mirrors User.PurchasedPlans.
	// Grows monotonically; there is no unsubscribe.
	Subscribers []primitive.ObjectID `bson:"subscribers,omitempty" json:"-"`

	// Object key of the optional cover image in S3. Empty when no cover uploaded.
	CoverImageKey string `bson:"coverImageKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasSubscriber reports whether the account is in the plan's subscriber set.
func (p *Plan) HasSubscriber(userID primitive.ObjectID) bool {
	for _, id := range p.Subscribers {
		if id == userID {
			return true
		}
	}
	return false
}
