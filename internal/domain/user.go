package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between account roles
type Role string

// Define constants for roles
const (
	RoleUser    Role = "user"
	RoleTrainer Role = "trainer"
)

// User represents an account in the system (either a User or a Trainer).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- User-specific ---
	// Trainers this account follows. Only meaningful when Role == RoleUser.
	FollowedTrainers []primitive.ObjectID `bson:"followedTrainers,omitempty" json:"followedTrainers,omitempty"`
	// Plans this account has subscribed to. Mirrors Plan.Subscribers.
	PurchasedPlans []primitive.ObjectID `bson:"purchasedPlans,omitempty" json:"purchasedPlans,omitempty"`

	// --- Password reset ---
	// Stored as the SHA-256 hex of the token handed to the account holder.
	ResetPasswordToken   string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires *time.Time `bson:"resetPasswordExpires,omitempty" json:"-"`
}

// Helper methods
func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsUser() bool {
	return u.Role == RoleUser
}

// Follows reports whether the account currently follows the given trainer.
func (u *User) Follows(trainerID primitive.ObjectID) bool {
	for _, id := range u.FollowedTrainers {
		if id == trainerID {
			return true
		}
	}
	return false
}

// HasPurchased reports whether the account holds a subscription to the plan.
func (u *User) HasPurchased(planID primitive.ObjectID) bool {
	for _, id := range u.PurchasedPlans {
		if id == planID {
			return true
		}
	}
	return false
}
