package payment

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authorizer is the capability a subscription purchase needs from a payment
// provider. A real gateway integration implements this; the subscribe flow
// only cares about approved or declined.
type Authorizer interface {
	Authorize(ctx context.Context, userID, planID primitive.ObjectID, amount float64) (approved bool, err error)
}

// SimulatedAuthorizer approves every charge after a fixed delay. It stands in
// for a gateway until a real integration lands.
type SimulatedAuthorizer struct {
	Delay time.Duration
}

// NewSimulatedAuthorizer creates a simulated authorizer with the given delay.
func NewSimulatedAuthorizer(delay time.Duration) *SimulatedAuthorizer {
	return &SimulatedAuthorizer{Delay: delay}
}

// Authorize waits for the configured delay and approves. The wait respects
// request cancellation.
func (a *SimulatedAuthorizer) Authorize(ctx context.Context, userID, planID primitive.ObjectID, amount float64) (bool, error) {
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}
	return true, nil
}
