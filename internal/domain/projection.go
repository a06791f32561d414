package domain

import "time"

// TrainerRef is the slice of a trainer account that is safe to embed in plan
// responses. Never carries credentials.
type TrainerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PlanView is the projection of a plan for a specific caller. Two shapes share
// the struct: the full view for subscribers (and owners), and the preview for
// everyone else, which withholds description, duration, subscriber count and
// creation time as the paywall mechanism.
type PlanView struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Price            float64    `json:"price"`
	Duration         int        `json:"duration,omitempty"`
	Trainer          TrainerRef `json:"trainer"`
	SubscribersCount *int       `json:"subscribersCount,omitempty"`
	IsSubscribed     bool       `json:"isSubscribed"`
	CoverImageURL    string     `json:"coverImageUrl,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
}

// NewTrainerRef builds the embeddable trainer reference. A nil trainer (the
// owner account was deleted or not resolvable) yields a zero ref rather than
// an error; readers must tolerate dangling references.
func NewTrainerRef(trainer *User) TrainerRef {
	if trainer == nil {
		return TrainerRef{}
	}
	return TrainerRef{
		ID:    trainer.ID.Hex(),
		Name:  trainer.Name,
		Email: trainer.Email,
	}
}

// ProjectPlan computes the projection of a plan for the given caller. The
// caller may be nil (anonymous). A caller is subscribed iff the plan's id is
// in its purchased set; the plan-side subscriber set is the same edge and the
// two must agree.
func ProjectPlan(plan *Plan, trainer *User, caller *User) PlanView {
	subscribed := caller != nil && caller.HasPurchased(plan.ID)
	if subscribed {
		return projectFull(plan, trainer, true)
	}
	return PlanView{
		ID:           plan.ID.Hex(),
		Title:        plan.Title,
		Trainer:      NewTrainerRef(trainer),
		Price:        plan.Price,
		IsSubscribed: false,
	}
}

// ProjectPlanOwner computes the owner's view of their own plan. Owners always
// see every field; IsSubscribed still reflects the purchase edge, which for a
// trainer-owned listing is normally false.
func ProjectPlanOwner(plan *Plan, trainer *User) PlanView {
	return projectFull(plan, trainer, false)
}

func projectFull(plan *Plan, trainer *User, subscribed bool) PlanView {
	count := len(plan.Subscribers)
	createdAt := plan.CreatedAt
	return PlanView{
		ID:               plan.ID.Hex(),
		Title:            plan.Title,
		Description:      plan.Description,
		Price:            plan.Price,
		Duration:         plan.Duration,
		Trainer:          NewTrainerRef(trainer),
		SubscribersCount: &count,
		IsSubscribed:     subscribed,
		CreatedAt:        &createdAt,
	}
}
