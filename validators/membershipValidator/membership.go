package membershipValidator

import (
	"academy/services/membership"
	"academy/validators"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type CreatePlanRequest struct {
	Name            string   `json:"name" validate:"required"`
	Description     *string  `json:"description"`
	Type            string   `json:"type" validate:"required,oneof=recurring lifetime"`
	BillingInterval *string  `json:"billingInterval" validate:"omitempty,oneof=monthly yearly"`
	Price           *float64 `json:"price" validate:"required,gte=0"`
	DiscountPercent *float64 `json:"discountPercent" validate:"omitempty,gte=0,lte=100"`
	StripePriceID   *string  `json:"stripePriceId"`
	StripeProductID *string  `json:"stripeProductId"`
	IsActive        *bool    `json:"isActive"`
	CourseIDs       []uint   `json:"courseIds"`
}

func (r *CreatePlanRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
}

// Input converts the request for the plan store.
func (r *CreatePlanRequest) Input() membership.PlanInput {
	return membership.PlanInput{
		Name:            &r.Name,
		Description:     r.Description,
		Type:            &r.Type,
		BillingInterval: r.BillingInterval,
		Price:           r.Price,
		DiscountPercent: r.DiscountPercent,
		StripePriceID:   r.StripePriceID,
		StripeProductID: r.StripeProductID,
		IsActive:        r.IsActive,
		CourseIDs:       r.CourseIDs,
	}
}

type UpdatePlanRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=1"`
	Description     *string  `json:"description"`
	Type            *string  `json:"type" validate:"omitempty,oneof=recurring lifetime"`
	BillingInterval *string  `json:"billingInterval" validate:"omitempty,oneof=monthly yearly"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPercent *float64 `json:"discountPercent" validate:"omitempty,gte=0,lte=100"`
	StripePriceID   *string  `json:"stripePriceId"`
	StripeProductID *string  `json:"stripeProductId"`
	IsActive        *bool    `json:"isActive"`
	CourseIDs       []uint   `json:"courseIds"`
}

func (r *UpdatePlanRequest) Input() membership.PlanInput {
	return membership.PlanInput{
		Name:            r.Name,
		Description:     r.Description,
		Type:            r.Type,
		BillingInterval: r.BillingInterval,
		Price:           r.Price,
		DiscountPercent: r.DiscountPercent,
		StripePriceID:   r.StripePriceID,
		StripeProductID: r.StripeProductID,
		IsActive:        r.IsActive,
		CourseIDs:       r.CourseIDs,
	}
}

type AssignRequest struct {
	StudentID            uint       `json:"studentId" validate:"required"`
	MembershipPlanID     uint       `json:"membershipPlanId" validate:"required"`
	StripeSubscriptionID string     `json:"stripeSubscriptionId"`
	StripeCustomerID     string     `json:"stripeCustomerId"`
	ExpiresAt            *time.Time `json:"expiresAt"`
}

func (r *AssignRequest) Input() membership.AssignInput {
	return membership.AssignInput{
		StudentID:            r.StudentID,
		MembershipPlanID:     r.MembershipPlanID,
		StripeSubscriptionID: strings.TrimSpace(r.StripeSubscriptionID),
		StripeCustomerID:     strings.TrimSpace(r.StripeCustomerID),
		ExpiresAt:            r.ExpiresAt,
	}
}

func CreatePlan() fiber.Handler { return validators.Body[CreatePlanRequest]() }

func UpdatePlan() fiber.Handler { return validators.Body[UpdatePlanRequest]() }

// AssignMembership validates a membership assignment.
func AssignMembership() fiber.Handler { return validators.Body[AssignRequest]() }
