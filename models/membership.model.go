package models

import "time"

// PlanType enum values
const (
	PlanRecurring = "recurring"
	PlanLifetime  = "lifetime"
)

// BillingInterval enum values
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// MembershipStatus enum values
const (
	MembershipActive   = "active"
	MembershipCanceled = "canceled"
	MembershipExpired  = "expired"
	MembershipPastDue  = "past_due"
)

type MembershipPlan struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	Description     string    `json:"description"`
	Type            string    `gorm:"not null;type:varchar(20)" json:"type"`
	BillingInterval *string   `gorm:"type:varchar(20)" json:"billingInterval"`
	Price           float64   `gorm:"not null" json:"price"`
	StripePriceID   string    `json:"stripePriceId,omitempty"`
	StripeProductID string    `json:"stripeProductId,omitempty"`
	DiscountPercent float64   `gorm:"default:0" json:"discountPercent"`
	IsActive        bool      `gorm:"default:true" json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Courses []Course `gorm:"-" json:"courses,omitempty"`
}

// MembershipTierCourse is the set of courses a plan includes in full.
type MembershipTierCourse struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	MembershipPlanID uint      `gorm:"not null;uniqueIndex:idx_tier_plan_course" json:"membershipPlanId"`
	CourseID         uint      `gorm:"not null;uniqueIndex:idx_tier_plan_course;index" json:"courseId"`
	CreatedAt        time.Time `json:"createdAt"`

	MembershipPlan MembershipPlan `gorm:"foreignKey:MembershipPlanID;constraint:OnDelete:CASCADE" json:"-"`
	Course         Course         `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

type Membership struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	StudentID            uint       `gorm:"not null;index" json:"studentId"`
	MembershipPlanID     uint       `gorm:"not null;index" json:"membershipPlanId"`
	Status               string     `gorm:"not null;type:varchar(20);default:'active'" json:"status"`
	StripeSubscriptionID string     `json:"stripeSubscriptionId,omitempty"`
	StripeCustomerID     string     `json:"stripeCustomerId,omitempty"`
	CurrentPeriodStart   *time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`
	CanceledAt           *time.Time `json:"canceledAt"`
	ExpiresAt            *time.Time `json:"expiresAt"`
	StartedAt            time.Time  `gorm:"not null" json:"startedAt"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	Student        User           `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	MembershipPlan MembershipPlan `gorm:"foreignKey:MembershipPlanID" json:"-"`
}

// EffectivelyActive reports whether the membership grants benefits at t.
func (m Membership) EffectivelyActive(t time.Time) bool {
	if m.Status != MembershipActive {
		return false
	}
	if m.ExpiresAt != nil && !m.ExpiresAt.After(t) {
		return false
	}
	if m.CurrentPeriodEnd != nil && !m.CurrentPeriodEnd.After(t) {
		return false
	}
	return true
}
