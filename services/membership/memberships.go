package membership

import (
	"academy/errs"
	"academy/models"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignInput describes a new membership for a student.
type AssignInput struct {
	StudentID            uint
	MembershipPlanID     uint
	StripeSubscriptionID string
	StripeCustomerID     string
	ExpiresAt            *time.Time
}

// MembershipRow is a membership listed with its student and plan.
type MembershipRow struct {
	models.Membership
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
	PlanName     string `json:"planName"`
}

// Store assigns and cancels memberships.
type Store struct {
	db       *gorm.DB
	resolver *Resolver
	log      *zap.Logger
	now      func() time.Time
}

func NewStore(db *gorm.DB, resolver *Resolver, log *zap.Logger) *Store {
	return &Store{db: db, resolver: resolver, log: log, now: resolver.now}
}

// Assign gives a student a membership on an active plan. A student may hold
// only one effectively active membership at a time.
func (s *Store) Assign(ctx context.Context, in AssignInput) (*models.Membership, error) {
	if in.StudentID == 0 || in.MembershipPlanID == 0 {
		return nil, errs.E(errs.Validation, "Student ID and membership plan ID are required")
	}

	var student models.User
	err := s.db.WithContext(ctx).First(&student, in.StudentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Student not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch student")
	}

	var plan models.MembershipPlan
	err = s.db.WithContext(ctx).Where("id = ? AND is_active = ?", in.MembershipPlanID, true).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Membership plan not found or inactive")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch membership plan")
	}

	current, err := s.resolver.active(ctx, in.StudentID)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to check existing membership")
	}
	if current != nil {
		return nil, errs.E(errs.Validation, "Student already has an active membership")
	}

	now := s.now().UTC()
	m := models.Membership{
		StudentID:            in.StudentID,
		MembershipPlanID:     plan.ID,
		Status:               models.MembershipActive,
		StripeSubscriptionID: in.StripeSubscriptionID,
		StripeCustomerID:     in.StripeCustomerID,
		StartedAt:            now,
	}
	applyTerm(&m, plan, now, in.ExpiresAt)

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to assign membership")
	}
	s.log.Info("membership assigned",
		zap.Uint("membershipId", m.ID),
		zap.Uint("studentId", m.StudentID),
		zap.Uint("planId", plan.ID))
	return &m, nil
}

// applyTerm sets the period and expiry fields for plan starting at now.
func applyTerm(m *models.Membership, plan models.MembershipPlan, now time.Time, expiresAt *time.Time) {
	switch {
	case plan.Type == models.PlanLifetime:
		exp := now.AddDate(100, 0, 0)
		if expiresAt != nil {
			exp = expiresAt.UTC()
		}
		m.ExpiresAt = &exp
	case plan.BillingInterval != nil:
		var end time.Time
		if *plan.BillingInterval == models.BillingYearly {
			end = now.AddDate(1, 0, 0)
		} else {
			end = now.AddDate(0, 1, 0)
		}
		start := now
		m.CurrentPeriodStart = &start
		m.CurrentPeriodEnd = &end
		exp := end
		if expiresAt != nil {
			exp = expiresAt.UTC()
		}
		m.ExpiresAt = &exp
	}
}

// Cancel ends a membership. Canceling an already canceled membership is a no-op.
func (s *Store) Cancel(ctx context.Context, membershipID uint) (*models.Membership, error) {
	var m models.Membership
	err := s.db.WithContext(ctx).First(&m, membershipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Membership not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch membership")
	}
	if m.Status == models.MembershipCanceled {
		return &m, nil
	}

	now := s.now().UTC()
	err = s.db.WithContext(ctx).Model(&m).Updates(map[string]interface{}{
		"status":      models.MembershipCanceled,
		"canceled_at": now,
	}).Error
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to cancel membership")
	}
	m.Status = models.MembershipCanceled
	m.CanceledAt = &now
	s.log.Info("membership canceled", zap.Uint("membershipId", m.ID))
	return &m, nil
}

// ListAll returns every membership, newest first, with student and plan names.
func (s *Store) ListAll(ctx context.Context) ([]MembershipRow, error) {
	var ms []models.Membership
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("MembershipPlan").
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch memberships")
	}
	rows := make([]MembershipRow, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, MembershipRow{
			Membership:   m,
			StudentName:  m.Student.FullName(),
			StudentEmail: m.Student.Email,
			PlanName:     m.MembershipPlan.Name,
		})
	}
	return rows, nil
}
