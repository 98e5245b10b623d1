package membership

import (
	"academy/errs"
	"academy/models"
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlanInput carries the fields of a plan create or update.
type PlanInput struct {
	Name            *string
	Description     *string
	Type            *string
	BillingInterval *string
	Price           *float64
	DiscountPercent *float64
	StripePriceID   *string
	StripeProductID *string
	IsActive        *bool
	CourseIDs       []uint // nil leaves the course set untouched on update
}

// PlanStore manages membership plans and their included course sets.
type PlanStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPlanStore(db *gorm.DB, log *zap.Logger) *PlanStore {
	return &PlanStore{db: db, log: log}
}

// ListActive returns active plans ordered by price, each with its active courses.
func (s *PlanStore) ListActive(ctx context.Context) ([]models.MembershipPlan, error) {
	plans := []models.MembershipPlan{}
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("price ASC").Find(&plans).Error; err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch membership plans")
	}
	for i := range plans {
		courses, err := PlanCourses(ctx, s.db, plans[i].ID, true)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, err, "Failed to fetch plan courses")
		}
		plans[i].Courses = publicCourses(courses)
	}
	return plans, nil
}

// Get returns a plan with all of its courses.
func (s *PlanStore) Get(ctx context.Context, id uint) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := s.db.WithContext(ctx).First(&plan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Membership plan not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch membership plan")
	}
	courses, err := PlanCourses(ctx, s.db, plan.ID, false)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch plan courses")
	}
	plan.Courses = publicCourses(courses)
	return &plan, nil
}

// Courses returns the active courses of a plan.
func (s *PlanStore) Courses(ctx context.Context, planID uint) ([]models.Course, error) {
	if _, err := s.Get(ctx, planID); err != nil {
		return nil, err
	}
	courses, err := PlanCourses(ctx, s.db, planID, true)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch plan courses")
	}
	return publicCourses(courses), nil
}

// Create inserts a plan and its course set in one transaction.
func (s *PlanStore) Create(ctx context.Context, in PlanInput) (*models.MembershipPlan, error) {
	if in.Name == nil || *in.Name == "" || in.Type == nil || in.Price == nil {
		return nil, errs.E(errs.Validation, "Name, type, and price are required")
	}
	plan := models.MembershipPlan{IsActive: true}
	applyPlanInput(&plan, in)
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		return replaceCourses(tx, plan.ID, in.CourseIDs)
	})
	if err != nil {
		return nil, planWriteError(err, "Failed to create membership plan")
	}
	s.log.Info("membership plan created", zap.Uint("planId", plan.ID), zap.String("name", plan.Name))
	return s.Get(ctx, plan.ID)
}

// Update applies the given fields; a non-nil CourseIDs replaces the course set.
func (s *PlanStore) Update(ctx context.Context, id uint, in PlanInput) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := s.db.WithContext(ctx).First(&plan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Membership plan not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch membership plan")
	}

	applyPlanInput(&plan, in)
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}
		if in.CourseIDs == nil {
			return nil
		}
		return replaceCourses(tx, plan.ID, in.CourseIDs)
	})
	if err != nil {
		return nil, planWriteError(err, "Failed to update membership plan")
	}
	return s.Get(ctx, plan.ID)
}

// Deactivate soft-deletes a plan. Existing memberships keep working.
func (s *PlanStore) Deactivate(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.MembershipPlan{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return errs.Wrap(errs.Internal, res.Error, "Failed to deactivate membership plan")
	}
	if res.RowsAffected == 0 {
		return errs.E(errs.NotFound, "Membership plan not found")
	}
	return nil
}

func applyPlanInput(plan *models.MembershipPlan, in PlanInput) {
	if in.Name != nil {
		plan.Name = *in.Name
	}
	if in.Description != nil {
		plan.Description = *in.Description
	}
	if in.Type != nil {
		plan.Type = *in.Type
	}
	if in.BillingInterval != nil {
		bi := *in.BillingInterval
		if bi == "" {
			plan.BillingInterval = nil
		} else {
			plan.BillingInterval = &bi
		}
	}
	if in.Price != nil {
		plan.Price = *in.Price
	}
	if in.DiscountPercent != nil {
		plan.DiscountPercent = *in.DiscountPercent
	}
	if in.StripePriceID != nil {
		plan.StripePriceID = *in.StripePriceID
	}
	if in.StripeProductID != nil {
		plan.StripeProductID = *in.StripeProductID
	}
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
	if plan.Type == models.PlanLifetime {
		plan.BillingInterval = nil
	}
}

func validatePlan(plan models.MembershipPlan) error {
	switch plan.Type {
	case models.PlanLifetime:
	case models.PlanRecurring:
		if plan.BillingInterval == nil {
			return errs.E(errs.Validation, "Billing interval is required for recurring plans")
		}
		if bi := *plan.BillingInterval; bi != models.BillingMonthly && bi != models.BillingYearly {
			return errs.E(errs.Validation, "Billing interval must be monthly or yearly")
		}
	default:
		return errs.E(errs.Validation, "Type must be recurring or lifetime")
	}
	if plan.Price < 0 {
		return errs.E(errs.Validation, "Price must not be negative")
	}
	if plan.DiscountPercent < 0 || plan.DiscountPercent > 100 {
		return errs.E(errs.Validation, "Discount percent must be between 0 and 100")
	}
	return nil
}

func replaceCourses(tx *gorm.DB, planID uint, courseIDs []uint) error {
	if err := tx.Where("membership_plan_id = ?", planID).Delete(&models.MembershipTierCourse{}).Error; err != nil {
		return err
	}
	seen := make(map[uint]bool, len(courseIDs))
	for _, cid := range courseIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		var n int64
		if err := tx.Model(&models.Course{}).Where("id = ?", cid).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return errs.E(errs.Validation, "Course %d does not exist", cid)
		}
		if err := tx.Omit(clause.Associations).Create(&models.MembershipTierCourse{MembershipPlanID: planID, CourseID: cid}).Error; err != nil {
			return err
		}
	}
	return nil
}

func planWriteError(err error, msg string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Wrap(errs.Conflict, err, "Duplicate entry")
	}
	return errs.Wrap(errs.Internal, err, msg)
}

func publicCourses(in []models.Course) []models.Course {
	for i := range in {
		in[i] = in[i].Public()
	}
	return in
}
