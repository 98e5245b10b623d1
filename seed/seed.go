// Package seed creates the default membership plans and the practice exam.
package seed

import (
	"academy/models"
	"academy/services/membership"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNoCourses is returned by Plans when there is nothing to include.
var ErrNoCourses = errors.New("no active courses; create courses first")

type planSeed struct {
	name, description, planType, interval string
	price, discount                       float64
	// includeFirst limits the included courses to the first n; 0 means all.
	includeFirst int
}

var defaultPlans = []planSeed{
	{"Basic", "Access to selected courses with a discount on all other courses", models.PlanRecurring, models.BillingMonthly, 29.99, 10, 2},
	{"Premium", "Full access to all courses plus maximum discount on additional purchases", models.PlanRecurring, models.BillingMonthly, 49.99, 25, 0},
	{"Premium", "Full access to all courses plus maximum discount on additional purchases (Yearly - Save 20%)", models.PlanRecurring, models.BillingYearly, 479.99, 25, 0},
	{"Lifetime", "Lifetime access to all courses with maximum discount on future courses", models.PlanLifetime, "", 999.99, 30, 0},
}

// Plans creates the default plans when no plan exists yet. It returns the
// number of plans created.
func Plans(ctx context.Context, db *gorm.DB, store *membership.PlanStore, log *zap.Logger) (int, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&models.MembershipPlan{}).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		log.Info("membership plans already exist", zap.Int64("count", existing))
		return 0, nil
	}

	var courseIDs []uint
	if err := db.WithContext(ctx).Model(&models.Course{}).
		Where("is_active = ? AND slug <> ?", true, models.PracticeExamSlug).
		Order("id ASC").Pluck("id", &courseIDs).Error; err != nil {
		return 0, err
	}
	if len(courseIDs) == 0 {
		return 0, ErrNoCourses
	}

	for _, p := range defaultPlans {
		ids := courseIDs
		if p.includeFirst > 0 && p.includeFirst < len(ids) {
			ids = ids[:p.includeFirst]
		}
		name, desc, typ := p.name, p.description, p.planType
		price, discount := p.price, p.discount
		in := membership.PlanInput{
			Name:            &name,
			Description:     &desc,
			Type:            &typ,
			Price:           &price,
			DiscountPercent: &discount,
			CourseIDs:       ids,
		}
		if p.interval != "" {
			interval := p.interval
			in.BillingInterval = &interval
		}
		plan, err := store.Create(ctx, in)
		if err != nil {
			return 0, fmt.Errorf("create plan %s: %w", p.name, err)
		}
		log.Info("membership plan seeded", zap.Uint("planId", plan.ID), zap.String("name", plan.Name), zap.Int("courses", len(ids)))
	}
	return len(defaultPlans), nil
}

// PracticeExam creates the free practice exam course, or refreshes its exam
// when it already exists. It reports whether the course was created.
func PracticeExam(ctx context.Context, db *gorm.DB, log *zap.Logger) (bool, error) {
	var course models.Course
	err := db.WithContext(ctx).Where("slug = ?", models.PracticeExamSlug).First(&course).Error
	switch {
	case err == nil:
		if err := db.WithContext(ctx).Model(&course).Updates(map[string]interface{}{
			"exam":      datatypes.NewJSONType(practiceExam),
			"price":     0,
			"is_active": true,
		}).Error; err != nil {
			return false, err
		}
		log.Info("practice exam refreshed", zap.Uint("courseId", course.ID))
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, err
	}

	course = models.Course{
		Name:         "Private Security Level II Practice Examination",
		Description:  "Free practice examination covering security officer responsibilities, ethics, use of force, reporting, and emergency procedures.",
		CourseNumber: models.PracticeExamSlug,
		Slug:         models.PracticeExamSlug,
		Price:        0,
		Duration:     60,
		IsActive:     true,
	}
	course.SetExam(practiceExam)
	if err := db.WithContext(ctx).Create(&course).Error; err != nil {
		return false, err
	}
	log.Info("practice exam seeded", zap.Uint("courseId", course.ID))
	return true, nil
}
