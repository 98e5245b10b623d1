package membership

import (
	"academy/models"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Via says how access to a course was granted.
type Via string

const (
	ViaNone       Via = "none"
	ViaFree       Via = "free"
	ViaMembership Via = "membership"
)

// ActiveMembership is the student's current membership with its plan terms.
type ActiveMembership struct {
	ID               uint       `json:"id"`
	MembershipPlanID uint       `json:"membershipPlanId"`
	PlanName         string     `json:"planName"`
	PlanType         string     `json:"planType"`
	DiscountPercent  float64    `json:"discountPercent"`
	StartedAt        time.Time  `json:"startedAt"`
	ExpiresAt        *time.Time `json:"expiresAt"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
}

// Access is the entitlement decision for one (student, course) pair.
type Access struct {
	HasAccess  bool
	Via        Via
	Membership *ActiveMembership
}

// Discount returns the membership discount percentage, 0 without membership.
func (a Access) Discount() float64 {
	if a.Membership == nil {
		return 0
	}
	return a.Membership.DiscountPercent
}

// Entitled reports whether a course at price may be used under a.
// Zero-priced courses are open to everyone.
func Entitled(price float64, a Access) bool {
	return price == 0 || a.HasAccess
}

// LookupError means access could not be determined. Callers must treat it as
// no access.
type LookupError struct {
	StudentID uint
	CourseID  uint
	Err       error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("could not determine access for student %d course %d: %v", e.StudentID, e.CourseID, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Resolver answers entitlement questions from the membership tables.
type Resolver struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewResolver(db *gorm.DB, log *zap.Logger) *Resolver {
	return &Resolver{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the time source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// active loads the most recently started, effectively active membership.
// It returns nil, nil when the student has none.
func (r *Resolver) active(ctx context.Context, studentID uint) (*ActiveMembership, error) {
	now := r.now().UTC()

	var m models.Membership
	err := r.db.WithContext(ctx).
		Preload("MembershipPlan").
		Where("student_id = ? AND status = ?", studentID, models.MembershipActive).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("current_period_end IS NULL OR current_period_end > ?", now).
		Order("started_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &ActiveMembership{
		ID:               m.ID,
		MembershipPlanID: m.MembershipPlanID,
		PlanName:         m.MembershipPlan.Name,
		PlanType:         m.MembershipPlan.Type,
		DiscountPercent:  m.MembershipPlan.DiscountPercent,
		StartedAt:        m.StartedAt,
		ExpiresAt:        m.ExpiresAt,
		CurrentPeriodEnd: m.CurrentPeriodEnd,
	}, nil
}

// CheckAccess resolves whether studentID may use courseID through a
// membership. It never grants zero-priced courses by itself; see Entitled.
// On a query failure it returns Access{} and a *LookupError.
func (r *Resolver) CheckAccess(ctx context.Context, studentID, courseID uint) (Access, error) {
	m, err := r.active(ctx, studentID)
	if err != nil {
		r.log.Error("membership lookup failed", zap.Uint("studentId", studentID), zap.Error(err))
		return Access{Via: ViaNone}, &LookupError{StudentID: studentID, CourseID: courseID, Err: err}
	}
	if m == nil {
		return Access{Via: ViaNone}, nil
	}

	var count int64
	err = r.db.WithContext(ctx).Model(&models.MembershipTierCourse{}).
		Where("membership_plan_id = ? AND course_id = ?", m.MembershipPlanID, courseID).
		Count(&count).Error
	if err != nil {
		r.log.Error("tier course lookup failed", zap.Uint("planId", m.MembershipPlanID), zap.Error(err))
		return Access{Via: ViaNone}, &LookupError{StudentID: studentID, CourseID: courseID, Err: err}
	}

	if count > 0 {
		return Access{HasAccess: true, Via: ViaMembership, Membership: m}, nil
	}
	return Access{Via: ViaNone, Membership: m}, nil
}

// Discount returns the active membership's discount percentage, or 0.
func (r *Resolver) Discount(ctx context.Context, studentID uint) (float64, error) {
	m, err := r.active(ctx, studentID)
	if err != nil {
		return 0, &LookupError{StudentID: studentID, Err: err}
	}
	if m == nil {
		return 0, nil
	}
	return m.DiscountPercent, nil
}

// IsMembershipActive reports whether membershipID is effectively active now.
func (r *Resolver) IsMembershipActive(ctx context.Context, membershipID uint) (bool, error) {
	var m models.Membership
	err := r.db.WithContext(ctx).First(&m, membershipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.EffectivelyActive(r.now().UTC()), nil
}

// StudentMembership is the active membership with its plan and included courses.
type StudentMembership struct {
	models.Membership
	PlanName        string          `json:"planName"`
	PlanType        string          `json:"planType"`
	BillingInterval *string         `json:"billingInterval"`
	DiscountPercent float64         `json:"discountPercent"`
	Price           float64         `json:"price"`
	Courses         []models.Course `json:"courses"`
}

// StudentMembership returns nil when the student has no active membership.
func (r *Resolver) StudentMembership(ctx context.Context, studentID uint) (*StudentMembership, error) {
	m, err := r.active(ctx, studentID)
	if err != nil || m == nil {
		return nil, err
	}

	var row models.Membership
	if err := r.db.WithContext(ctx).Preload("MembershipPlan").First(&row, m.ID).Error; err != nil {
		return nil, err
	}
	courses, err := PlanCourses(ctx, r.db, m.MembershipPlanID, true)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i] = courses[i].Public()
	}

	return &StudentMembership{
		Membership:      row,
		PlanName:        row.MembershipPlan.Name,
		PlanType:        row.MembershipPlan.Type,
		BillingInterval: row.MembershipPlan.BillingInterval,
		DiscountPercent: row.MembershipPlan.DiscountPercent,
		Price:           row.MembershipPlan.Price,
		Courses:         courses,
	}, nil
}

// MembershipCourses lists the active courses the student's membership includes.
func (r *Resolver) MembershipCourses(ctx context.Context, studentID uint) ([]models.Course, error) {
	m, err := r.active(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return []models.Course{}, nil
	}
	courses, err := PlanCourses(ctx, r.db, m.MembershipPlanID, true)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i] = courses[i].Public()
	}
	return courses, nil
}

// PlanCourses loads the courses included in planID ordered by name.
func PlanCourses(ctx context.Context, db *gorm.DB, planID uint, activeOnly bool) ([]models.Course, error) {
	q := db.WithContext(ctx).Model(&models.Course{}).
		Joins("JOIN membership_tier_courses mtc ON mtc.course_id = courses.id").
		Where("mtc.membership_plan_id = ?", planID)
	if activeOnly {
		q = q.Where("courses.is_active = ?", true)
	}
	courses := []models.Course{}
	if err := q.Order("courses.name ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
