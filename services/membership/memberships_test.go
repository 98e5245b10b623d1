package membership

import (
	"academy/errs"
	"academy/models"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func TestPlanStore_CreateRequiresFields(t *testing.T) {
	db, _ := setupResolver(t)
	store := NewPlanStore(db, zap.NewNop())

	_, err := store.Create(context.Background(), PlanInput{Name: ptr("Basic")})
	assert.True(t, errs.Is(err, errs.Validation))

	_, err = store.Create(context.Background(), PlanInput{
		Name:  ptr("Monthly"),
		Type:  ptr(models.PlanRecurring),
		Price: ptr(29.99),
	})
	assert.True(t, errs.Is(err, errs.Validation), "recurring plan without billing interval")
}

func TestPlanStore_CreateUpdateDeactivate(t *testing.T) {
	db, _ := setupResolver(t)
	store := NewPlanStore(db, zap.NewNop())
	c1 := createCourse(t, db, "C-1", 100)
	c2 := createCourse(t, db, "C-2", 150)

	plan, err := store.Create(context.Background(), PlanInput{
		Name:            ptr("Premium"),
		Type:            ptr(models.PlanRecurring),
		BillingInterval: ptr(models.BillingMonthly),
		Price:           ptr(49.99),
		DiscountPercent: ptr(25.0),
		CourseIDs:       []uint{c1.ID},
	})
	require.NoError(t, err)
	assert.True(t, plan.IsActive)
	require.Len(t, plan.Courses, 1)
	assert.Equal(t, c1.ID, plan.Courses[0].ID)

	updated, err := store.Update(context.Background(), plan.ID, PlanInput{CourseIDs: []uint{c2.ID, c2.ID}})
	require.NoError(t, err)
	require.Len(t, updated.Courses, 1)
	assert.Equal(t, c2.ID, updated.Courses[0].ID)
	assert.Equal(t, 25.0, updated.DiscountPercent)

	_, err = store.Update(context.Background(), plan.ID, PlanInput{CourseIDs: []uint{9999}})
	assert.True(t, errs.Is(err, errs.Validation))

	require.NoError(t, store.Deactivate(context.Background(), plan.ID))
	active, err := store.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.True(t, errs.Is(store.Deactivate(context.Background(), 9999), errs.NotFound))
}

func TestStore_AssignRecurring(t *testing.T) {
	db, r := setupResolver(t)
	store := NewStore(db, r, zap.NewNop())
	student := createStudent(t, db, "a@example.com")
	plan := createPlan(t, db, 10)

	m, err := store.Assign(context.Background(), AssignInput{StudentID: student.ID, MembershipPlanID: plan.ID})
	require.NoError(t, err)
	assert.Equal(t, models.MembershipActive, m.Status)
	require.NotNil(t, m.CurrentPeriodEnd)
	assert.Equal(t, fixedNow.AddDate(0, 1, 0), *m.CurrentPeriodEnd)
	assert.Equal(t, *m.CurrentPeriodEnd, *m.ExpiresAt)

	_, err = store.Assign(context.Background(), AssignInput{StudentID: student.ID, MembershipPlanID: plan.ID})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Validation))
	assert.Contains(t, err.Error(), "already has an active membership")
}

func TestStore_AssignLifetime(t *testing.T) {
	db, r := setupResolver(t)
	store := NewStore(db, r, zap.NewNop())
	student := createStudent(t, db, "a@example.com")
	plan := models.MembershipPlan{Name: "Lifetime", Type: models.PlanLifetime, Price: 999.99, DiscountPercent: 30, IsActive: true}
	require.NoError(t, db.Create(&plan).Error)

	m, err := store.Assign(context.Background(), AssignInput{StudentID: student.ID, MembershipPlanID: plan.ID})
	require.NoError(t, err)
	require.NotNil(t, m.ExpiresAt)
	assert.Equal(t, fixedNow.AddDate(100, 0, 0), *m.ExpiresAt)
	assert.Nil(t, m.CurrentPeriodEnd)
}

func TestStore_AssignRejectsInactivePlan(t *testing.T) {
	db, r := setupResolver(t)
	store := NewStore(db, r, zap.NewNop())
	student := createStudent(t, db, "a@example.com")
	plan := createPlan(t, db, 10)
	require.NoError(t, db.Model(&plan).Update("is_active", false).Error)

	_, err := store.Assign(context.Background(), AssignInput{StudentID: student.ID, MembershipPlanID: plan.ID})
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestStore_CancelIsIdempotent(t *testing.T) {
	db, r := setupResolver(t)
	store := NewStore(db, r, zap.NewNop())
	student := createStudent(t, db, "a@example.com")
	plan := createPlan(t, db, 10)
	m := createMembership(t, db, student.ID, plan.ID, models.MembershipActive, fixedNow.Add(-time.Hour), nil)

	first, err := store.Cancel(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipCanceled, first.Status)
	require.NotNil(t, first.CanceledAt)

	second, err := store.Cancel(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipCanceled, second.Status)

	sm, err := r.StudentMembership(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Nil(t, sm)

	rows, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe", rows[0].StudentName)
	assert.Equal(t, "a@example.com", rows[0].StudentEmail)
}
