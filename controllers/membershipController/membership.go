package membershipController

import (
	"academy/middleware"
	"academy/services/membership"
	"academy/validators"
	"academy/validators/membershipValidator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type MembershipController struct {
	Plans       *membership.PlanStore
	Memberships *membership.Store
	Resolver    *membership.Resolver
	Log         *zap.Logger
}

func NewMembershipController(plans *membership.PlanStore, store *membership.Store, resolver *membership.Resolver, log *zap.Logger) *MembershipController {
	return &MembershipController{Plans: plans, Memberships: store, Resolver: resolver, Log: log}
}

func (ctrl *MembershipController) ListPlans(c *fiber.Ctx) error {
	plans, err := ctrl.Plans.ListActive(c.UserContext())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership plans fetched successfully.", plans)
}

func (ctrl *MembershipController) GetPlan(c *fiber.Ctx) error {
	plan, err := ctrl.Plans.Get(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership plan fetched successfully.", plan)
}

func (ctrl *MembershipController) PlanCourses(c *fiber.Ctx) error {
	courses, err := ctrl.Plans.Courses(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Plan courses fetched successfully.", courses)
}

func (ctrl *MembershipController) CreatePlan(c *fiber.Ctx) error {
	req := validators.Validated[membershipValidator.CreatePlanRequest](c)
	plan, err := ctrl.Plans.Create(c.UserContext(), req.Input())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Membership plan created successfully.", plan)
}

func (ctrl *MembershipController) UpdatePlan(c *fiber.Ctx) error {
	req := validators.Validated[membershipValidator.UpdatePlanRequest](c)
	plan, err := ctrl.Plans.Update(c.UserContext(), validators.ID(c), req.Input())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership plan updated successfully.", plan)
}

// DeletePlan deactivates the plan; existing memberships keep it.
func (ctrl *MembershipController) DeletePlan(c *fiber.Ctx) error {
	if err := ctrl.Plans.Deactivate(c.UserContext(), validators.ID(c)); err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership plan deleted successfully.", nil)
}

// StudentMembership returns the active membership or null. Lookup failures
// are logged and reported as no membership.
func (ctrl *MembershipController) StudentMembership(c *fiber.Ctx) error {
	studentID := validators.ID(c)
	m, err := ctrl.Resolver.StudentMembership(c.UserContext(), studentID)
	if err != nil {
		ctrl.Log.Error("membership lookup failed", zap.Uint("studentId", studentID), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusOK, true, "No active membership.", nil)
	}
	if m == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "No active membership.", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership fetched successfully.", m)
}

// Assign is admin only.
func (ctrl *MembershipController) Assign(c *fiber.Ctx) error {
	req := validators.Validated[membershipValidator.AssignRequest](c)
	m, err := ctrl.Memberships.Assign(c.UserContext(), req.Input())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Membership assigned successfully.", m)
}

// Remove cancels a membership. Admin only.
func (ctrl *MembershipController) Remove(c *fiber.Ctx) error {
	m, err := ctrl.Memberships.Cancel(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership canceled successfully.", m)
}

func (ctrl *MembershipController) ListAll(c *fiber.Ctx) error {
	list, err := ctrl.Memberships.ListAll(c.UserContext())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Memberships fetched successfully.", list)
}
