package routers

import (
	"academy/controllers/membershipController"
	"academy/middleware"
	"academy/validators"
	"academy/validators/membershipValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupMembershipRoutes(api fiber.Router, auth, admin fiber.Handler, ctrl *membershipController.MembershipController) {
	membershipGroup := api.Group("/memberships")

	// Plans are public to read
	membershipGroup.Get("/plans", ctrl.ListPlans)
	membershipGroup.Get("/plans/:id", validators.Param("id"), ctrl.GetPlan)
	membershipGroup.Get("/plans/:id/courses", validators.Param("id"), ctrl.PlanCourses)

	membershipGroup.Post("/plans", auth, admin, membershipValidator.CreatePlan(), ctrl.CreatePlan)
	membershipGroup.Put("/plans/:id", auth, admin, validators.Param("id"), membershipValidator.UpdatePlan(), ctrl.UpdatePlan)
	membershipGroup.Delete("/plans/:id", auth, admin, validators.Param("id"), ctrl.DeletePlan)

	membershipGroup.Get("/student/:studentId", auth, middleware.SelfOrAdmin("studentId"), validators.Param("studentId"), ctrl.StudentMembership)
	membershipGroup.Post("/assign", auth, admin, membershipValidator.AssignMembership(), ctrl.Assign)
	membershipGroup.Post("/remove/:membershipId", auth, admin, validators.Param("membershipId"), ctrl.Remove)
	membershipGroup.Get("/all", auth, admin, ctrl.ListAll)
}
