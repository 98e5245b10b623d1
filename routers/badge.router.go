package routers

import (
	"academy/controllers/badgeController"
	"academy/middleware"
	"academy/validators"
	"academy/validators/badgeValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupBadgeRoutes(api fiber.Router, auth, admin fiber.Handler, ctrl *badgeController.BadgeController) {
	badgeGroup := api.Group("/badges", auth)

	badgeGroup.Get("/", admin, ctrl.ListAll)
	badgeGroup.Post("/", admin, badgeValidator.AwardBadge(), ctrl.Award)
	badgeGroup.Get("/student/:studentId", middleware.SelfOrAdmin("studentId"), validators.Param("studentId"), ctrl.ListByStudent)
	badgeGroup.Get("/:badgeId", validators.Param("badgeId"), ctrl.Get)
}
