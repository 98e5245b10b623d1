package routers

import (
	"academy/controllers/adminController"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(api fiber.Router, auth, admin fiber.Handler, ctrl *adminController.AdminController) {
	adminGroup := api.Group("/admin", auth, admin)
	adminGroup.Get("/stats", ctrl.Stats)
	adminGroup.Get("/enrollments/export", ctrl.ExportEnrollments)

	teachableGroup := api.Group("/teachable", auth, admin)
	teachableGroup.Post("/sync-course/:courseId", validators.Param("courseId"), ctrl.SyncCourse)
}
