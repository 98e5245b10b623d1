package routers

import (
	"academy/controllers/courseController"
	"academy/validators"
	"academy/validators/courseValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(api fiber.Router, auth, admin fiber.Handler, ctrl *courseController.CourseController) {
	courseGroup := api.Group("/courses")

	courseGroup.Get("/", ctrl.List)
	courseGroup.Get("/slug/:slug", courseValidator.Slug(), ctrl.GetBySlug)
	courseGroup.Get("/:id", validators.Param("id"), ctrl.Get)

	courseGroup.Post("/", auth, admin, courseValidator.CreateCourse(), ctrl.Create)
	courseGroup.Patch("/:id", auth, admin, validators.Param("id"), courseValidator.UpdateCourse(), ctrl.Update)
}
