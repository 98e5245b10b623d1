package routers

import (
	"academy/controllers/userController"
	"academy/middleware"
	"academy/validators"
	"academy/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(api fiber.Router, auth, admin fiber.Handler, ctrl *userController.UserController) {
	userGroup := api.Group("/users")

	// Signup is public
	userGroup.Post("/", userValidator.CreateUser(), ctrl.Create)

	userGroup.Get("/", auth, admin, ctrl.List)
	userGroup.Get("/email/:email", auth, admin, userValidator.ByEmail(), ctrl.GetByEmail)
	userGroup.Get("/:id", auth, middleware.SelfOrAdmin("id"), validators.Param("id"), ctrl.Get)
	userGroup.Patch("/:id", auth, middleware.SelfOrAdmin("id"), validators.Param("id"), userValidator.UpdateUser(), ctrl.Update)
}
