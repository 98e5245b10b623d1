package routers

import (
	"academy/controllers/authController"
	"academy/validators/authValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(api fiber.Router, ctrl *authController.AuthController) {
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authValidator.Login(), ctrl.Login)
}
