package routers

import (
	"academy/controllers/schoolController"
	"academy/validators/schoolValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupSchoolRoutes(api fiber.Router, auth, admin fiber.Handler, ctrl *schoolController.SchoolController) {
	schoolGroup := api.Group("/school", auth, admin)

	schoolGroup.Get("/", ctrl.Get)
	schoolGroup.Put("/", schoolValidator.UpdateSchool(), ctrl.Update)
	schoolGroup.Post("/signature", schoolValidator.Upload(), ctrl.UploadSignature)
	schoolGroup.Post("/logo", schoolValidator.Upload(), ctrl.UploadLogo)
}
