package routers

import (
	"academy/controllers/certificateController"
	"academy/middleware"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

func SetupCertificateRoutes(api fiber.Router, auth, admin fiber.Handler, ctrl *certificateController.CertificateController) {
	certGroup := api.Group("/certificates", auth)

	certGroup.Get("/", admin, ctrl.ListAll)
	certGroup.Post("/generate/:enrollmentId", validators.Param("enrollmentId"), ctrl.Generate)
	certGroup.Get("/download/:certificateId", validators.Param("certificateId"), ctrl.Download)
	certGroup.Get("/student/:studentId", middleware.SelfOrAdmin("studentId"), validators.Param("studentId"), ctrl.ListByStudent)
	certGroup.Get("/:certificateId", validators.Param("certificateId"), ctrl.Get)
}
