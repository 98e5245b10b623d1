package routers

import (
	"academy/controllers/enrollmentController"
	"academy/middleware"
	"academy/validators"
	"academy/validators/enrollmentValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(api fiber.Router, auth, admin fiber.Handler, ctrl *enrollmentController.EnrollmentController) {
	enrollmentGroup := api.Group("/enrollments", auth)

	enrollmentGroup.Post("/", enrollmentValidator.CreateEnrollment(), ctrl.Create)
	enrollmentGroup.Get("/", admin, ctrl.ListAll)

	// Exam submission
	enrollmentGroup.Post("/exam/submit", enrollmentValidator.SubmitStudentExam(), ctrl.SubmitStudentExam)
	enrollmentGroup.Post("/:id/exam", validators.Param("id"), enrollmentValidator.SubmitExam(), ctrl.SubmitExam)

	// Student views
	enrollmentGroup.Get("/student/:studentId", middleware.SelfOrAdmin("studentId"), validators.Param("studentId"), ctrl.ListByStudent)
	enrollmentGroup.Post("/student/:studentId/exam2", middleware.SelfOrAdmin("studentId"), validators.Param("studentId"), ctrl.EnrollPracticeExam)

	enrollmentGroup.Get("/:id", validators.Param("id"), ctrl.Get)
	enrollmentGroup.Patch("/:id/progress", validators.Param("id"), enrollmentValidator.UpdateProgress(), ctrl.UpdateProgress)
	enrollmentGroup.Post("/:id/payment", admin, validators.Param("id"), enrollmentValidator.MarkPaid(), ctrl.MarkPaid)
}
