// Package routers mounts every API route under /api.
package routers

import (
	"academy/controllers/adminController"
	"academy/controllers/authController"
	"academy/controllers/badgeController"
	"academy/controllers/certificateController"
	"academy/controllers/courseController"
	"academy/controllers/enrollmentController"
	"academy/controllers/membershipController"
	"academy/controllers/schoolController"
	"academy/controllers/userController"
	"academy/middleware"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Controllers is everything the routes dispatch to.
type Controllers struct {
	Auth        *authController.AuthController
	User        *userController.UserController
	Course      *courseController.CourseController
	Enrollment  *enrollmentController.EnrollmentController
	Certificate *certificateController.CertificateController
	Membership  *membershipController.MembershipController
	Badge       *badgeController.BadgeController
	School      *schoolController.SchoolController
	Admin       *adminController.AdminController
}

// Setup registers all routes. db backs the caller lookup.
func Setup(app *fiber.App, db *gorm.DB, ctrls Controllers) {
	api := app.Group("/api")
	auth := middleware.Authenticate(db)
	admin := middleware.AdminOnly

	api.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", fiber.Map{"time": time.Now().UTC()})
	})

	SetupAuthRoutes(api, ctrls.Auth)
	SetupUserRoutes(api, auth, admin, ctrls.User)
	SetupCourseRoutes(api, auth, admin, ctrls.Course)
	SetupEnrollmentRoutes(api, auth, admin, ctrls.Enrollment)
	SetupCertificateRoutes(api, auth, admin, ctrls.Certificate)
	SetupMembershipRoutes(api, auth, admin, ctrls.Membership)
	SetupBadgeRoutes(api, auth, admin, ctrls.Badge)
	SetupSchoolRoutes(api, auth, admin, ctrls.School)
	SetupAdminRoutes(api, auth, admin, ctrls.Admin)
}
