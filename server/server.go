// Package server wires services, controllers and routes into a fiber app.
package server

import (
	"academy/config"
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
	"academy/routers"
	"academy/services/badge"
	"academy/services/certificate"
	"academy/services/enrollment"
	"academy/services/membership"
	"academy/services/notify"
	"academy/services/report"
	"academy/services/school"
	"academy/services/teachable"
	"academy/utils"
	"context"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server is the assembled application.
type Server struct {
	App     *fiber.App
	School  *school.Registry
	Sweeper *certificate.Sweeper
	Log     *zap.Logger
}

// Options overrides collaborators, mainly for tests.
type Options struct {
	Mailer *notify.Mailer
	Now    func() time.Time
	// AccessLog enables the request log middleware.
	AccessLog bool
}

// New builds the services and the HTTP app. The school registry is loaded
// and seeded from cfg.School when empty.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger, opts Options) (*Server, error) {
	registry := school.NewRegistry(db, log)
	if _, err := registry.Seed(ctx, cfg.School); err != nil {
		return nil, err
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = notify.New(cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName, cfg.PublicURL, log)
	}

	certDir := filepath.Join(cfg.UploadDir, "certificates")
	badges := badge.NewService(db, log)
	certificates := certificate.NewService(db, registry, log, certificate.Options{
		Dir:       certDir,
		URLPrefix: utils.UploadURLPrefix + "certificates",
		Resolve:   func(ref string) string { return utils.ResolveUploadPath(cfg.UploadDir, ref) },
		Badges:    badges,
		Notifier:  mailer,
		Now:       opts.Now,
	})

	resolver := membership.NewResolver(db, log)
	if opts.Now != nil {
		resolver = resolver.WithClock(opts.Now)
	}
	lms := teachable.NewService(db, registry, cfg.TeachableBaseURL, log)

	enrollOpts := []enrollment.Option{
		enrollment.WithCertificateIssuer(certificates, cfg.CertificateAutoIssue),
		enrollment.WithNotifier(mailer),
		enrollment.WithRemoteEnroller(lms),
	}
	if opts.Now != nil {
		enrollOpts = append(enrollOpts, enrollment.WithClock(opts.Now))
	}
	enrollments := enrollment.NewService(db, resolver, log, enrollOpts...)

	app := fiber.New(fiber.Config{
		AppName:      "academy",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID)
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders:  "Content-Type,Authorization," + middleware.RequestIDHeader,
		ExposeHeaders: "Content-Disposition," + middleware.RequestIDHeader,
	}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${locals:requestId} ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}
	app.Use(compress.New())

	// Serve uploaded assets (logos, signatures). Certificates go through the
	// authenticated download route.
	app.Static("/uploads/school", filepath.Join(cfg.UploadDir, "school"))

	routers.Setup(app, db, routers.Controllers{
		Auth:        authController.NewAuthController(db, log),
		User:        userController.NewUserController(db, log, cfg.AdminEmail, cfg.SaltRound),
		Course:      courseController.NewCourseController(db, log),
		Enrollment:  enrollmentController.NewEnrollmentController(enrollments, log),
		Certificate: certificateController.NewCertificateController(certificates, enrollments, log),
		Membership: membershipController.NewMembershipController(
			membership.NewPlanStore(db, log), membership.NewStore(db, resolver, log), resolver, log),
		Badge:  badgeController.NewBadgeController(badges, log),
		School: schoolController.NewSchoolController(registry, cfg.UploadDir, log),
		Admin:  adminController.NewAdminController(report.NewService(db, log), lms, log),
	})

	return &Server{
		App:     app,
		School:  registry,
		Sweeper: certificate.NewSweeper(db, certDir, time.Duration(cfg.OrphanMinAgeMinutes)*time.Minute, log),
		Log:     log,
	}, nil
}
