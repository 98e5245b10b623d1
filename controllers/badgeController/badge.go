package badgeController

import (
	"academy/errs"
	"academy/middleware"
	"academy/services/badge"
	"academy/validators"
	"academy/validators/badgeValidator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BadgeController struct {
	Service *badge.Service
	Log     *zap.Logger
}

func NewBadgeController(svc *badge.Service, log *zap.Logger) *BadgeController {
	return &BadgeController{Service: svc, Log: log}
}

func (ctrl *BadgeController) ListByStudent(c *fiber.Ctx) error {
	list, err := ctrl.Service.ListByStudent(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badges fetched successfully.", list)
}

func (ctrl *BadgeController) Get(c *fiber.Ctx) error {
	b, err := ctrl.Service.Get(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if !middleware.CanActFor(c, b.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errs.E(errs.AccessDenied, "You do not have permission to access this resource!"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badge fetched successfully.", b)
}

// ListAll is admin only.
func (ctrl *BadgeController) ListAll(c *fiber.Ctx) error {
	list, err := ctrl.Service.ListAll(c.UserContext())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badges fetched successfully.", list)
}

// Award is admin only and idempotent per enrollment and badge type.
func (ctrl *BadgeController) Award(c *fiber.Ctx) error {
	req := validators.Validated[badgeValidator.AwardBadgeRequest](c)
	b, created, err := ctrl.Service.Award(c.UserContext(), badge.Input{
		StudentID:        req.StudentID,
		CourseID:         req.CourseID,
		EnrollmentID:     req.EnrollmentID,
		BadgeType:        req.BadgeType,
		BadgeName:        req.BadgeName,
		BadgeDescription: req.BadgeDescription,
	})
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if created {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Badge awarded successfully.", b)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badge already awarded.", b)
}
