package adminController

import (
	"academy/middleware"
	"academy/services/report"
	"academy/services/teachable"
	"academy/validators"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminController struct {
	Reports   *report.Service
	Teachable *teachable.Service
	Log       *zap.Logger
}

func NewAdminController(reports *report.Service, tc *teachable.Service, log *zap.Logger) *AdminController {
	return &AdminController{Reports: reports, Teachable: tc, Log: log}
}

func (ctrl *AdminController) Stats(c *fiber.Ctx) error {
	st, err := ctrl.Reports.Stats(c.UserContext())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully.", st)
}

// ExportEnrollments sends all enrollments as an xlsx attachment.
func (ctrl *AdminController) ExportEnrollments(c *fiber.Ctx) error {
	buf, filename, err := ctrl.Reports.ExportEnrollments(c.UserContext())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

// SyncCourse creates the course on Teachable and links it.
func (ctrl *AdminController) SyncCourse(c *fiber.Ctx) error {
	course, remote, err := ctrl.Teachable.SyncCourse(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course synced to Teachable.", fiber.Map{
		"course":    course.Public(),
		"teachable": remote,
	})
}
