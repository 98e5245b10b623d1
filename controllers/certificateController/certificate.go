package certificateController

import (
	"academy/errs"
	"academy/middleware"
	"academy/services/certificate"
	"academy/services/enrollment"
	"academy/validators"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CertificateController struct {
	Service     *certificate.Service
	Enrollments *enrollment.Service
	Log         *zap.Logger
}

func NewCertificateController(svc *certificate.Service, enrollments *enrollment.Service, log *zap.Logger) *CertificateController {
	return &CertificateController{Service: svc, Enrollments: enrollments, Log: log}
}

var errForbidden = errs.E(errs.AccessDenied, "You do not have permission to access this resource!")

// Generate issues the certificate for a passed enrollment. A repeat call
// returns the certificate already issued.
func (ctrl *CertificateController) Generate(c *fiber.Ctx) error {
	enrollmentID := validators.ID(c)
	e, err := ctrl.Enrollments.Get(c.UserContext(), enrollmentID)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if !middleware.CanActFor(c, e.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
	}

	issued, err := ctrl.Service.Generate(c.UserContext(), enrollmentID)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if issued.Created {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate generated successfully.", issued)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate already issued.", issued)
}

func (ctrl *CertificateController) Get(c *fiber.Ctx) error {
	v, err := ctrl.Service.Get(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if !middleware.CanActFor(c, v.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully.", v)
}

// Download streams the certificate PDF.
func (ctrl *CertificateController) Download(c *fiber.Ctx) error {
	file, v, err := ctrl.Service.File(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if !middleware.CanActFor(c, v.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="certificate-%s.pdf"`, v.CertificateNumber))
	return c.SendFile(file)
}

func (ctrl *CertificateController) ListByStudent(c *fiber.Ctx) error {
	list, err := ctrl.Service.ListByStudent(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully.", list)
}

// ListAll is admin only.
func (ctrl *CertificateController) ListAll(c *fiber.Ctx) error {
	list, err := ctrl.Service.ListAll(c.UserContext())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully.", list)
}
