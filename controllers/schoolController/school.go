package schoolController

import (
	"academy/errs"
	"academy/middleware"
	"academy/services/school"
	"academy/utils"
	"academy/validators"
	"academy/validators/schoolValidator"
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SchoolController struct {
	Registry  *school.Registry
	UploadDir string
	Log       *zap.Logger
}

func NewSchoolController(registry *school.Registry, uploadDir string, log *zap.Logger) *SchoolController {
	return &SchoolController{Registry: registry, UploadDir: uploadDir, Log: log}
}

func (ctrl *SchoolController) Get(c *fiber.Ctx) error {
	s, ok := ctrl.Registry.Current()
	if !ok {
		return middleware.ErrorFromService(c, ctrl.Log, errs.E(errs.NotFound, "School is not configured"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "School fetched successfully.", fiber.Map{
		"school":        s,
		"missingFields": s.MissingCertificateFields(),
	})
}

func (ctrl *SchoolController) Update(c *fiber.Ctx) error {
	req := validators.Validated[schoolValidator.UpdateSchoolRequest](c)
	s, err := ctrl.Registry.Update(c.UserContext(), req.Input())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "School updated successfully.", s)
}

// UploadSignature stores the instructor signature, or the business
// representative's when ?role=representative.
func (ctrl *SchoolController) UploadSignature(c *fiber.Ctx) error {
	url, err := ctrl.save(c, "signature")
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	in := school.Input{InstructorSignature: &url}
	if c.Query("role") == "representative" {
		in = school.Input{BusinessRepresentativeSignature: &url}
	}
	return ctrl.apply(c, in, "Signature uploaded successfully.")
}

func (ctrl *SchoolController) UploadLogo(c *fiber.Ctx) error {
	url, err := ctrl.save(c, "logo")
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return ctrl.apply(c, school.Input{Logo: &url}, "Logo uploaded successfully.")
}

func (ctrl *SchoolController) apply(c *fiber.Ctx, in school.Input, msg string) error {
	s, err := ctrl.Registry.Update(c.UserContext(), in)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, msg, s)
}

func (ctrl *SchoolController) save(c *fiber.Ctx, prefix string) (string, error) {
	file, _ := c.Locals("uploadedFile").(*multipart.FileHeader)
	if file == nil {
		return "", errs.E(errs.Validation, "An image file is required in the 'file' field!")
	}
	rel, err := utils.SaveUploadedFile(file, ctrl.UploadDir, "school", prefix, utils.ImageTypes)
	if err != nil {
		var unsupported *utils.ErrUnsupportedType
		if errors.As(err, &unsupported) {
			return "", errs.E(errs.Validation, "Only PNG and JPEG images are allowed").WithDetails(fiber.Map{"detected": unsupported.Detected})
		}
		return "", errs.Wrap(errs.Internal, err, "Failed to save uploaded file")
	}
	return utils.GetFileURL(rel), nil
}
