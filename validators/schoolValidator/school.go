package schoolValidator

import (
	"academy/services/school"
	"academy/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type UpdateSchoolRequest struct {
	Name                            *string `json:"name" validate:"omitempty,min=1"`
	LicenseNumber                   *string `json:"licenseNumber"`
	InstructorName                  *string `json:"instructorName"`
	InstructorSignature             *string `json:"instructorSignature"`
	BusinessRepresentative          *string `json:"businessRepresentative"`
	BusinessRepresentativeSignature *string `json:"businessRepresentativeSignature"`
	Logo                            *string `json:"logo"`
	Address                         *string `json:"address"`
	Phone                           *string `json:"phone"`
	Email                           *string `json:"email" validate:"omitempty,email"`
	Website                         *string `json:"website" validate:"omitempty,url"`
	TeachableSchoolID               *string `json:"teachableSchoolId"`
	TeachableAPIKey                 *string `json:"teachableApiKey"`
}

func (r *UpdateSchoolRequest) Normalize() {
	for _, f := range []*string{r.Name, r.LicenseNumber, r.InstructorName, r.BusinessRepresentative,
		r.Address, r.Phone, r.Email, r.Website, r.TeachableSchoolID, r.TeachableAPIKey} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (r *UpdateSchoolRequest) Input() school.Input {
	return school.Input{
		Name:                            r.Name,
		LicenseNumber:                   r.LicenseNumber,
		InstructorName:                  r.InstructorName,
		InstructorSignature:             r.InstructorSignature,
		BusinessRepresentative:          r.BusinessRepresentative,
		BusinessRepresentativeSignature: r.BusinessRepresentativeSignature,
		Logo:                            r.Logo,
		Address:                         r.Address,
		Phone:                           r.Phone,
		Email:                           r.Email,
		Website:                         r.Website,
		TeachableSchoolID:               r.TeachableSchoolID,
		TeachableAPIKey:                 r.TeachableAPIKey,
	}
}

// UpdateSchool validates a school configuration update.
func UpdateSchool() fiber.Handler { return validators.Body[UpdateSchoolRequest]() }

// Upload checks that a multipart image was sent under the "file" field.
func Upload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "An image file is required in the 'file' field!")
		}
		if file.Size == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Uploaded file is empty!")
		}
		c.Locals("uploadedFile", file)
		return c.Next()
	}
}
