package userValidator

import (
	"academy/validators"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	SSN       string `json:"ssn" validate:"required,ssn"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Password  string `json:"password" validate:"omitempty,min=8"`
}

func (r *CreateUserRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.SSN = strings.TrimSpace(r.SSN)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
}

type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,email"`
	SSN       *string `json:"ssn" validate:"omitempty,ssn"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
}

func (r *UpdateUserRequest) Normalize() {
	for _, f := range []*string{r.FirstName, r.LastName, r.SSN, r.Phone, r.Address} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
}

// CreateUser validates a new student record.
func CreateUser() fiber.Handler { return validators.Body[CreateUserRequest]() }

func UpdateUser() fiber.Handler { return validators.Body[UpdateUserRequest]() }

// ByEmail validates the email path param and stores it in Locals.
func ByEmail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := url.PathUnescape(c.Params("email"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid email format!")
		}
		email := strings.ToLower(strings.TrimSpace(raw))
		if failed := validators.Var(email, "required,email"); failed != "" {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid email format!")
		}
		c.Locals("email", email)
		return c.Next()
	}
}
