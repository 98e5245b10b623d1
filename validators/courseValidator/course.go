package courseValidator

import (
	"academy/middleware"
	"academy/models"
	"academy/validators"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type CreateCourseRequest struct {
	Name                string             `json:"name" validate:"required"`
	Description         string             `json:"description" validate:"required"`
	CourseNumber        string             `json:"courseNumber" validate:"required"`
	Slug                string             `json:"slug"`
	Price               *float64           `json:"price" validate:"required,gte=0"`
	Duration            int                `json:"duration" validate:"gte=0"`
	Curriculum          *models.Curriculum `json:"curriculum"`
	Exam                *models.Exam       `json:"exam"`
	ExamPaperURL        string             `json:"examPaperUrl"`
	CertificateTemplate string             `json:"certificateTemplate"`
	IsActive            *bool              `json:"isActive"`
}

func (r *CreateCourseRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.CourseNumber = strings.TrimSpace(r.CourseNumber)
	r.Slug = strings.TrimSpace(r.Slug)
}

type UpdateCourseRequest struct {
	Name                *string            `json:"name" validate:"omitempty,min=1"`
	Description         *string            `json:"description" validate:"omitempty,min=1"`
	CourseNumber        *string            `json:"courseNumber" validate:"omitempty,min=1"`
	Slug                *string            `json:"slug" validate:"omitempty,min=1"`
	Price               *float64           `json:"price" validate:"omitempty,gte=0"`
	Duration            *int               `json:"duration" validate:"omitempty,gte=0"`
	Curriculum          *models.Curriculum `json:"curriculum"`
	Exam                *models.Exam       `json:"exam"`
	ExamPaperURL        *string            `json:"examPaperUrl"`
	CertificateTemplate *string            `json:"certificateTemplate"`
	IsActive            *bool              `json:"isActive"`
}

// CheckExam reports problems with an exam definition keyed by field path.
func CheckExam(exam *models.Exam) map[string]string {
	if exam == nil {
		return nil
	}
	errors := make(map[string]string)
	if exam.PassingScore < 0 || exam.PassingScore > 100 {
		errors["exam.passingScore"] = "passingScore must be between 0 and 100!"
	}
	for i, q := range exam.Questions {
		key := fmt.Sprintf("exam.questions[%d]", i)
		switch {
		case strings.TrimSpace(q.Question) == "":
			errors[key] = "question text is required!"
		case len(q.Options) < 2:
			errors[key] = "at least two options are required!"
		case q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options):
			errors[key] = "correctAnswer must index one of the options!"
		case q.Points < 0:
			errors[key] = "points must not be negative!"
		}
	}
	return errors
}

// CreateCourse validates a new course and its exam.
func CreateCourse() fiber.Handler {
	return validators.Body(func(r *CreateCourseRequest) map[string]string { return CheckExam(r.Exam) })
}

func UpdateCourse() fiber.Handler {
	return validators.Body(func(r *UpdateCourseRequest) map[string]string { return CheckExam(r.Exam) })
}

// Slug checks the slug path param.
func Slug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.TrimSpace(c.Params("slug"))
		if slug == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"slug": "slug is required!"})
		}
		c.Locals("slug", slug)
		return c.Next()
	}
}

func (r *UpdateCourseRequest) Normalize() {
	for _, f := range []*string{r.Name, r.Description, r.CourseNumber, r.Slug} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
