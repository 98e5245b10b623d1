package enrollmentValidator

import (
	"academy/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type CreateEnrollmentRequest struct {
	StudentID     uint   `json:"studentId" validate:"required"`
	CourseID      uint   `json:"courseId" validate:"required"`
	PaymentID     string `json:"paymentId"`
	PaymentStatus string `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed"`
}

func (r *CreateEnrollmentRequest) Normalize() {
	r.PaymentID = strings.TrimSpace(r.PaymentID)
	r.PaymentStatus = strings.ToLower(strings.TrimSpace(r.PaymentStatus))
}

type ProgressRequest struct {
	Progress *int `json:"progress" validate:"required"`
}

// ExamRequest may name the student and course so that an unknown
// enrollment id can still be resolved.
type ExamRequest struct {
	Answers   []int `json:"answers" validate:"required"`
	StudentID uint  `json:"studentId"`
	CourseID  uint  `json:"courseId"`
}

type StudentExamRequest struct {
	Answers   []int `json:"answers" validate:"required"`
	StudentID uint  `json:"studentId" validate:"required"`
	CourseID  uint  `json:"courseId" validate:"required"`
}

type PaymentRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
}

func (r *PaymentRequest) Normalize() { r.PaymentID = strings.TrimSpace(r.PaymentID) }

// CreateEnrollment validates an enrollment request.
func CreateEnrollment() fiber.Handler { return validators.Body[CreateEnrollmentRequest]() }

func UpdateProgress() fiber.Handler { return validators.Body[ProgressRequest]() }

// SubmitExam validates answers posted against an enrollment id.
func SubmitExam() fiber.Handler { return validators.Body[ExamRequest]() }

// SubmitStudentExam validates answers posted with the student and course ids.
func SubmitStudentExam() fiber.Handler { return validators.Body[StudentExamRequest]() }

func MarkPaid() fiber.Handler { return validators.Body[PaymentRequest]() }
