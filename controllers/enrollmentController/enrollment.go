package enrollmentController

import (
	"academy/errs"
	"academy/middleware"
	"academy/services/enrollment"
	"academy/validators"
	"academy/validators/enrollmentValidator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type EnrollmentController struct {
	Service *enrollment.Service
	Log     *zap.Logger
}

func NewEnrollmentController(svc *enrollment.Service, log *zap.Logger) *EnrollmentController {
	return &EnrollmentController{Service: svc, Log: log}
}

var errForbidden = errs.E(errs.AccessDenied, "You do not have permission to access this resource!")

// Create enrolls a student. An existing enrollment is returned with 200.
func (ctrl *EnrollmentController) Create(c *fiber.Ctx) error {
	req := validators.Validated[enrollmentValidator.CreateEnrollmentRequest](c)
	if !middleware.CanActFor(c, req.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
	}

	e, created, err := ctrl.Service.Enroll(c.UserContext(), enrollment.EnrollInput{
		StudentID:     req.StudentID,
		CourseID:      req.CourseID,
		PaymentID:     req.PaymentID,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if created {
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrollment created successfully.", e)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled.", e)
}

func (ctrl *EnrollmentController) Get(c *fiber.Ctx) error {
	e, err := ctrl.Service.Get(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if !middleware.CanActFor(c, e.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched successfully.", e)
}

// ListByStudent also enrolls the student in the practice exam.
func (ctrl *EnrollmentController) ListByStudent(c *fiber.Ctx) error {
	studentID := validators.ID(c)
	if _, err := ctrl.Service.EnsurePracticeEnrollment(c.UserContext(), studentID); err != nil {
		// the listing is still useful without the practice exam
		ctrl.Log.Warn("practice exam enrollment failed", zap.Uint("studentId", studentID), zap.Error(err))
	}
	list, err := ctrl.Service.ListByStudent(c.UserContext(), studentID)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", list)
}

func (ctrl *EnrollmentController) EnrollPracticeExam(c *fiber.Ctx) error {
	e, err := ctrl.Service.EnsurePracticeEnrollment(c.UserContext(), validators.ID(c))
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if e == nil {
		return middleware.ErrorFromService(c, ctrl.Log, errs.E(errs.NotFound, "Practice exam course not found"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in practice exam.", e)
}

// ListAll is admin only.
func (ctrl *EnrollmentController) ListAll(c *fiber.Ctx) error {
	list, err := ctrl.Service.ListAll(c.UserContext())
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", list)
}

func (ctrl *EnrollmentController) UpdateProgress(c *fiber.Ctx) error {
	id := validators.ID(c)
	req := validators.Validated[enrollmentValidator.ProgressRequest](c)

	current, err := ctrl.Service.Get(c.UserContext(), id)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if !middleware.CanActFor(c, current.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
	}

	e, err := ctrl.Service.UpdateProgress(c.UserContext(), id, *req.Progress)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully.", e)
}

// MarkPaid is the admin hook for a confirmed payment.
func (ctrl *EnrollmentController) MarkPaid(c *fiber.Ctx) error {
	req := validators.Validated[enrollmentValidator.PaymentRequest](c)
	e, err := ctrl.Service.MarkPaid(c.UserContext(), validators.ID(c), req.PaymentID)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment recorded successfully.", e)
}

func (ctrl *EnrollmentController) SubmitExam(c *fiber.Ctx) error {
	id := validators.ID(c)
	req := validators.Validated[enrollmentValidator.ExamRequest](c)

	current, err := ctrl.Service.Get(c.UserContext(), id)
	if errs.Is(err, errs.NotFound) && req.StudentID != 0 && req.CourseID != 0 {
		if !middleware.CanActFor(c, req.StudentID) {
			return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
		}
		out, err := ctrl.Service.SubmitForStudent(c.UserContext(), req.StudentID, req.CourseID, req.Answers)
		if err != nil {
			return middleware.ErrorFromService(c, ctrl.Log, err)
		}
		return examResponse(c, out)
	}
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	if !middleware.CanActFor(c, current.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
	}

	out, err := ctrl.Service.SubmitExam(c.UserContext(), id, req.Answers)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return examResponse(c, out)
}

// SubmitStudentExam scores answers sent with the student and course ids,
// enrolling the student first when needed.
func (ctrl *EnrollmentController) SubmitStudentExam(c *fiber.Ctx) error {
	req := validators.Validated[enrollmentValidator.StudentExamRequest](c)
	if !middleware.CanActFor(c, req.StudentID) {
		return middleware.ErrorFromService(c, ctrl.Log, errForbidden)
	}

	out, err := ctrl.Service.SubmitForStudent(c.UserContext(), req.StudentID, req.CourseID, req.Answers)
	if err != nil {
		return middleware.ErrorFromService(c, ctrl.Log, err)
	}
	return examResponse(c, out)
}

func examResponse(c *fiber.Ctx, out *enrollment.ExamOutcome) error {
	msg := "Exam failed. Please review the material and try again."
	if out.Passed {
		msg = "Congratulations! You passed the exam."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, msg, out)
}
