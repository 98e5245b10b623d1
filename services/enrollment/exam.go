package enrollment

import (
	"academy/errs"
	"academy/models"
	"academy/services/certificate"
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result is the outcome of scoring one exam attempt.
type Result struct {
	Earned     float64
	Total      float64
	Percentage float64
	Passed     bool
}

// Score grades answers against exam. answers must have one entry per
// question; -1 marks an unanswered question.
func Score(exam *models.Exam, answers []int) (Result, error) {
	if exam == nil || len(exam.Questions) == 0 {
		return Result{}, errs.E(errs.NotFound, "Course does not have an exam")
	}
	if len(answers) != len(exam.Questions) {
		return Result{}, errs.E(errs.Validation, "Expected %d answers, but received %d", len(exam.Questions), len(answers)).
			WithDetails(map[string]int{"expected": len(exam.Questions), "received": len(answers)})
	}

	var r Result
	for i, q := range exam.Questions {
		w := q.Weight()
		r.Total += w
		if answers[i] >= 0 && answers[i] == q.CorrectAnswer {
			r.Earned += w
		}
	}
	r.Percentage = 100 * r.Earned / r.Total
	r.Passed = r.Percentage >= exam.Threshold()
	return r, nil
}

// ExamOutcome is returned from an exam submission.
type ExamOutcome struct {
	Score       float64                 `json:"score"`
	Passed      bool                    `json:"passed"`
	Enrollment  *models.Enrollment      `json:"enrollment"`
	Certificate *models.CertificateView `json:"certificate,omitempty"`
	DownloadURL string                  `json:"downloadUrl,omitempty"`
}

// SubmitExam scores answers for an existing enrollment.
func (s *Service) SubmitExam(ctx context.Context, enrollmentID uint, answers []int) (*ExamOutcome, error) {
	if len(answers) == 0 {
		return nil, errs.E(errs.Validation, "Answers array is required")
	}
	var e models.Enrollment
	err := s.db.WithContext(ctx).First(&e, enrollmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Enrollment not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch enrollment")
	}
	return s.submit(ctx, &e, answers, true)
}

// SubmitForStudent finds or creates the enrollment for (studentID, courseID)
// and scores answers against it.
func (s *Service) SubmitForStudent(ctx context.Context, studentID, courseID uint, answers []int) (*ExamOutcome, error) {
	if len(answers) == 0 {
		return nil, errs.E(errs.Validation, "Answers array is required")
	}
	// Enroll verifies access for both new and existing rows.
	e, _, err := s.Enroll(ctx, EnrollInput{StudentID: studentID, CourseID: courseID})
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, e, answers, false)
}

func (s *Service) submit(ctx context.Context, e *models.Enrollment, answers []int, verify bool) (*ExamOutcome, error) {
	var course models.Course
	err := s.db.WithContext(ctx).First(&course, e.CourseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Course not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch course")
	}

	if verify && course.Slug != models.PracticeExamSlug {
		if err := s.verifyAccess(ctx, e, course); err != nil {
			return nil, err
		}
	}

	result, err := Score(course.ExamDefinition(), answers)
	if err != nil {
		return nil, err
	}

	attempts := e.ExamAttempts + 1
	e.ExamAttempts = attempts
	e.SetState(models.AfterExam(e.State(), result.Passed, result.Percentage, attempts))
	score := result.Percentage
	e.ExamScore = &score

	updates := map[string]interface{}{
		"exam_attempts": e.ExamAttempts,
		"exam_score":    score,
		"stage":         e.Stage,
	}
	if result.Passed && e.CompletedAt == nil {
		now := s.now().UTC()
		e.CompletedAt = &now
		updates["completed_at"] = now
	}
	if err := s.db.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", e.ID).Updates(updates).Error; err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to record exam result")
	}

	s.log.Info("exam submitted",
		zap.Uint("enrollmentId", e.ID),
		zap.Float64("score", score),
		zap.Bool("passed", result.Passed),
		zap.Int("attempts", attempts))

	c := course.Public()
	e.Course = &c
	out := &ExamOutcome{Score: score, Passed: result.Passed, Enrollment: e}

	if result.Passed && s.autoIssue && s.issuer != nil {
		s.autoIssueCertificate(ctx, out)
	}
	return out, nil
}

// autoIssueCertificate never fails the submission; errors are only logged.
func (s *Service) autoIssueCertificate(ctx context.Context, out *ExamOutcome) {
	issued, err := s.issuer.Generate(ctx, out.Enrollment.ID)
	if err != nil {
		s.log.Warn("automatic certificate generation failed",
			zap.Uint("enrollmentId", out.Enrollment.ID),
			zap.Error(err))
		return
	}
	out.Certificate = &issued.Certificate
	out.DownloadURL = issued.DownloadURL
	out.Enrollment.SetState(models.Certified{Score: out.Score, CertificateID: issued.Certificate.ID})
}

var _ CertificateIssuer = (*certificate.Service)(nil)
