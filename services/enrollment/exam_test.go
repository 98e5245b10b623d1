package enrollment

import (
	"academy/errs"
	"academy/models"
	"academy/services/certificate"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	exam := threeQuestionExam()

	r, err := Score(exam, []int{0, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, 100.0, r.Percentage)
	assert.True(t, r.Passed)

	r, err = Score(exam, []int{0, -1, 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Earned)
	assert.Equal(t, 3.0, r.Total)
	assert.False(t, r.Passed)
}

func TestScore_Weighted(t *testing.T) {
	exam := &models.Exam{Questions: []models.Question{
		{CorrectAnswer: 0, Points: 3},
		{CorrectAnswer: 1},
	}}
	r, err := Score(exam, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 75.0, r.Percentage)
	assert.True(t, r.Passed)
}

func TestScore_PassingBoundary(t *testing.T) {
	exam := &models.Exam{PassingScore: 75, Questions: []models.Question{
		{CorrectAnswer: 0}, {CorrectAnswer: 0}, {CorrectAnswer: 0}, {CorrectAnswer: 0},
	}}

	r, err := Score(exam, []int{0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 75.0, r.Percentage)
	assert.True(t, r.Passed, "a score equal to the passing score passes")

	r, err = Score(exam, []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.False(t, r.Passed)
}

func TestScore_PassingBoundaryHundredQuestions(t *testing.T) {
	for _, correct := range []int{29, 57, 58} {
		exam := &models.Exam{PassingScore: float64(correct)}
		answers := make([]int, 100)
		for i := range answers {
			exam.Questions = append(exam.Questions, models.Question{CorrectAnswer: 0})
			if i >= correct {
				answers[i] = 1
			}
		}

		r, err := Score(exam, answers)
		require.NoError(t, err)
		assert.Equal(t, float64(correct), r.Percentage)
		assert.True(t, r.Passed, "%d/100 at passing score %d", correct, correct)

		answers[correct-1] = 1
		r, err = Score(exam, answers)
		require.NoError(t, err)
		assert.False(t, r.Passed, "%d/100 at passing score %d", correct-1, correct)
	}
}

func TestScore_Errors(t *testing.T) {
	_, err := Score(nil, []int{1})
	assert.True(t, errs.Is(err, errs.NotFound))

	_, err = Score(&models.Exam{}, []int{1})
	assert.True(t, errs.Is(err, errs.NotFound))

	_, err = Score(threeQuestionExam(), []int{0, 1})
	require.Error(t, err)
	var se *errs.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errs.Validation, se.Kind)
	assert.Equal(t, "Expected 3 answers, but received 2", se.Message)
	assert.Equal(t, map[string]int{"expected": 3, "received": 2}, se.Details)
}

func TestSubmitExam_PassCompletesEnrollment(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "pass@example.com")
	c := h.course(t, "pass", 0, threeQuestionExam())
	e, _, err := h.svc.Enroll(context.Background(), EnrollInput{StudentID: s.ID, CourseID: c.ID})
	require.NoError(t, err)

	out, err := h.svc.SubmitExam(context.Background(), e.ID, []int{0, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, 100.0, out.Score)
	assert.True(t, out.Passed)
	assert.Equal(t, "completed", out.Enrollment.Status())
	assert.True(t, out.Enrollment.ExamPassed())
	assert.Nil(t, out.Certificate)

	var stored models.Enrollment
	require.NoError(t, h.db.First(&stored, e.ID).Error)
	assert.Equal(t, models.Passed{Score: 100}, stored.State())
	assert.Equal(t, 1, stored.ExamAttempts)
	require.NotNil(t, stored.CompletedAt)
}

func TestSubmitExam_AnswerCountMismatch(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "mismatch@example.com")
	c := h.course(t, "mismatch", 0, threeQuestionExam())
	e, _, err := h.svc.Enroll(context.Background(), EnrollInput{StudentID: s.ID, CourseID: c.ID})
	require.NoError(t, err)

	_, err = h.svc.SubmitExam(context.Background(), e.ID, []int{0, 2})
	assert.True(t, errs.Is(err, errs.Validation))

	_, err = h.svc.SubmitExam(context.Background(), e.ID, nil)
	assert.True(t, errs.Is(err, errs.Validation))

	var stored models.Enrollment
	require.NoError(t, h.db.First(&stored, e.ID).Error)
	assert.Zero(t, stored.ExamAttempts)
	assert.Equal(t, models.StageAwaitingExam, stored.Stage)
}

func TestSubmitExam_FailThenPass(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "retry@example.com")
	c := h.course(t, "retry", 0, threeQuestionExam())
	e, _, err := h.svc.Enroll(context.Background(), EnrollInput{StudentID: s.ID, CourseID: c.ID})
	require.NoError(t, err)

	out, err := h.svc.SubmitExam(context.Background(), e.ID, []int{3, 3, 3})
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.Equal(t, models.Failed{Attempts: 1, LastScore: 0}, out.Enrollment.State())
	assert.Equal(t, "failed", out.Enrollment.Status())
	assert.Nil(t, out.Enrollment.CompletedAt)

	out, err = h.svc.SubmitExam(context.Background(), e.ID, []int{0, 2, 3})
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.Equal(t, 2, out.Enrollment.ExamAttempts)

	out, err = h.svc.SubmitExam(context.Background(), e.ID, []int{0, 2, 1})
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.Equal(t, 3, out.Enrollment.ExamAttempts)
}

func TestSubmitExam_CertifiedIsNotDowngraded(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "certified@example.com")
	c := h.course(t, "certified", 0, threeQuestionExam())
	score := 100.0
	certID := uint(7)
	e := models.Enrollment{
		StudentID:     s.ID,
		CourseID:      c.ID,
		Stage:         models.StageCertified,
		ExamAttempts:  1,
		ExamScore:     &score,
		CertificateID: &certID,
		PaymentStatus: models.PaymentPaid,
		EnrolledAt:    fixedNow,
	}
	require.NoError(t, h.db.Create(&e).Error)

	out, err := h.svc.SubmitExam(context.Background(), e.ID, []int{3, 3, 3})
	require.NoError(t, err)
	assert.False(t, out.Passed)

	var stored models.Enrollment
	require.NoError(t, h.db.First(&stored, e.ID).Error)
	assert.Equal(t, models.StageCertified, stored.Stage)
	require.NotNil(t, stored.CertificateID)
	assert.Equal(t, certID, *stored.CertificateID)
	assert.Equal(t, 2, stored.ExamAttempts)
	assert.Equal(t, "completed", stored.Status())
}

func TestSubmitExam_PaidCourseNeedsAccess(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "access@example.com")
	c := h.course(t, "gated", 199, threeQuestionExam())
	m := h.membership(t, s.ID, 0, c)
	e, _, err := h.svc.Enroll(context.Background(), EnrollInput{StudentID: s.ID, CourseID: c.ID})
	require.NoError(t, err)

	require.NoError(t, h.db.Model(&m).Update("status", models.MembershipExpired).Error)

	_, err = h.svc.SubmitExam(context.Background(), e.ID, []int{0, 2, 1})
	assert.True(t, errs.Is(err, errs.AccessDenied))
}

func TestSubmitForStudent_PracticeExam(t *testing.T) {
	h := newHarness(t)
	s := h.student(t, "exam2@example.com")
	c := h.course(t, models.PracticeExamSlug, 0, threeQuestionExam())

	out, err := h.svc.SubmitForStudent(context.Background(), s.ID, c.ID, []int{0, 2, 1})
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.Equal(t, c.ID, out.Enrollment.CourseID)
	require.NotNil(t, out.Enrollment.Course)
	assert.Equal(t, -1, out.Enrollment.Course.ExamDefinition().Questions[0].CorrectAnswer)
}

type stubIssuer struct {
	calls []uint
	err   error
}

func (s *stubIssuer) Generate(_ context.Context, enrollmentID uint) (*certificate.Issued, error) {
	s.calls = append(s.calls, enrollmentID)
	if s.err != nil {
		return nil, s.err
	}
	v := models.CertificateView{Certificate: models.Certificate{ID: 11, EnrollmentID: enrollmentID, CertificateNumber: "SR-1-1"}}
	return &certificate.Issued{Certificate: v, DownloadURL: certificate.DownloadURL(11), Created: true}, nil
}

func TestSubmitExam_AutoIssue(t *testing.T) {
	issuer := &stubIssuer{}
	h := newHarness(t, WithCertificateIssuer(issuer, true))
	s := h.student(t, "auto@example.com")
	c := h.course(t, "auto", 0, threeQuestionExam())
	e, _, err := h.svc.Enroll(context.Background(), EnrollInput{StudentID: s.ID, CourseID: c.ID})
	require.NoError(t, err)

	out, err := h.svc.SubmitExam(context.Background(), e.ID, []int{3, 3, 3})
	require.NoError(t, err)
	assert.Empty(t, issuer.calls)

	out, err = h.svc.SubmitExam(context.Background(), e.ID, []int{0, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{e.ID}, issuer.calls)
	require.NotNil(t, out.Certificate)
	assert.Equal(t, uint(11), out.Certificate.ID)
	assert.Equal(t, "/api/certificates/download/11", out.DownloadURL)
	assert.True(t, out.Enrollment.CertificateIssued())
}

func TestSubmitExam_AutoIssueFailureKeepsResult(t *testing.T) {
	issuer := &stubIssuer{err: errors.New("school not configured")}
	h := newHarness(t, WithCertificateIssuer(issuer, true))
	s := h.student(t, "autofail@example.com")
	c := h.course(t, "autofail", 0, threeQuestionExam())
	e, _, err := h.svc.Enroll(context.Background(), EnrollInput{StudentID: s.ID, CourseID: c.ID})
	require.NoError(t, err)

	out, err := h.svc.SubmitExam(context.Background(), e.ID, []int{0, 2, 1})
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.Nil(t, out.Certificate)
	assert.Equal(t, models.Passed{Score: 100}, out.Enrollment.State())
}
