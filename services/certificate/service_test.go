package certificate

import (
	"academy/database"
	"academy/errs"
	"academy/models"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var issuedAt = time.Date(2025, 4, 1, 15, 30, 0, 0, time.UTC)

type staticSchool struct {
	school models.School
	ok     bool
}

func (s staticSchool) Current() (models.School, bool) { return s.school, s.ok }

type recordingBadges struct{ awarded []uint }

func (r *recordingBadges) AwardForCertificate(_ context.Context, cert models.Certificate, _ string) error {
	r.awarded = append(r.awarded, cert.ID)
	return nil
}

func completeSchool() models.School {
	return models.School{
		Name:           "Lone Star Security Academy",
		LicenseNumber:  "C12345",
		InstructorName: "Robert Hale",
	}
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	dir     string
	student models.User
	course  models.Course
	badges  *recordingBadges
}

func setup(t *testing.T, school SchoolSource) *fixture {
	t.Helper()
	db := database.OpenTest(t)
	dir := filepath.Join(t.TempDir(), "certificates")
	badges := &recordingBadges{}
	svc := NewService(db, school, zap.NewNop(), Options{
		Dir:    dir,
		Badges: badges,
		Now:    func() time.Time { return issuedAt },
	})

	student := models.User{FirstName: "John Michael", LastName: "Smith", Email: "john@example.com", SSN: "123456789"}
	require.NoError(t, db.Create(&student).Error)
	course := models.Course{Name: "Level II Security Officer", Description: "Non-commissioned", CourseNumber: "L2", Slug: "level-2", Price: 99, IsActive: true}
	require.NoError(t, db.Create(&course).Error)

	return &fixture{db: db, svc: svc, dir: dir, student: student, course: course, badges: badges}
}

func (f *fixture) enroll(t *testing.T, stage models.Stage) models.Enrollment {
	t.Helper()
	score := 85.0
	completed := issuedAt.Add(-time.Hour)
	e := models.Enrollment{
		StudentID:     f.student.ID,
		CourseID:      f.course.ID,
		Stage:         stage,
		ExamAttempts:  1,
		ExamScore:     &score,
		PaymentStatus: models.PaymentPaid,
		EnrolledAt:    issuedAt.Add(-48 * time.Hour),
		CompletedAt:   &completed,
	}
	require.NoError(t, f.db.Create(&e).Error)
	return e
}

func (f *fixture) pdfFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestGenerate_IssuesCertificate(t *testing.T) {
	f := setup(t, staticSchool{school: completeSchool(), ok: true})
	e := f.enroll(t, models.StagePassed)

	issued, err := f.svc.Generate(context.Background(), e.ID)
	require.NoError(t, err)
	assert.True(t, issued.Created)

	cert := issued.Certificate
	assert.Equal(t, Number(issuedAt, e.ID), cert.CertificateNumber)
	assert.Equal(t, "John Michael Smith", cert.StudentName)
	assert.Equal(t, "6789", cert.SSNLastFour)
	assert.Equal(t, "Lone Star Security Academy", cert.SchoolName)
	assert.Equal(t, "C12345", cert.SchoolLicenseNumber)
	assert.Equal(t, "Level II Security Officer", cert.CourseName)
	assert.Equal(t, "/uploads/certificates/"+FileName(cert.CertificateNumber), cert.PDFURL)
	assert.Equal(t, DownloadURL(cert.ID), issued.DownloadURL)
	assert.Equal(t, []uint{cert.ID}, f.badges.awarded)

	data, err := os.ReadFile(filepath.Join(f.dir, FileName(cert.CertificateNumber)))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	var stored models.Enrollment
	require.NoError(t, f.db.First(&stored, e.ID).Error)
	assert.Equal(t, models.StageCertified, stored.Stage)
	require.NotNil(t, stored.CertificateID)
	assert.Equal(t, cert.ID, *stored.CertificateID)
	assert.Equal(t, models.Certified{Score: 85, CertificateID: cert.ID}, stored.State())
}

func TestGenerate_IsIdempotent(t *testing.T) {
	f := setup(t, staticSchool{school: completeSchool(), ok: true})
	e := f.enroll(t, models.StagePassed)

	first, err := f.svc.Generate(context.Background(), e.ID)
	require.NoError(t, err)
	second, err := f.svc.Generate(context.Background(), e.ID)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Certificate.ID, second.Certificate.ID)
	assert.Equal(t, first.Certificate.CertificateNumber, second.Certificate.CertificateNumber)
	assert.Len(t, f.pdfFiles(t), 1)
	assert.Len(t, f.badges.awarded, 1)

	var count int64
	require.NoError(t, f.db.Model(&models.Certificate{}).Where("enrollment_id = ?", e.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGenerate_RequiresPassedExam(t *testing.T) {
	for _, stage := range []models.Stage{models.StagePending, models.StageAwaitingExam, models.StageFailed} {
		t.Run(string(stage), func(t *testing.T) {
			f := setup(t, staticSchool{school: completeSchool(), ok: true})
			e := f.enroll(t, stage)

			_, err := f.svc.Generate(context.Background(), e.ID)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.Validation))
			assert.Contains(t, err.Error(), "Student must pass exam")

			var count int64
			require.NoError(t, f.db.Model(&models.Certificate{}).Count(&count).Error)
			assert.Zero(t, count)
			assert.Empty(t, f.pdfFiles(t))
		})
	}
}

func TestGenerate_EnrollmentNotFound(t *testing.T) {
	f := setup(t, staticSchool{school: completeSchool(), ok: true})
	_, err := f.svc.Generate(context.Background(), 999)
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestGenerate_SchoolPreconditions(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		f := setup(t, staticSchool{})
		e := f.enroll(t, models.StagePassed)
		_, err := f.svc.Generate(context.Background(), e.ID)
		assert.True(t, errs.Is(err, errs.Validation))
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("incomplete", func(t *testing.T) {
		school := completeSchool()
		school.LicenseNumber = ""
		school.InstructorName = ""
		f := setup(t, staticSchool{school: school, ok: true})
		e := f.enroll(t, models.StagePassed)

		_, err := f.svc.Generate(context.Background(), e.ID)
		require.Error(t, err)
		var se *errs.Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, errs.Validation, se.Kind)
		assert.Equal(t, map[string][]string{"missing": {"licenseNumber", "instructorName"}}, se.Details)
		assert.Empty(t, f.pdfFiles(t))
	})
}

func TestGenerate_StudentPreconditions(t *testing.T) {
	f := setup(t, staticSchool{school: completeSchool(), ok: true})
	require.NoError(t, f.db.Model(&f.student).Update("ssn", "12").Error)
	e := f.enroll(t, models.StagePassed)

	_, err := f.svc.Generate(context.Background(), e.ID)
	assert.True(t, errs.Is(err, errs.Validation))
	assert.Contains(t, err.Error(), "SSN")

	var stored models.Enrollment
	require.NoError(t, f.db.First(&stored, e.ID).Error)
	assert.Equal(t, models.StagePassed, stored.Stage)

	// four bytes but only three characters
	require.NoError(t, f.db.Model(&f.student).Update("ssn", "é12").Error)
	_, err = f.svc.Generate(context.Background(), e.ID)
	assert.True(t, errs.Is(err, errs.Validation))
	assert.Contains(t, err.Error(), "SSN")
}

func TestFile(t *testing.T) {
	f := setup(t, staticSchool{school: completeSchool(), ok: true})
	e := f.enroll(t, models.StagePassed)
	issued, err := f.svc.Generate(context.Background(), e.ID)
	require.NoError(t, err)

	path, view, err := f.svc.File(context.Background(), issued.Certificate.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, FileName(view.CertificateNumber)))

	require.NoError(t, os.Remove(path))
	_, _, err = f.svc.File(context.Background(), issued.Certificate.ID)
	assert.True(t, errs.Is(err, errs.NotFound))

	_, _, err = f.svc.File(context.Background(), 12345)
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestListByStudent(t *testing.T) {
	f := setup(t, staticSchool{school: completeSchool(), ok: true})
	e := f.enroll(t, models.StagePassed)
	_, err := f.svc.Generate(context.Background(), e.ID)
	require.NoError(t, err)

	list, err := f.svc.ListByStudent(context.Background(), f.student.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.course.Name, list[0].CourseName)
	assert.Equal(t, f.course.Description, list[0].CourseDescription)

	none, err := f.svc.ListByStudent(context.Background(), f.student.ID+1)
	require.NoError(t, err)
	assert.Empty(t, none)
}
