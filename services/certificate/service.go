package certificate

import (
	"academy/errs"
	"academy/models"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SchoolSource supplies the current school configuration.
type SchoolSource interface {
	Current() (models.School, bool)
}

// BadgeAwarder records achievements earned by an issued certificate.
type BadgeAwarder interface {
	AwardForCertificate(ctx context.Context, cert models.Certificate, courseName string) error
}

// Notifier is told about issued certificates. Implementations must not block.
type Notifier interface {
	CertificateIssued(student models.User, course models.Course, cert models.Certificate)
}

// Issued is the result of a generate call.
type Issued struct {
	Certificate models.CertificateView `json:"certificate"`
	DownloadURL string                 `json:"downloadUrl"`
	// Created is false when an existing certificate was returned.
	Created bool `json:"-"`
}

// Options configures a Service.
type Options struct {
	// Dir is where certificate PDFs are written.
	Dir string
	// URLPrefix is the public path Dir is served under, e.g. /uploads/certificates.
	URLPrefix string
	// Resolve maps stored asset paths (logo, signatures, templates) to files.
	Resolve  func(string) string
	Badges   BadgeAwarder
	Notifier Notifier
	Now      func() time.Time
}

type Service struct {
	db       *gorm.DB
	school   SchoolSource
	log      *zap.Logger
	dir      string
	prefix   string
	renderer *Renderer
	badges   BadgeAwarder
	notifier Notifier
	now      func() time.Time
}

func NewService(db *gorm.DB, school SchoolSource, log *zap.Logger, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	prefix := strings.TrimRight(opts.URLPrefix, "/")
	if prefix == "" {
		prefix = "/uploads/certificates"
	}
	return &Service{
		db:       db,
		school:   school,
		log:      log,
		dir:      opts.Dir,
		prefix:   prefix,
		renderer: &Renderer{Resolve: opts.Resolve, Log: log},
		badges:   opts.Badges,
		notifier: opts.Notifier,
		now:      now,
	}
}

// DownloadURL is the API path a certificate PDF is served from.
func DownloadURL(certificateID uint) string {
	return fmt.Sprintf("/api/certificates/download/%d", certificateID)
}

// Generate issues the certificate for a passed enrollment. Calling it again
// returns the existing certificate without writing a new file.
func (s *Service) Generate(ctx context.Context, enrollmentID uint) (*Issued, error) {
	var e models.Enrollment
	err := s.db.WithContext(ctx).First(&e, enrollmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Enrollment not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch enrollment")
	}

	if !models.CanIssueCertificate(e.State()) {
		return nil, errs.E(errs.Validation, "Student must pass exam before certificate can be issued")
	}

	if existing, err := s.byEnrollment(ctx, e.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	var student models.User
	var course models.Course
	if err := s.db.WithContext(ctx).First(&student, e.StudentID).Error; err != nil {
		return nil, notFoundOr(err, "Student or course not found")
	}
	if err := s.db.WithContext(ctx).First(&course, e.CourseID).Error; err != nil {
		return nil, notFoundOr(err, "Student or course not found")
	}

	school, ok := s.school.Current()
	if !ok {
		return nil, errs.E(errs.Validation, "School information not configured. Please set up school details first.")
	}
	if missing := school.MissingCertificateFields(); len(missing) > 0 {
		return nil, errs.E(errs.Validation, "School information is incomplete. Missing: %s", strings.Join(missing, ", ")).
			WithDetails(map[string][]string{"missing": missing})
	}

	if strings.TrimSpace(student.FirstName) == "" || strings.TrimSpace(student.LastName) == "" {
		return nil, errs.E(errs.Validation, "Student first name and last name are required for certificate")
	}
	if utf8.RuneCountInString(student.SSN) < 4 {
		return nil, errs.E(errs.Validation, "Student SSN must have at least 4 characters for certificate")
	}

	now := s.now().UTC()
	completion := now
	if e.CompletedAt != nil {
		completion = *e.CompletedAt
	}
	number := Number(now, e.ID)
	doc := Document{
		Name:              ParseName(student.FirstName, student.LastName),
		IDNumber:          IDNumber(student.SSN),
		CompletionDate:    completion,
		CourseName:        course.Name,
		CertificateNumber: number,
		School:            school,
		TemplatePath:      course.CertificateTemplate,
	}

	cert := models.Certificate{
		CertificateNumber:   number,
		StudentID:           student.ID,
		CourseID:            course.ID,
		EnrollmentID:        e.ID,
		StudentName:         student.FullName(),
		SSNLastFour:         doc.IDNumber,
		CompletionDate:      completion,
		SchoolName:          school.Name,
		InstructorName:      school.InstructorName,
		SchoolLicenseNumber: school.LicenseNumber,
		PDFURL:              path.Join(s.prefix, FileName(number)),
		IssuedAt:            now,
	}

	if err := s.persist(ctx, &e, &cert, doc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// a concurrent call issued first
			if existing, ferr := s.byEnrollment(ctx, e.ID); ferr == nil && existing != nil {
				return existing, nil
			}
		}
		var se *errs.Error
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, errs.Wrap(errs.Internal, err, "Failed to generate certificate")
	}

	s.log.Info("certificate issued",
		zap.Uint("certificateId", cert.ID),
		zap.String("certificateNumber", cert.CertificateNumber),
		zap.Uint("enrollmentId", e.ID))

	if s.badges != nil {
		if err := s.badges.AwardForCertificate(ctx, cert, course.Name); err != nil {
			s.log.Warn("badge award failed", zap.Uint("certificateId", cert.ID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.CertificateIssued(student, course, cert)
	}

	return &Issued{
		Certificate: models.CertificateView{
			Certificate:       cert,
			CourseName:        course.Name,
			CourseDescription: course.Description,
		},
		DownloadURL: DownloadURL(cert.ID),
		Created:     true,
	}, nil
}

// persist renders the PDF to a temp file, then inserts the certificate row,
// marks the enrollment certified and moves the file into place in one
// transaction. Nothing is left behind on failure.
func (s *Service) persist(ctx context.Context, e *models.Enrollment, cert *models.Certificate, doc Document) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create certificates directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".certificate-*.pdf.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	finalPath := filepath.Join(s.dir, FileName(cert.CertificateNumber))
	moved := false
	defer func() {
		if !moved {
			os.Remove(tmpPath)
		}
	}()

	if err := s.renderer.Render(doc, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync certificate file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close certificate file: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(cert).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Enrollment{}).
			Where("id = ? AND stage IN ?", e.ID, []models.Stage{models.StagePassed, models.StageCertified}).
			Updates(map[string]interface{}{
				"stage":          models.StageCertified,
				"certificate_id": cert.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.E(errs.Validation, "Student must pass exam before certificate can be issued")
		}
		if err := os.Rename(tmpPath, finalPath); err != nil {
			return fmt.Errorf("move certificate file: %w", err)
		}
		moved = true
		return nil
	})
	if err != nil && moved {
		// commit failed after the file was moved
		os.Remove(finalPath)
	}
	if err == nil {
		score := 0.0
		if e.ExamScore != nil {
			score = *e.ExamScore
		}
		e.SetState(models.Certified{Score: score, CertificateID: cert.ID})
	}
	return err
}

func (s *Service) byEnrollment(ctx context.Context, enrollmentID uint) (*Issued, error) {
	var v models.CertificateView
	err := s.viewQuery(ctx).Where("certificates.enrollment_id = ?", enrollmentID).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch certificate")
	}
	return &Issued{Certificate: v, DownloadURL: DownloadURL(v.ID)}, nil
}

func (s *Service) viewQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Certificate{}).
		Select("certificates.*, courses.name AS course_name, courses.description AS course_description").
		Joins("LEFT JOIN courses ON courses.id = certificates.course_id")
}

// Get returns a certificate with its course name.
func (s *Service) Get(ctx context.Context, id uint) (*models.CertificateView, error) {
	var v models.CertificateView
	err := s.viewQuery(ctx).Where("certificates.id = ?", id).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Certificate not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch certificate")
	}
	return &v, nil
}

// ListByStudent returns a student's certificates, newest first.
func (s *Service) ListByStudent(ctx context.Context, studentID uint) ([]models.CertificateView, error) {
	list := []models.CertificateView{}
	err := s.viewQuery(ctx).Where("certificates.student_id = ?", studentID).
		Order("certificates.issued_at DESC").Find(&list).Error
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch certificates")
	}
	return list, nil
}

// ListAll returns every certificate, newest first.
func (s *Service) ListAll(ctx context.Context) ([]models.CertificateView, error) {
	list := []models.CertificateView{}
	if err := s.viewQuery(ctx).Order("certificates.issued_at DESC").Find(&list).Error; err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch certificates")
	}
	return list, nil
}

// File returns the on-disk path of a certificate PDF.
func (s *Service) File(ctx context.Context, id uint) (string, *models.CertificateView, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	full := filepath.Join(s.dir, path.Base(v.PDFURL))
	if _, err := os.Stat(full); err != nil {
		return "", nil, errs.E(errs.NotFound, "Certificate file not found")
	}
	return full, v, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.E(errs.NotFound, msg)
	}
	return errs.Wrap(errs.Internal, err, msg)
}
