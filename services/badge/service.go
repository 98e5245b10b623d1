package badge

import (
	"academy/errs"
	"academy/models"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Input describes a badge to award.
type Input struct {
	StudentID        uint   `json:"studentId"`
	CourseID         uint   `json:"courseId"`
	EnrollmentID     uint   `json:"enrollmentId"`
	BadgeType        string `json:"badgeType"`
	BadgeName        string `json:"badgeName"`
	BadgeDescription string `json:"badgeDescription"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Award creates the badge unless the enrollment already has one of the same
// type, in which case the existing badge is returned with created false.
func (s *Service) Award(ctx context.Context, in Input) (*models.Badge, bool, error) {
	if in.BadgeType == "" {
		in.BadgeType = models.BadgeCertificate
	}
	if err := s.checkEnrollment(ctx, in); err != nil {
		return nil, false, err
	}
	existing, err := s.find(ctx, in.EnrollmentID, in.BadgeType)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	b := models.Badge{
		StudentID:        in.StudentID,
		CourseID:         in.CourseID,
		EnrollmentID:     in.EnrollmentID,
		BadgeType:        in.BadgeType,
		BadgeName:        in.BadgeName,
		BadgeDescription: in.BadgeDescription,
		EarnedAt:         s.now(),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if winner, ferr := s.find(ctx, in.EnrollmentID, in.BadgeType); ferr == nil && winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, errs.Wrap(errs.Internal, err, "Failed to create badge")
	}
	s.log.Info("badge awarded",
		zap.Uint("badgeId", b.ID),
		zap.Uint("studentId", b.StudentID),
		zap.String("type", b.BadgeType))
	return &b, true, nil
}

// AwardForCertificate gives the certificate badge for an issued certificate.
func (s *Service) AwardForCertificate(ctx context.Context, cert models.Certificate, courseName string) error {
	_, _, err := s.Award(ctx, Input{
		StudentID:        cert.StudentID,
		CourseID:         cert.CourseID,
		EnrollmentID:     cert.EnrollmentID,
		BadgeType:        models.BadgeCertificate,
		BadgeName:        courseName + " Certified",
		BadgeDescription: "Earned certificate " + cert.CertificateNumber,
	})
	return err
}

// checkEnrollment requires the enrollment to belong to the badge's student
// and course.
func (s *Service) checkEnrollment(ctx context.Context, in Input) error {
	var e models.Enrollment
	err := s.db.WithContext(ctx).Select("id", "student_id", "course_id").First(&e, in.EnrollmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.E(errs.NotFound, "Enrollment not found")
	}
	if err != nil {
		return errs.Wrap(errs.Internal, err, "Failed to fetch enrollment")
	}
	if e.StudentID != in.StudentID || e.CourseID != in.CourseID {
		return errs.E(errs.Validation, "Enrollment does not match student and course")
	}
	return nil
}

func (s *Service) find(ctx context.Context, enrollmentID uint, badgeType string) (*models.Badge, error) {
	var b models.Badge
	err := s.db.WithContext(ctx).Where("enrollment_id = ? AND badge_type = ?", enrollmentID, badgeType).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch badge")
	}
	return &b, nil
}

// Get returns a badge with its course.
func (s *Service) Get(ctx context.Context, id uint) (*models.Badge, error) {
	var b models.Badge
	err := s.db.WithContext(ctx).Preload("Course").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Badge not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch badge")
	}
	publicCourse(&b)
	return &b, nil
}

func (s *Service) ListByStudent(ctx context.Context, studentID uint) ([]models.Badge, error) {
	return s.list(s.db.WithContext(ctx).Where("student_id = ?", studentID))
}

func (s *Service) ListAll(ctx context.Context) ([]models.Badge, error) {
	return s.list(s.db.WithContext(ctx))
}

func (s *Service) list(q *gorm.DB) ([]models.Badge, error) {
	badges := []models.Badge{}
	if err := q.Preload("Course").Order("earned_at DESC").Find(&badges).Error; err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch badges")
	}
	for i := range badges {
		publicCourse(&badges[i])
	}
	return badges, nil
}

func publicCourse(b *models.Badge) {
	if b.Course != nil {
		c := b.Course.Public()
		b.Course = &c
	}
}
