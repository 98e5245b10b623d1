package teachable

import (
	"academy/errs"
	"academy/models"
	"academy/utils"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchoolSource supplies the school holding the Teachable credentials.
type SchoolSource interface {
	Current() (models.School, bool)
}

// Service links local records with their Teachable counterparts.
type Service struct {
	db      *gorm.DB
	school  SchoolSource
	baseURL string
	log     *zap.Logger
}

func NewService(db *gorm.DB, school SchoolSource, baseURL string, log *zap.Logger) *Service {
	return &Service{db: db, school: school, baseURL: baseURL, log: log}
}

func (s *Service) client() (*Client, bool) {
	school, ok := s.school.Current()
	if !ok || school.TeachableAPIKey == "" {
		return nil, false
	}
	return NewClient(s.baseURL, school.TeachableAPIKey), true
}

// EnrollStudent enrolls student in the Teachable copy of course, creating the
// remote user first if needed. Courses without a Teachable id and schools
// without an API key are skipped.
func (s *Service) EnrollStudent(ctx context.Context, student models.User, course models.Course) error {
	if course.TeachableCourseID == nil || *course.TeachableCourseID == "" {
		return nil
	}
	c, ok := s.client()
	if !ok {
		return nil
	}

	remoteUserID := student.TeachableUserID
	if remoteUserID == "" {
		u, err := c.CreateUser(ctx, student.FullName(), student.Email, strings.ReplaceAll(uuid.NewString(), "-", ""))
		if err != nil {
			return err
		}
		remoteUserID = u.ID.String()
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", student.ID).
			Update("teachable_user_id", remoteUserID).Error; err != nil {
			return err
		}
	}

	remote, err := c.EnrollUser(ctx, remoteUserID, *course.TeachableCourseID)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		Update("teachable_enrollment_id", remote.ID.String()).Error
	if err != nil {
		return err
	}
	s.log.Info("teachable enrollment created",
		zap.Uint("studentId", student.ID),
		zap.Uint("courseId", course.ID),
		zap.String("teachableEnrollmentId", remote.ID.String()))
	return nil
}

// SyncCourse creates the course in Teachable and stores the remote id.
func (s *Service) SyncCourse(ctx context.Context, courseID uint) (*models.Course, *Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, errs.E(errs.NotFound, "Course not found")
	}
	if err != nil {
		return nil, nil, errs.Wrap(errs.Internal, err, "Failed to fetch course")
	}

	c, ok := s.client()
	if !ok {
		return nil, nil, errs.E(errs.Validation, "Teachable API not configured")
	}

	remote, err := c.CreateCourse(ctx, Course{
		Name:        course.Name,
		Headline:    utils.Truncate(course.Description, 100),
		Description: course.Description,
		Price:       course.Price,
		Published:   course.IsActive,
	})
	if err != nil {
		return nil, nil, errs.Wrap(errs.Internal, err, "Failed to sync course")
	}

	remoteID := remote.ID.String()
	if err := s.db.WithContext(ctx).Model(&course).Update("teachable_course_id", remoteID).Error; err != nil {
		return nil, nil, errs.Wrap(errs.Internal, err, "Failed to store Teachable course id")
	}
	course.TeachableCourseID = &remoteID
	s.log.Info("course synced to teachable", zap.Uint("courseId", course.ID), zap.String("teachableCourseId", remoteID))
	pub := course.Public()
	return &pub, remote, nil
}
