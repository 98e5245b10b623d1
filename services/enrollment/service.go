package enrollment

import (
	"academy/errs"
	"academy/models"
	"academy/services/certificate"
	"academy/services/membership"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const accessDeniedMessage = "You do not have access to this course. Please upgrade your membership plan or complete payment."

// AccessChecker resolves course entitlement for a student.
type AccessChecker interface {
	CheckAccess(ctx context.Context, studentID, courseID uint) (membership.Access, error)
}

// CertificateIssuer generates certificates for passed enrollments.
type CertificateIssuer interface {
	Generate(ctx context.Context, enrollmentID uint) (*certificate.Issued, error)
}

// Notifier receives enrollment events. Implementations must not block.
type Notifier interface {
	EnrollmentConfirmed(student models.User, course models.Course)
}

// RemoteEnroller mirrors enrollments into an external LMS.
type RemoteEnroller interface {
	EnrollStudent(ctx context.Context, student models.User, course models.Course) error
}

// EnrollInput is a request to enroll a student in a course.
type EnrollInput struct {
	StudentID     uint
	CourseID      uint
	PaymentID     string
	PaymentStatus string
	// SkipAccessCheck is set by internal flows such as the practice exam seed.
	SkipAccessCheck bool
}

type Service struct {
	db        *gorm.DB
	access    AccessChecker
	log       *zap.Logger
	now       func() time.Time
	issuer    CertificateIssuer
	autoIssue bool
	notifier  Notifier
	remote    RemoteEnroller
}

type Option func(*Service)

// WithCertificateIssuer enables certificate generation after a passing exam
// when autoIssue is true.
func WithCertificateIssuer(issuer CertificateIssuer, autoIssue bool) Option {
	return func(s *Service) {
		s.issuer = issuer
		s.autoIssue = autoIssue
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithRemoteEnroller(r RemoteEnroller) Option {
	return func(s *Service) { s.remote = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, access AccessChecker, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:     db,
		access: access,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enroll returns the student's enrollment in the course, creating it if
// needed. created is false when an existing enrollment was returned.
func (s *Service) Enroll(ctx context.Context, in EnrollInput) (e *models.Enrollment, created bool, err error) {
	student, course, err := s.loadParties(ctx, in.StudentID, in.CourseID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.findByPair(ctx, in.StudentID, in.CourseID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if !in.SkipAccessCheck {
			if err := s.verifyAccess(ctx, existing, course); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	}

	row, err := s.newEnrollment(ctx, student, course, in)
	if err != nil {
		return nil, false, err
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent create; return the winner
			winner, ferr := s.findByPair(ctx, in.StudentID, in.CourseID)
			if ferr != nil {
				return nil, false, ferr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, errs.Wrap(errs.Internal, err, "Failed to create enrollment")
	}

	s.log.Info("enrollment created",
		zap.Uint("enrollmentId", row.ID),
		zap.Uint("studentId", row.StudentID),
		zap.Uint("courseId", row.CourseID),
		zap.String("paymentStatus", row.PaymentStatus),
		zap.Float64("discountApplied", row.DiscountApplied))

	s.afterCreate(student, course)

	c := course.Public()
	row.Course = &c
	return row, true, nil
}

// newEnrollment resolves entitlement and builds the row to insert.
func (s *Service) newEnrollment(ctx context.Context, student models.User, course models.Course, in EnrollInput) (*models.Enrollment, error) {
	now := s.now().UTC()
	row := &models.Enrollment{
		StudentID:               student.ID,
		CourseID:                course.ID,
		PaymentStatus:           paymentStatus(in),
		AccessVia:               models.AccessViaPayment,
		CoursePriceAtEnrollment: course.Price,
		EnrolledAt:              now,
	}
	if in.PaymentID != "" {
		pid := in.PaymentID
		row.PaymentID = &pid
	}

	if !in.SkipAccessCheck {
		access, err := s.access.CheckAccess(ctx, student.ID, course.ID)
		if err != nil {
			return nil, errs.Wrap(errs.AccessUndetermined, err, "Could not verify course access. Please try again later.")
		}

		switch {
		case access.HasAccess:
			row.DiscountApplied = course.Price
			row.PaymentStatus = models.PaymentPaid
			row.AccessVia = models.AccessViaMembership
		case access.Membership != nil:
			row.DiscountApplied = course.Price * access.Membership.DiscountPercent / 100
		}
		if access.Membership != nil {
			mid := access.Membership.ID
			row.MembershipID = &mid
		}

		paid := in.PaymentID != "" && in.PaymentStatus == models.PaymentPaid
		if !access.HasAccess && course.Price > 0 && !paid {
			return nil, errs.E(errs.AccessDenied, accessDeniedMessage)
		}
	}

	if course.Price == 0 {
		row.PaymentStatus = models.PaymentPaid
		row.AccessVia = models.AccessViaFree
	}
	if row.PaymentStatus == models.PaymentPaid {
		row.SetState(models.AwaitingExam{})
	} else {
		row.SetState(models.Pending{})
	}
	return row, nil
}

func paymentStatus(in EnrollInput) string {
	if in.PaymentStatus != "" {
		return in.PaymentStatus
	}
	return models.PaymentPending
}

func (s *Service) afterCreate(student models.User, course models.Course) {
	if s.notifier != nil {
		s.notifier.EnrollmentConfirmed(student, course)
	}
	if s.remote != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.remote.EnrollStudent(ctx, student, course); err != nil {
				s.log.Warn("remote enrollment failed",
					zap.Uint("studentId", student.ID),
					zap.Uint("courseId", course.ID),
					zap.Error(err))
			}
		}()
	}
}

// verifyAccess re-checks entitlement for an existing enrollment.
func (s *Service) verifyAccess(ctx context.Context, e *models.Enrollment, course models.Course) error {
	if course.Price == 0 {
		return nil
	}
	access, err := s.access.CheckAccess(ctx, e.StudentID, e.CourseID)
	if err != nil {
		return errs.Wrap(errs.AccessUndetermined, err, "Could not verify course access. Please try again later.")
	}
	if access.HasAccess {
		return nil
	}
	// a membership waiver ends with the membership; a direct payment does not
	if e.AccessVia != models.AccessViaMembership && e.PaymentStatus == models.PaymentPaid {
		return nil
	}
	return errs.E(errs.AccessDenied, accessDeniedMessage)
}

func (s *Service) loadParties(ctx context.Context, studentID, courseID uint) (models.User, models.Course, error) {
	var student models.User
	var course models.Course

	err := s.db.WithContext(ctx).First(&student, studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return student, course, errs.E(errs.NotFound, "Student not found")
	}
	if err != nil {
		return student, course, errs.Wrap(errs.Internal, err, "Failed to fetch student")
	}

	err = s.db.WithContext(ctx).First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return student, course, errs.E(errs.NotFound, "Course not found")
	}
	if err != nil {
		return student, course, errs.Wrap(errs.Internal, err, "Failed to fetch course")
	}
	return student, course, nil
}

func (s *Service) findByPair(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := s.db.WithContext(ctx).Where("student_id = ? AND course_id = ?", studentID, courseID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch enrollment")
	}
	return &e, nil
}

// Get returns an enrollment with its course.
func (s *Service) Get(ctx context.Context, id uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := s.db.WithContext(ctx).Preload("Course").First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.E(errs.NotFound, "Enrollment not found")
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch enrollment")
	}
	publicCourse(&e)
	return &e, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (s *Service) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	list := []models.Enrollment{}
	err := s.db.WithContext(ctx).Preload("Course").
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch enrollments")
	}
	for i := range list {
		publicCourse(&list[i])
	}
	return list, nil
}

// ListAll returns every enrollment, newest first.
func (s *Service) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	list := []models.Enrollment{}
	if err := s.db.WithContext(ctx).Preload("Course").Order("enrolled_at DESC").Find(&list).Error; err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch enrollments")
	}
	for i := range list {
		publicCourse(&list[i])
	}
	return list, nil
}

// EnsurePracticeEnrollment enrolls the student in the free practice exam
// course if it exists. It returns nil when no practice course is configured.
func (s *Service) EnsurePracticeEnrollment(ctx context.Context, studentID uint) (*models.Enrollment, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", models.PracticeExamSlug, true).
		First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to fetch practice exam course")
	}
	e, _, err := s.Enroll(ctx, EnrollInput{StudentID: studentID, CourseID: course.ID, SkipAccessCheck: true})
	return e, err
}

// UpdateProgress clamps progress to [0,100]. completedAt is set the first
// time progress reaches 100 and never cleared.
func (s *Service) UpdateProgress(ctx context.Context, id uint, progress int) (*models.Enrollment, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Progress = clamp(progress, 0, 100)
	updates := map[string]interface{}{"progress": e.Progress}
	if e.Progress == 100 && e.CompletedAt == nil {
		now := s.now().UTC()
		e.CompletedAt = &now
		updates["completed_at"] = now
	}
	if err := s.db.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", e.ID).Updates(updates).Error; err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to update progress")
	}
	return e, nil
}

// MarkPaid records a confirmed payment and moves a pending enrollment on to
// the exam.
func (s *Service) MarkPaid(ctx context.Context, id uint, paymentID string) (*models.Enrollment, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	e.PaymentStatus = models.PaymentPaid
	e.AccessVia = models.AccessViaPayment
	if paymentID != "" {
		e.PaymentID = &paymentID
	}
	if _, ok := e.State().(models.Pending); ok {
		e.SetState(models.AwaitingExam{})
	}
	err = s.db.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", e.ID).Updates(map[string]interface{}{
		"payment_status": e.PaymentStatus,
		"payment_id":     e.PaymentID,
		"access_via":     e.AccessVia,
		"stage":          e.Stage,
	}).Error
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "Failed to record payment")
	}
	return e, nil
}

func publicCourse(e *models.Enrollment) {
	if e.Course != nil {
		c := e.Course.Public()
		e.Course = &c
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
