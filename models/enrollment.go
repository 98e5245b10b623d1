package models

import (
	"time"

	"github.com/bytedance/sonic"
)

// PaymentStatus enum values
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// AccessVia records how an enrollment was entitled when it was created.
const (
	AccessViaPayment    = "payment"
	AccessViaMembership = "membership"
	AccessViaFree       = "free"
)

// Stage is the persisted tag of an EnrollmentState.
type Stage string

const (
	StagePending      Stage = "pending"
	StageAwaitingExam Stage = "awaiting_exam"
	StageFailed       Stage = "failed"
	StagePassed       Stage = "passed"
	StageCertified    Stage = "certified"
)

type Enrollment struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	StudentID               uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"studentId"`
	CourseID                uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course;index" json:"courseId"`
	Stage                   Stage      `gorm:"not null;type:varchar(20);default:'pending'" json:"state"`
	Progress                int        `gorm:"not null;default:0" json:"progress"`
	ExamAttempts            int        `gorm:"not null;default:0" json:"examAttempts"`
	ExamScore               *float64   `json:"examScore"`
	CertificateID           *uint      `json:"certificateId,omitempty"`
	PaymentStatus           string     `gorm:"not null;type:varchar(20);default:'pending'" json:"paymentStatus"`
	PaymentID               *string    `json:"paymentId"`
	MembershipID            *uint      `json:"membershipId"`
	AccessVia               string     `gorm:"not null;type:varchar(20);default:'payment'" json:"accessVia"`
	TeachableEnrollmentID   string     `json:"teachableEnrollmentId,omitempty"`
	DiscountApplied         float64    `gorm:"not null;default:0" json:"discountApplied"`
	CoursePriceAtEnrollment float64    `gorm:"not null;default:0" json:"coursePriceAtEnrollment"`
	EnrolledAt              time.Time  `gorm:"not null" json:"enrolledAt"`
	CompletedAt             *time.Time `json:"completedAt"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`

	Student User    `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course  *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// State decodes the persisted columns into a typed state.
func (e Enrollment) State() EnrollmentState {
	score := 0.0
	if e.ExamScore != nil {
		score = *e.ExamScore
	}
	switch e.Stage {
	case StageAwaitingExam:
		return AwaitingExam{}
	case StageFailed:
		return Failed{Attempts: e.ExamAttempts, LastScore: score}
	case StagePassed:
		return Passed{Score: score}
	case StageCertified:
		if e.CertificateID == nil {
			return Passed{Score: score}
		}
		return Certified{Score: score, CertificateID: *e.CertificateID}
	}
	return Pending{}
}

// SetState writes s into the persisted columns.
func (e *Enrollment) SetState(s EnrollmentState) {
	e.Stage = s.Stage()
	e.CertificateID = nil
	switch st := s.(type) {
	case Failed:
		e.ExamAttempts = st.Attempts
		e.ExamScore = &st.LastScore
	case Passed:
		e.ExamScore = &st.Score
	case Certified:
		e.ExamScore = &st.Score
		id := st.CertificateID
		e.CertificateID = &id
	}
}

// Status is the legacy status string: pending, active, failed or completed.
func (e Enrollment) Status() string {
	switch e.State().(type) {
	case AwaitingExam:
		return "active"
	case Failed:
		return "failed"
	case Passed, Certified:
		return "completed"
	}
	return "pending"
}

// ExamPassed reports whether the latest recorded outcome is a pass.
func (e Enrollment) ExamPassed() bool {
	switch e.State().(type) {
	case Passed, Certified:
		return true
	}
	return false
}

func (e Enrollment) CertificateIssued() bool {
	_, ok := e.State().(Certified)
	return ok
}

func (e Enrollment) MarshalJSON() ([]byte, error) {
	type plain Enrollment
	return sonic.Marshal(struct {
		plain
		Status            string `json:"status"`
		ExamPassed        bool   `json:"examPassed"`
		CertificateIssued bool   `json:"certificateIssued"`
	}{
		plain:             plain(e),
		Status:            e.Status(),
		ExamPassed:        e.ExamPassed(),
		CertificateIssued: e.CertificateIssued(),
	})
}
