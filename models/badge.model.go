package models

import "time"

const BadgeCertificate = "certificate"

type Badge struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StudentID        uint      `gorm:"not null;index" json:"studentId"`
	CourseID         uint      `gorm:"not null;index" json:"courseId"`
	EnrollmentID     uint      `gorm:"not null;uniqueIndex:idx_badge_enrollment_type" json:"enrollmentId"`
	BadgeType        string    `gorm:"not null;default:'certificate';uniqueIndex:idx_badge_enrollment_type" json:"badgeType"`
	BadgeName        string    `gorm:"not null" json:"badgeName"`
	BadgeDescription string    `json:"badgeDescription"`
	EarnedAt         time.Time `json:"earnedAt"`

	Student    User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course     *Course    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}
