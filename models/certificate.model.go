package models

import "time"

// Certificate is immutable once issued.
type Certificate struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	CertificateNumber   string    `gorm:"uniqueIndex;not null" json:"certificateNumber"`
	StudentID           uint      `gorm:"not null;index" json:"studentId"`
	CourseID            uint      `gorm:"not null;index" json:"courseId"`
	EnrollmentID        uint      `gorm:"not null;uniqueIndex" json:"enrollmentId"`
	StudentName         string    `gorm:"not null" json:"studentName"`
	SSNLastFour         string    `gorm:"column:ssn_last_four" json:"ssnLastFour"`
	CompletionDate      time.Time `gorm:"not null" json:"completionDate"`
	SchoolName          string    `json:"schoolName"`
	InstructorName      string    `json:"instructorName"`
	SchoolLicenseNumber string    `json:"schoolLicenseNumber"`
	PDFURL              string    `gorm:"column:pdf_url" json:"pdfUrl"`
	IssuedAt            time.Time `json:"issuedAt"`

	Student    User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course     Course     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// CertificateView is a certificate joined with its course for responses.
type CertificateView struct {
	Certificate
	CourseName        string `json:"courseName"`
	CourseDescription string `json:"courseDescription"`
}
