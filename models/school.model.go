package models

import "time"

// School is the single tenant whose details appear on every certificate.
type School struct {
	ID                              uint      `gorm:"primaryKey" json:"id"`
	Name                            string    `gorm:"not null" json:"name"`
	LicenseNumber                   string    `json:"licenseNumber"`
	InstructorName                  string    `json:"instructorName"`
	InstructorSignature             string    `json:"instructorSignature"`
	BusinessRepresentative          string    `json:"businessRepresentative"`
	BusinessRepresentativeSignature string    `json:"businessRepresentativeSignature"`
	Logo                            string    `json:"logo"`
	Address                         string    `json:"address"`
	Phone                           string    `json:"phone"`
	Email                           string    `json:"email"`
	Website                         string    `json:"website"`
	TeachableSchoolID               string    `json:"teachableSchoolId,omitempty"`
	TeachableAPIKey                 string    `json:"-"`
	CreatedAt                       time.Time `json:"createdAt"`
	UpdatedAt                       time.Time `json:"updatedAt"`
}

// MissingCertificateFields lists the fields a certificate cannot be issued without.
func (s School) MissingCertificateFields() []string {
	var missing []string
	if s.Name == "" {
		missing = append(missing, "name")
	}
	if s.LicenseNumber == "" {
		missing = append(missing, "licenseNumber")
	}
	if s.InstructorName == "" {
		missing = append(missing, "instructorName")
	}
	return missing
}

// RepresentativeSignature falls back to the instructor signature.
func (s School) RepresentativeSignature() string {
	if s.BusinessRepresentativeSignature != "" {
		return s.BusinessRepresentativeSignature
	}
	return s.InstructorSignature
}
