package models

import "time"

type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FirstName       string    `gorm:"not null" json:"firstName"`
	LastName        string    `gorm:"not null" json:"lastName"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone           string    `json:"phone"`
	SSN             string    `gorm:"column:ssn" json:"-"`
	Address         string    `json:"address"`
	IsAdmin         bool      `gorm:"default:false" json:"isAdmin"`
	Password        string    `json:"-"`
	TeachableUserID string    `json:"teachableUserId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FullName is "First Last" with empty parts dropped.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// SSNLastFour returns the last four characters of the SSN, or "" if shorter.
func (u User) SSNLastFour() string {
	if len(u.SSN) < 4 {
		return ""
	}
	return u.SSN[len(u.SSN)-4:]
}
