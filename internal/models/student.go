// Package models contains data structures for the application's domain models.
package models

import "time"

// PartnershipStatus is a student's position in the pairing lifecycle.
type PartnershipStatus string

const (
	// PartnershipStatusNone indicates the student is unpaired with no open request.
	PartnershipStatusNone PartnershipStatus = "none"
	// PartnershipStatusPendingSent indicates the student has an outgoing pending request.
	PartnershipStatusPendingSent PartnershipStatus = "pending_sent"
	// PartnershipStatusPendingReceived indicates the student has an incoming pending request.
	PartnershipStatusPendingReceived PartnershipStatus = "pending_received"
	// PartnershipStatusPaired indicates the student has a partner.
	PartnershipStatusPaired PartnershipStatus = "paired"
)

// Student is a project student. PartnerID and PartnershipStatus are owned by the
// partnership service; the profile fields are edited elsewhere.
type Student struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	Name              string            `gorm:"size:120;not null" json:"name"`
	Email             string            `gorm:"size:255;uniqueIndex" json:"email"`
	Bio               string            `gorm:"type:text" json:"bio,omitempty"`
	Skills            string            `gorm:"type:text" json:"skills,omitempty"`
	PartnerID         *uint             `gorm:"index" json:"partner_id"`
	PartnershipStatus PartnershipStatus `gorm:"type:varchar(20);not null;default:'none';index" json:"partnership_status"`
	Version           int64             `gorm:"not null;default:1" json:"version"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Student) TableName() string {
	return "students"
}

// IsPaired reports whether the student currently has a partner.
func (s *Student) IsPaired() bool {
	return s.PartnershipStatus == PartnershipStatusPaired && s.PartnerID != nil
}

// StudentSummary is the public projection of a student embedded in other responses.
type StudentSummary struct {
	ID                uint              `json:"id"`
	Name              string            `json:"name"`
	PartnershipStatus PartnershipStatus `json:"partnership_status"`
}

// Summary returns the public projection of s.
func (s *Student) Summary() StudentSummary {
	return StudentSummary{ID: s.ID, Name: s.Name, PartnershipStatus: s.PartnershipStatus}
}
