package models

import "time"

// AvailabilityStatus describes whether a supervisor is taking on new projects.
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityLimited     AvailabilityStatus = "limited"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

// Supervisor is a project supervisor. CurrentCapacity counts approved
// capacity-consuming units and is written only by the application service.
type Supervisor struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	Name               string             `gorm:"size:120;not null" json:"name"`
	Email              string             `gorm:"size:255;uniqueIndex" json:"email"`
	Department         string             `gorm:"size:120" json:"department,omitempty"`
	ResearchAreas      string             `gorm:"type:text" json:"research_areas,omitempty"`
	CurrentCapacity    int                `gorm:"not null;default:0" json:"current_capacity"`
	MaxCapacity        int                `gorm:"not null;default:0" json:"max_capacity"`
	AvailabilityStatus AvailabilityStatus `gorm:"type:varchar(20);not null;default:'available'" json:"availability_status"`
	Version            int64              `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Supervisor) TableName() string {
	return "supervisors"
}

// AtCapacity reports whether every capacity slot is taken.
func (s *Supervisor) AtCapacity() bool {
	return s.CurrentCapacity >= s.MaxCapacity
}

// AcceptingApplications reports whether new applications may be submitted.
func (s *Supervisor) AcceptingApplications() bool {
	return s.AvailabilityStatus != AvailabilityUnavailable && !s.AtCapacity()
}

// SupervisorCapacityView is a read-optimized projection of a supervisor's load.
// It is always rebuilt from Supervisor.CurrentCapacity.
type SupervisorCapacityView struct {
	SupervisorID          uint               `json:"supervisor_id"`
	Name                  string             `json:"name"`
	CurrentCapacity       int                `json:"current_capacity"`
	MaxCapacity           int                `json:"max_capacity"`
	RemainingSlots        int                `json:"remaining_slots"`
	AvailabilityStatus    AvailabilityStatus `json:"availability_status"`
	AcceptingApplications bool               `json:"accepting_applications"`
	BuiltAt               time.Time          `json:"built_at"`
}

// NewSupervisorCapacityView projects s into a capacity view.
func NewSupervisorCapacityView(s *Supervisor, now time.Time) SupervisorCapacityView {
	remaining := s.MaxCapacity - s.CurrentCapacity
	if remaining < 0 {
		remaining = 0
	}
	return SupervisorCapacityView{
		SupervisorID:          s.ID,
		Name:                  s.Name,
		CurrentCapacity:       s.CurrentCapacity,
		MaxCapacity:           s.MaxCapacity,
		RemainingSlots:        remaining,
		AvailabilityStatus:    s.AvailabilityStatus,
		AcceptingApplications: s.AcceptingApplications(),
		BuiltAt:               now,
	}
}
