package models

import "time"

// ApplicationStatus defines review states for supervisor applications.
type ApplicationStatus string

const (
	ApplicationStatusPending           ApplicationStatus = "pending"
	ApplicationStatusApproved          ApplicationStatus = "approved"
	ApplicationStatusRejected          ApplicationStatus = "rejected"
	ApplicationStatusRevisionRequested ApplicationStatus = "revision_requested"
)

// IsDecision reports whether s is a status a supervisor may decide.
func (s ApplicationStatus) IsDecision() bool {
	switch s {
	case ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusRevisionRequested:
		return true
	}
	return false
}

// Application is a student's project application to a supervisor. When the
// student had a partner at submission time the two applications are linked
// and decided as one unit.
type Application struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	StudentID           uint              `gorm:"not null;index:idx_applications_student_supervisor" json:"student_id"`
	SupervisorID        uint              `gorm:"not null;index:idx_applications_student_supervisor;index" json:"supervisor_id"`
	ProjectTitle        string            `gorm:"size:200;not null" json:"project_title"`
	ProjectDescription  string            `gorm:"type:text" json:"project_description"`
	Status              ApplicationStatus `gorm:"type:varchar(24);not null;default:'pending';index" json:"status"`
	Feedback            string            `gorm:"type:text" json:"feedback,omitempty"`
	HasPartner          bool              `gorm:"not null" json:"has_partner"`
	PartnerID           *uint             `json:"partner_id,omitempty"`
	LinkedApplicationID *uint             `gorm:"index" json:"linked_application_id,omitempty"`
	IsLeadApplication   bool              `gorm:"not null" json:"is_lead_application"`
	DecidedAt           *time.Time        `json:"decided_at,omitempty"`
	Version             int64             `gorm:"not null;default:1" json:"version"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Application) TableName() string {
	return "applications"
}

// IsActive reports whether the application still occupies the student's slot
// with its supervisor.
func (a *Application) IsActive() bool {
	return a.Status != ApplicationStatusRejected
}

// IsLinked reports whether the application is half of a linked pair.
func (a *Application) IsLinked() bool {
	return a.LinkedApplicationID != nil
}

// ProjectDetails is the student-authored part of an application.
type ProjectDetails struct {
	Title       string `json:"project_title" validate:"required,min=3,max=200"`
	Description string `json:"project_description" validate:"max=5000"`
}
