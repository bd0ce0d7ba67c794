package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capstone/internal/models"
	"capstone/internal/observability"

	"gorm.io/gorm"
)

// Tx is one attempt of an optimistic transaction. Reads return the row as of
// this attempt; Save* methods write back only if the row's version is still
// the one read, and bump it.
type Tx struct {
	db      *gorm.DB
	ctx     context.Context
	attempt int
	log     *observability.RepoLogger
}

// Attempt returns the 1-based attempt number.
func (t *Tx) Attempt() int {
	return t.attempt
}

// Exec runs raw SQL inside the transaction.
func (t *Tx) Exec(sql string, values ...interface{}) error {
	return t.db.Exec(sql, values...).Error
}

func (t *Tx) first(dest interface{}, resource string, id uint) error {
	if err := t.db.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(resource, id)
		}
		return err
	}
	return nil
}

// Student loads a student or returns a NOT_FOUND AppError.
func (t *Tx) Student(id uint) (*models.Student, error) {
	var s models.Student
	if err := t.first(&s, "Student", id); err != nil {
		return nil, err
	}
	return &s, nil
}

// Supervisor loads a supervisor or returns a NOT_FOUND AppError.
func (t *Tx) Supervisor(id uint) (*models.Supervisor, error) {
	var s models.Supervisor
	if err := t.first(&s, "Supervisor", id); err != nil {
		return nil, err
	}
	return &s, nil
}

// Request loads a partnership request or returns a NOT_FOUND AppError.
func (t *Tx) Request(id uint) (*models.PartnershipRequest, error) {
	var r models.PartnershipRequest
	if err := t.first(&r, "PartnershipRequest", id); err != nil {
		return nil, err
	}
	return &r, nil
}

// Application loads an application or returns a NOT_FOUND AppError.
func (t *Tx) Application(id uint) (*models.Application, error) {
	var a models.Application
	if err := t.first(&a, "Application", id); err != nil {
		return nil, err
	}
	return &a, nil
}

// PendingRequest returns the pending request from requesterID to targetID, or nil.
func (t *Tx) PendingRequest(requesterID, targetID uint) (*models.PartnershipRequest, error) {
	var r models.PartnershipRequest
	err := t.db.
		Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, models.PartnershipRequestStatusPending).
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// PendingRequestsInvolving returns every pending request with studentID on either side.
func (t *Tx) PendingRequestsInvolving(studentID uint) ([]models.PartnershipRequest, error) {
	var out []models.PartnershipRequest
	err := t.db.
		Where("status = ? AND (requester_id = ? OR target_id = ?)", models.PartnershipRequestStatusPending, studentID, studentID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// ActiveApplication returns the student's non-rejected application to the
// supervisor, or nil.
func (t *Tx) ActiveApplication(studentID, supervisorID uint) (*models.Application, error) {
	var a models.Application
	err := t.db.
		Where("student_id = ? AND supervisor_id = ? AND status <> ?", studentID, supervisorID, models.ApplicationStatusRejected).
		Order("id DESC").
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ApprovedUnits counts the supervisor's approved capacity-consuming units.
// A linked pair is counted through its lead application only.
func (t *Tx) ApprovedUnits(supervisorID uint) (int, error) {
	var n int64
	err := t.db.Model(&models.Application{}).
		Where("supervisor_id = ? AND status = ? AND is_lead_application = ?", supervisorID, models.ApplicationStatusApproved, true).
		Count(&n).Error
	return int(n), err
}

// CreateRequest inserts a new pending request. A second pending request for
// the same unordered pair violates the pending_pair_key index and surfaces as
// a conflict.
func (t *Tx) CreateRequest(r *models.PartnershipRequest) error {
	r.Version = 1
	if r.Status == "" {
		r.Status = models.PartnershipRequestStatusPending
	}
	if r.IsPending() && r.PendingPairKey == nil {
		key := models.PairKey(r.RequesterID, r.TargetID)
		r.PendingPairKey = &key
	}
	if err := t.db.Create(r).Error; err != nil {
		return err
	}
	t.log.LogCreate(t.ctx, map[string]interface{}{"kind": "partnership_request", "id": r.ID})
	return nil
}

// CreateApplication inserts a new application.
func (t *Tx) CreateApplication(a *models.Application) error {
	a.Version = 1
	if a.Status == "" {
		a.Status = models.ApplicationStatusPending
	}
	if err := t.db.Create(a).Error; err != nil {
		return err
	}
	t.log.LogCreate(t.ctx, map[string]interface{}{"kind": "application", "id": a.ID})
	return nil
}

// SaveStudent writes the pairing fields of s. Saving an unchanged student
// still bumps its version, which serializes operations that only read it.
func (t *Tx) SaveStudent(s *models.Student) error {
	return t.compareAndSwap(models.Student{}.TableName(), s.ID, &s.Version, map[string]interface{}{
		"partner_id":         s.PartnerID,
		"partnership_status": s.PartnershipStatus,
	})
}

// SaveSupervisor writes the capacity counter of s.
func (t *Tx) SaveSupervisor(s *models.Supervisor) error {
	return t.compareAndSwap(models.Supervisor{}.TableName(), s.ID, &s.Version, map[string]interface{}{
		"current_capacity": s.CurrentCapacity,
	})
}

// SaveRequest writes the lifecycle fields of r.
func (t *Tx) SaveRequest(r *models.PartnershipRequest) error {
	return t.compareAndSwap(models.PartnershipRequest{}.TableName(), r.ID, &r.Version, map[string]interface{}{
		"status":           r.Status,
		"responded_at":     r.RespondedAt,
		"pending_pair_key": r.PendingPairKey,
	})
}

// SaveApplication writes the review and link fields of a.
func (t *Tx) SaveApplication(a *models.Application) error {
	return t.compareAndSwap(models.Application{}.TableName(), a.ID, &a.Version, map[string]interface{}{
		"project_title":         a.ProjectTitle,
		"project_description":   a.ProjectDescription,
		"status":                a.Status,
		"feedback":              a.Feedback,
		"linked_application_id": a.LinkedApplicationID,
		"is_lead_application":   a.IsLeadApplication,
		"decided_at":            a.DecidedAt,
	})
}

func (t *Tx) compareAndSwap(table string, id uint, version *int64, updates map[string]interface{}) error {
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = time.Now()

	res := t.db.Table(table).Where("id = ? AND version = ?", id, *version).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s id=%d version=%d", ErrConflict, table, id, *version)
	}
	*version++
	t.log.LogUpdate(t.ctx, map[string]interface{}{"kind": table, "id": id, "version": *version})
	return nil
}
