package repository

import (
	"context"
	"errors"

	"capstone/internal/models"

	"gorm.io/gorm"
)

func (s *Store) read(ctx context.Context) *gorm.DB {
	return readDB(s.db).WithContext(ctx)
}

func (s *Store) getByID(ctx context.Context, dest interface{}, resource string, id uint) error {
	if err := s.read(ctx).First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(resource, id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetStudent loads a student outside any transaction.
func (s *Store) GetStudent(ctx context.Context, id uint) (*models.Student, error) {
	var st models.Student
	if err := s.getByID(ctx, &st, "Student", id); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetSupervisor loads a supervisor outside any transaction.
func (s *Store) GetSupervisor(ctx context.Context, id uint) (*models.Supervisor, error) {
	var sup models.Supervisor
	if err := s.getByID(ctx, &sup, "Supervisor", id); err != nil {
		return nil, err
	}
	return &sup, nil
}

// GetApplication loads an application outside any transaction.
func (s *Store) GetApplication(ctx context.Context, id uint) (*models.Application, error) {
	var a models.Application
	if err := s.getByID(ctx, &a, "Application", id); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListRequests returns the student's requests, newest first. Incoming means
// the student is the target; outgoing means the requester.
func (s *Store) ListRequests(ctx context.Context, studentID uint, direction models.RequestDirection, status models.PartnershipRequestStatus, page Page) ([]models.PartnershipRequest, error) {
	q := s.read(ctx).Model(&models.PartnershipRequest{})
	switch direction {
	case models.RequestDirectionIncoming:
		q = q.Where("target_id = ?", studentID)
	case models.RequestDirectionOutgoing:
		q = q.Where("requester_id = ?", studentID)
	default:
		q = q.Where("(requester_id = ? OR target_id = ?)", studentID, studentID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var out []models.PartnershipRequest
	if err := page.apply(q.Preload("Requester").Preload("Target").Order("created_at DESC, id DESC")).Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// ListAvailableStudents returns students with no partner and no open request,
// excluding the caller.
func (s *Store) ListAvailableStudents(ctx context.Context, excludeID uint, page Page) ([]models.Student, error) {
	var out []models.Student
	q := s.read(ctx).
		Where("partnership_status = ? AND id <> ?", models.PartnershipStatusNone, excludeID).
		Order("name ASC, id ASC")
	if err := page.apply(q).Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// ApplicationFilter narrows ListApplications. Zero fields are ignored.
type ApplicationFilter struct {
	StudentID    uint
	SupervisorID uint
	Status       models.ApplicationStatus
}

// ListApplications returns applications matching f, newest first.
func (s *Store) ListApplications(ctx context.Context, f ApplicationFilter, page Page) ([]models.Application, error) {
	q := s.read(ctx).Model(&models.Application{})
	if f.StudentID != 0 {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.SupervisorID != 0 {
		q = q.Where("supervisor_id = ?", f.SupervisorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var out []models.Application
	if err := page.apply(q.Order("created_at DESC, id DESC")).Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

// ListSupervisors returns supervisors ordered by name.
func (s *Store) ListSupervisors(ctx context.Context, page Page) ([]models.Supervisor, error) {
	var out []models.Supervisor
	if err := page.apply(s.read(ctx).Order("name ASC, id ASC")).Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}
