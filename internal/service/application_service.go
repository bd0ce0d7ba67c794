package service

import (
	"context"
	"strings"
	"time"

	"capstone/internal/models"
	"capstone/internal/observability"
	"capstone/internal/repository"
)

const applicationServiceName = "ApplicationService"

// ApplicationService submits and decides supervisor applications. It keeps
// linked pairs in the same status and is the only writer of
// Supervisor.CurrentCapacity.
type ApplicationService struct {
	store    *repository.Store
	capacity CapacityInvalidator
	now      func() time.Time
}

// NewApplicationService returns a new ApplicationService. capacity may be nil.
func NewApplicationService(store *repository.Store, capacity CapacityInvalidator) *ApplicationService {
	return &ApplicationService{store: store, capacity: capacity, now: defaultNow}
}

// SubmitResult lists the applications a submission created or linked.
// Application is the caller's; Linked is the partner's, when there is one.
type SubmitResult struct {
	Application *models.Application `json:"application"`
	Linked      *models.Application `json:"linked_application,omitempty"`
}

// IDs returns the ids of every application in the result.
func (r *SubmitResult) IDs() []uint {
	ids := []uint{r.Application.ID}
	if r.Linked != nil {
		ids = append(ids, r.Linked.ID)
	}
	return ids
}

func cleanDetails(d models.ProjectDetails) (models.ProjectDetails, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" {
		return d, models.NewValidationError("Project title is required")
	}
	return d, nil
}

// Submit files an application from studentID to supervisorID.
//
// A paired student's partner is read once, inside the transaction, and
// stored on the application as a snapshot. If the partner has no active
// application to the supervisor, one is created for them and linked, with
// the caller's as lead. If the partner already applied and that application
// is unlinked, the caller's application attaches to it and the partner's
// becomes the lead.
func (s *ApplicationService) Submit(ctx context.Context, studentID, supervisorID uint, details models.ProjectDetails) (*SubmitResult, error) {
	details, err := cleanDetails(details)
	if err != nil {
		return nil, err
	}

	var result *SubmitResult
	err = runOp(ctx, s.store, applicationServiceName, "Submit", map[string]interface{}{
		"student_id":    studentID,
		"supervisor_id": supervisorID,
	}, func(tx *repository.Tx) error {
		student, err := tx.Student(studentID)
		if err != nil {
			return err
		}
		sup, err := tx.Supervisor(supervisorID)
		if err != nil {
			return err
		}
		if !sup.AcceptingApplications() {
			return models.NewSupervisorUnavailableError()
		}

		existing, err := tx.ActiveApplication(studentID, supervisorID)
		if err != nil {
			return err
		}
		if existing != nil {
			if !filedByPartner(student, existing) {
				return models.NewDuplicateApplicationError()
			}
			// The partner already submitted for both of us; report that pair.
			linked, err := linkedOf(tx, existing)
			if err != nil {
				return err
			}
			result = &SubmitResult{Application: existing, Linked: linked}
			return nil
		}

		// Touch the student so a concurrent pair or unpair forces a retry and
		// the snapshot below is never stale at commit.
		if err := tx.SaveStudent(student); err != nil {
			return err
		}

		mine := &models.Application{
			StudentID:          studentID,
			SupervisorID:       supervisorID,
			ProjectTitle:       details.Title,
			ProjectDescription: details.Description,
			IsLeadApplication:  true,
		}

		if !student.IsPaired() {
			if err := tx.CreateApplication(mine); err != nil {
				return err
			}
			result = &SubmitResult{Application: mine}
			return nil
		}

		partner, err := tx.Student(*student.PartnerID)
		if err != nil {
			return err
		}
		if err := tx.SaveStudent(partner); err != nil {
			return err
		}
		mine.HasPartner = true
		mine.PartnerID = &partner.ID

		theirs, err := tx.ActiveApplication(partner.ID, supervisorID)
		if err != nil {
			return err
		}

		switch {
		case theirs == nil:
			result, err = s.createPair(tx, mine, partner.ID)
		case !theirs.IsLinked():
			result, err = s.attach(tx, mine, theirs)
		default:
			// The partner's application is already paired with someone else's.
			err = tx.CreateApplication(mine)
			result = &SubmitResult{Application: mine}
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.RecordTransition("application", string(result.Application.Status))
	return result, nil
}

// filedByPartner reports whether app is the follower half of a pair the
// student's current partner submitted.
func filedByPartner(student *models.Student, app *models.Application) bool {
	return student.IsPaired() &&
		app.IsLinked() &&
		!app.IsLeadApplication &&
		app.PartnerID != nil &&
		*app.PartnerID == *student.PartnerID
}

// createPair creates lead for the caller and a linked application for the
// partner.
func (s *ApplicationService) createPair(tx *repository.Tx, lead *models.Application, partnerID uint) (*SubmitResult, error) {
	if err := tx.CreateApplication(lead); err != nil {
		return nil, err
	}
	follower := &models.Application{
		StudentID:           partnerID,
		SupervisorID:        lead.SupervisorID,
		ProjectTitle:        lead.ProjectTitle,
		ProjectDescription:  lead.ProjectDescription,
		HasPartner:          true,
		PartnerID:           &lead.StudentID,
		LinkedApplicationID: &lead.ID,
		IsLeadApplication:   false,
	}
	if err := tx.CreateApplication(follower); err != nil {
		return nil, err
	}
	lead.LinkedApplicationID = &follower.ID
	if err := tx.SaveApplication(lead); err != nil {
		return nil, err
	}
	return &SubmitResult{Application: lead, Linked: follower}, nil
}

// attach links mine to the partner's earlier application, which becomes the
// lead. mine inherits the pair's current decision.
func (s *ApplicationService) attach(tx *repository.Tx, mine, theirs *models.Application) (*SubmitResult, error) {
	mine.IsLeadApplication = false
	mine.LinkedApplicationID = &theirs.ID
	mine.Status = theirs.Status
	mine.Feedback = theirs.Feedback
	mine.DecidedAt = theirs.DecidedAt
	if err := tx.CreateApplication(mine); err != nil {
		return nil, err
	}

	theirs.LinkedApplicationID = &mine.ID
	theirs.IsLeadApplication = true
	if err := tx.SaveApplication(theirs); err != nil {
		return nil, err
	}
	return &SubmitResult{Application: mine, Linked: theirs}, nil
}

// loadApplication loads an application, mapping a missing row to
// APPLICATION_NOT_FOUND.
func loadApplication(tx *repository.Tx, id uint) (*models.Application, error) {
	app, err := tx.Application(id)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, models.NewApplicationNotFoundError(id)
	}
	return app, err
}

// linkedOf returns app's linked application, or nil if it has none or the
// link points at a row that no longer exists.
func linkedOf(tx *repository.Tx, app *models.Application) (*models.Application, error) {
	if !app.IsLinked() {
		return nil, nil
	}
	linked, err := tx.Application(*app.LinkedApplicationID)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, nil
	}
	return linked, err
}

func checkTransition(from, to models.ApplicationStatus) error {
	if !to.IsDecision() {
		if to == models.ApplicationStatusPending {
			return models.NewInvalidTransitionError(from, to)
		}
		return models.NewValidationError("Status must be approved, rejected or revision_requested")
	}
	if from == models.ApplicationStatusRevisionRequested {
		return models.NewInvalidTransitionError(from, to)
	}
	return nil
}

// Decide records a supervisor's decision on an application and its linked
// partner application. Moving a unit into approved takes one capacity slot
// and moving it out gives one back; a linked pair is one unit.
func (s *ApplicationService) Decide(ctx context.Context, actor Actor, applicationID uint, status models.ApplicationStatus, feedback string) (*models.Application, error) {
	if actor.Kind == ActorStudent {
		return nil, models.NewUnauthorizedError("Only supervisors can decide applications")
	}
	feedback = strings.TrimSpace(feedback)

	var (
		decided       *models.Application
		capacityMoved bool
	)
	err := runOp(ctx, s.store, applicationServiceName, "Decide", map[string]interface{}{
		"application_id": applicationID,
		"status":         string(status),
	}, func(tx *repository.Tx) error {
		capacityMoved = false

		app, err := loadApplication(tx, applicationID)
		if err != nil {
			return err
		}
		if actor.Kind != ActorAdmin && app.SupervisorID != actor.ID {
			return models.NewUnauthorizedError("Application is addressed to another supervisor")
		}
		if app.Status == status {
			decided = app
			return nil
		}
		if err := checkTransition(app.Status, status); err != nil {
			return err
		}

		linked, err := linkedOf(tx, app)
		if err != nil {
			return err
		}

		wasApproved := app.Status == models.ApplicationStatusApproved
		now := s.now()
		for _, a := range []*models.Application{app, linked} {
			if a == nil {
				continue
			}
			a.Status = status
			a.Feedback = feedback
			a.DecidedAt = &now
			if err := tx.SaveApplication(a); err != nil {
				return err
			}
		}

		delta := 0
		switch {
		case !wasApproved && status == models.ApplicationStatusApproved:
			delta = 1
		case wasApproved && status != models.ApplicationStatusApproved:
			delta = -1
		}
		if delta != 0 {
			sup, err := tx.Supervisor(app.SupervisorID)
			if err != nil {
				return err
			}
			sup.CurrentCapacity += delta
			if sup.CurrentCapacity < 0 {
				sup.CurrentCapacity = 0
			}
			if err := tx.SaveSupervisor(sup); err != nil {
				return err
			}
			capacityMoved = true
		}

		decided = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	if capacityMoved && s.capacity != nil {
		_ = s.capacity.Invalidate(ctx, decided.SupervisorID)
	}
	observability.RecordTransition("application", string(decided.Status))
	return decided, nil
}

// Resubmit moves an application the supervisor sent back for revision, and
// its linked partner application, to pending with new project details.
func (s *ApplicationService) Resubmit(ctx context.Context, applicationID, studentID uint, details models.ProjectDetails) (*models.Application, error) {
	details, err := cleanDetails(details)
	if err != nil {
		return nil, err
	}

	var out *models.Application
	err = runOp(ctx, s.store, applicationServiceName, "Resubmit", map[string]interface{}{
		"application_id": applicationID,
		"student_id":     studentID,
	}, func(tx *repository.Tx) error {
		app, err := loadApplication(tx, applicationID)
		if err != nil {
			return err
		}
		if app.StudentID != studentID {
			return models.NewUnauthorizedError("Only the applicant can resubmit an application")
		}
		if app.Status != models.ApplicationStatusRevisionRequested {
			return models.NewInvalidTransitionError(app.Status, models.ApplicationStatusPending)
		}

		linked, err := linkedOf(tx, app)
		if err != nil {
			return err
		}
		for _, a := range []*models.Application{app, linked} {
			if a == nil {
				continue
			}
			a.Status = models.ApplicationStatusPending
			a.ProjectTitle = details.Title
			a.ProjectDescription = details.Description
			a.DecidedAt = nil
			if err := tx.SaveApplication(a); err != nil {
				return err
			}
		}
		out = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordTransition("application", string(models.ApplicationStatusPending))
	return out, nil
}

// List returns applications visible to the actor. Students see their own,
// supervisors those addressed to them, admins whatever f selects.
func (s *ApplicationService) List(ctx context.Context, actor Actor, f repository.ApplicationFilter, page repository.Page) ([]models.Application, error) {
	switch actor.Kind {
	case ActorStudent:
		f.StudentID = actor.ID
	case ActorSupervisor:
		f.SupervisorID = actor.ID
	}
	return s.store.ListApplications(ctx, f, page)
}

// Get returns one application to a party of it.
func (s *ApplicationService) Get(ctx context.Context, actor Actor, id uint) (*models.Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, models.NewApplicationNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}

	switch actor.Kind {
	case ActorAdmin:
		return app, nil
	case ActorSupervisor:
		if app.SupervisorID == actor.ID {
			return app, nil
		}
	case ActorStudent:
		if app.StudentID == actor.ID || (app.PartnerID != nil && *app.PartnerID == actor.ID) {
			return app, nil
		}
	}
	return nil, models.NewUnauthorizedError("You are not a party to this application")
}

// ReconcileResult reports a capacity repair.
type ReconcileResult struct {
	SupervisorID uint `json:"supervisor_id"`
	Before       int  `json:"before"`
	After        int  `json:"after"`
}

// Changed reports whether the stored counter was wrong.
func (r *ReconcileResult) Changed() bool {
	return r.Before != r.After
}

// ReconcileCapacity recomputes the supervisor's capacity counter from the
// approved units on record and rewrites it if it drifted.
func (s *ApplicationService) ReconcileCapacity(ctx context.Context, supervisorID uint) (*ReconcileResult, error) {
	var result *ReconcileResult
	err := runOp(ctx, s.store, applicationServiceName, "ReconcileCapacity", map[string]interface{}{
		"supervisor_id": supervisorID,
	}, func(tx *repository.Tx) error {
		sup, err := tx.Supervisor(supervisorID)
		if err != nil {
			return err
		}
		units, err := tx.ApprovedUnits(supervisorID)
		if err != nil {
			return err
		}

		result = &ReconcileResult{SupervisorID: supervisorID, Before: sup.CurrentCapacity, After: units}
		if !result.Changed() {
			return nil
		}
		sup.CurrentCapacity = units
		return tx.SaveSupervisor(sup)
	})
	if err != nil {
		return nil, err
	}

	if result.Changed() && s.capacity != nil {
		_ = s.capacity.Invalidate(ctx, supervisorID)
	}
	return result, nil
}
