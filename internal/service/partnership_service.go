package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"capstone/internal/models"
	"capstone/internal/observability"
	"capstone/internal/repository"
)

const partnershipServiceName = "PartnershipService"

// PartnershipService owns the student pairing lifecycle. It is the only
// writer of Student.PartnerID, Student.PartnershipStatus and of
// PartnershipRequest records.
type PartnershipService struct {
	store *repository.Store
	now   func() time.Time
}

// NewPartnershipService returns a new PartnershipService.
func NewPartnershipService(store *repository.Store) *PartnershipService {
	return &PartnershipService{store: store, now: defaultNow}
}

// SendRequest creates a pending request from requesterID to targetID and
// moves the requester to pending_sent and the target to pending_received.
// A target may hold several incoming requests; a requester may have only one
// open request of any kind.
func (s *PartnershipService) SendRequest(ctx context.Context, requesterID, targetID uint, message string) (*models.PartnershipRequest, error) {
	if requesterID == targetID {
		return nil, models.NewValidationError("Cannot send a partnership request to yourself")
	}
	message = strings.TrimSpace(message)

	var created *models.PartnershipRequest
	err := runOp(ctx, s.store, partnershipServiceName, "SendRequest", map[string]interface{}{
		"requester_id": requesterID,
		"target_id":    targetID,
	}, func(tx *repository.Tx) error {
		requester, err := tx.Student(requesterID)
		if err != nil {
			return err
		}
		target, err := tx.Student(targetID)
		if models.IsCode(err, models.CodeNotFound) {
			return models.NewTargetUnavailableError()
		}
		if err != nil {
			return err
		}

		reverse, err := tx.PendingRequest(targetID, requesterID)
		if err != nil {
			return err
		}
		if reverse != nil {
			return models.NewReciprocalRequestExistsError(reverse.ID)
		}

		if requester.PartnershipStatus != models.PartnershipStatusNone {
			return models.NewAlreadyPartneredOrPendingError()
		}
		if target.PartnershipStatus != models.PartnershipStatusNone &&
			target.PartnershipStatus != models.PartnershipStatusPendingReceived {
			return models.NewTargetUnavailableError()
		}

		req := &models.PartnershipRequest{
			RequesterID: requesterID,
			TargetID:    targetID,
			Message:     message,
			Status:      models.PartnershipRequestStatusPending,
		}
		if err := tx.CreateRequest(req); err != nil {
			return err
		}

		requester.PartnershipStatus = models.PartnershipStatusPendingSent
		target.PartnershipStatus = models.PartnershipStatusPendingReceived
		if err := tx.SaveStudent(requester); err != nil {
			return err
		}
		if err := tx.SaveStudent(target); err != nil {
			return err
		}

		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordTransition("partnership_request", string(models.PartnershipRequestStatusPending))
	return created, nil
}

// Respond lets the target of a pending request accept or reject it.
//
// Accepting pairs the two students and cancels every other pending request
// that involves either of them, releasing the counterparties of those
// requests. Rejecting releases both parties.
func (s *PartnershipService) Respond(ctx context.Context, requestID, callerID uint, action models.RespondAction) (*models.PartnershipRequest, error) {
	if action != models.RespondActionAccept && action != models.RespondActionReject {
		return nil, models.NewValidationError("Action must be accept or reject")
	}

	var result *models.PartnershipRequest
	err := runOp(ctx, s.store, partnershipServiceName, "Respond", map[string]interface{}{
		"request_id": requestID,
		"caller_id":  callerID,
		"action":     string(action),
	}, func(tx *repository.Tx) error {
		req, err := s.actionableRequest(tx, requestID, func(r *models.PartnershipRequest) bool {
			return r.TargetID == callerID
		}, "Only the student a request was sent to can respond to it")
		if err != nil {
			return err
		}

		requester, err := tx.Student(req.RequesterID)
		if err != nil {
			return err
		}
		target, err := tx.Student(req.TargetID)
		if err != nil {
			return err
		}

		now := s.now()
		if action == models.RespondActionReject {
			req.Terminate(models.PartnershipRequestStatusRejected, now)
			if err := tx.SaveRequest(req); err != nil {
				return err
			}
			if err := s.release(tx, requester); err != nil {
				return err
			}
			if err := s.release(tx, target); err != nil {
				return err
			}
			result = req
			return nil
		}

		req.Terminate(models.PartnershipRequestStatusAccepted, now)
		if err := tx.SaveRequest(req); err != nil {
			return err
		}

		requester.PartnerID, requester.PartnershipStatus = &target.ID, models.PartnershipStatusPaired
		target.PartnerID, target.PartnershipStatus = &requester.ID, models.PartnershipStatusPaired
		if err := tx.SaveStudent(requester); err != nil {
			return err
		}
		if err := tx.SaveStudent(target); err != nil {
			return err
		}

		if err := s.cancelOrphans(tx, now, requester.ID, target.ID); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordTransition("partnership_request", string(result.Status))
	return result, nil
}

// Cancel lets the requester withdraw a pending request. Both parties are
// released.
func (s *PartnershipService) Cancel(ctx context.Context, requestID, callerID uint) (*models.PartnershipRequest, error) {
	var result *models.PartnershipRequest
	err := runOp(ctx, s.store, partnershipServiceName, "Cancel", map[string]interface{}{
		"request_id": requestID,
		"caller_id":  callerID,
	}, func(tx *repository.Tx) error {
		req, err := s.actionableRequest(tx, requestID, func(r *models.PartnershipRequest) bool {
			return r.RequesterID == callerID
		}, "Only the student who sent a request can cancel it")
		if err != nil {
			return err
		}

		req.Terminate(models.PartnershipRequestStatusCancelled, s.now())
		if err := tx.SaveRequest(req); err != nil {
			return err
		}
		for _, id := range []uint{req.RequesterID, req.TargetID} {
			st, err := tx.Student(id)
			if err != nil {
				return err
			}
			if err := s.release(tx, st); err != nil {
				return err
			}
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordTransition("partnership_request", string(models.PartnershipRequestStatusCancelled))
	return result, nil
}

// Unpair dissolves the student's partnership. Applications submitted while
// paired keep their partner snapshot and links.
func (s *PartnershipService) Unpair(ctx context.Context, studentID uint) error {
	err := runOp(ctx, s.store, partnershipServiceName, "Unpair", map[string]interface{}{
		"student_id": studentID,
	}, func(tx *repository.Tx) error {
		student, err := tx.Student(studentID)
		if err != nil {
			return err
		}
		if !student.IsPaired() {
			return models.NewNotPairedError()
		}

		partnerID := *student.PartnerID
		student.PartnerID, student.PartnershipStatus = nil, models.PartnershipStatusNone
		if err := tx.SaveStudent(student); err != nil {
			return err
		}

		partner, err := tx.Student(partnerID)
		if models.IsCode(err, models.CodeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if partner.PartnerID == nil || *partner.PartnerID != studentID {
			return nil
		}
		partner.PartnerID, partner.PartnershipStatus = nil, models.PartnershipStatusNone
		return tx.SaveStudent(partner)
	})
	if err != nil {
		return err
	}

	observability.RecordTransition("student", string(models.PartnershipStatusNone))
	return nil
}

// ListRequests returns the student's requests in the given direction,
// optionally narrowed to one status.
func (s *PartnershipService) ListRequests(ctx context.Context, studentID uint, direction models.RequestDirection, status models.PartnershipRequestStatus, page repository.Page) ([]models.PartnershipRequest, error) {
	if direction == "" {
		direction = models.RequestDirectionAll
	}
	if !direction.Valid() {
		return nil, models.NewValidationError("Direction must be incoming, outgoing or all")
	}
	return s.store.ListRequests(ctx, studentID, direction, status, page)
}

// ListAvailableStudents returns students who can receive a request from the
// caller, i.e. those with no partner and no open request.
func (s *PartnershipService) ListAvailableStudents(ctx context.Context, callerID uint, page repository.Page) ([]models.Student, error) {
	return s.store.ListAvailableStudents(ctx, callerID, page)
}

// PartnershipOverview is a student's view of their own pairing state.
type PartnershipOverview struct {
	StudentID        uint                        `json:"student_id"`
	Status           models.PartnershipStatus    `json:"partnership_status"`
	Partner          *models.StudentSummary      `json:"partner,omitempty"`
	OutgoingRequest  *models.PartnershipRequest  `json:"outgoing_request,omitempty"`
	IncomingRequests []models.PartnershipRequest `json:"incoming_requests"`
}

// GetPartnershipStatus returns the student's status, partner and live requests.
func (s *PartnershipService) GetPartnershipStatus(ctx context.Context, studentID uint) (*PartnershipOverview, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	out := &PartnershipOverview{
		StudentID:        student.ID,
		Status:           student.PartnershipStatus,
		IncomingRequests: []models.PartnershipRequest{},
	}

	if student.PartnerID != nil {
		partner, err := s.store.GetStudent(ctx, *student.PartnerID)
		switch {
		case err == nil:
			summary := partner.Summary()
			out.Partner = &summary
		case !models.IsCode(err, models.CodeNotFound):
			return nil, err
		}
	}

	pending, err := s.store.ListRequests(ctx, studentID, models.RequestDirectionAll, models.PartnershipRequestStatusPending, repository.Page{})
	if err != nil {
		return nil, err
	}
	for i := range pending {
		if pending[i].RequesterID == studentID {
			out.OutgoingRequest = &pending[i]
		} else {
			out.IncomingRequests = append(out.IncomingRequests, pending[i])
		}
	}
	return out, nil
}

// actionableRequest loads a pending request the caller is allowed to act on.
// Ownership is checked before status so a stranger learns nothing about the
// request's state.
func (s *PartnershipService) actionableRequest(tx *repository.Tx, requestID uint, owns func(*models.PartnershipRequest) bool, deny string) (*models.PartnershipRequest, error) {
	req, err := tx.Request(requestID)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, models.NewRequestNotActionableError()
	}
	if err != nil {
		return nil, err
	}
	if !owns(req) {
		return nil, models.NewUnauthorizedError(deny)
	}
	if !req.IsPending() {
		return nil, models.NewRequestNotActionableError()
	}
	return req, nil
}

// release recomputes an unpaired student's status from the pending requests
// that still involve them. It must run after the request that triggered it
// has been saved in its terminal state.
func (s *PartnershipService) release(tx *repository.Tx, student *models.Student) error {
	if student.IsPaired() {
		return nil
	}
	pending, err := tx.PendingRequestsInvolving(student.ID)
	if err != nil {
		return err
	}

	status := models.PartnershipStatusNone
	for _, r := range pending {
		if r.RequesterID == student.ID {
			status = models.PartnershipStatusPendingSent
			break
		}
		status = models.PartnershipStatusPendingReceived
	}

	student.PartnerID = nil
	student.PartnershipStatus = status
	return tx.SaveStudent(student)
}

// cancelOrphans cancels every pending request that involves one of the newly
// paired students and releases the other side of each.
func (s *PartnershipService) cancelOrphans(tx *repository.Tx, now time.Time, paired ...uint) error {
	isPaired := make(map[uint]bool, len(paired))
	for _, id := range paired {
		isPaired[id] = true
	}

	seen := map[uint]bool{}
	counterparties := map[uint]bool{}
	for _, id := range paired {
		pending, err := tx.PendingRequestsInvolving(id)
		if err != nil {
			return err
		}
		for i := range pending {
			r := &pending[i]
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true

			r.Terminate(models.PartnershipRequestStatusCancelled, now)
			if err := tx.SaveRequest(r); err != nil {
				return err
			}
			if other := r.Counterparty(id); !isPaired[other] {
				counterparties[other] = true
			}
		}
	}

	ids := make([]uint, 0, len(counterparties))
	for id := range counterparties {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		st, err := tx.Student(id)
		if models.IsCode(err, models.CodeNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.release(tx, st); err != nil {
			return err
		}
	}
	return nil
}
