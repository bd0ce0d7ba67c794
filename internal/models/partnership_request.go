package models

import (
	"fmt"
	"time"
)

// PartnershipRequestStatus defines lifecycle states for partnership requests.
type PartnershipRequestStatus string

const (
	// PartnershipRequestStatusPending indicates the request awaits the target's answer.
	PartnershipRequestStatusPending PartnershipRequestStatus = "pending"
	// PartnershipRequestStatusAccepted indicates the target accepted.
	PartnershipRequestStatusAccepted PartnershipRequestStatus = "accepted"
	// PartnershipRequestStatusRejected indicates the target declined.
	PartnershipRequestStatusRejected PartnershipRequestStatus = "rejected"
	// PartnershipRequestStatusCancelled indicates the requester withdrew, or the
	// request was closed because one party paired with someone else.
	PartnershipRequestStatusCancelled PartnershipRequestStatus = "cancelled"
)

// PartnershipRequest is one student's request to pair with another. It is
// terminated exactly once and never reopened.
type PartnershipRequest struct {
	ID          uint                     `gorm:"primaryKey" json:"id"`
	RequesterID uint                     `gorm:"not null;index" json:"requester_id"`
	TargetID    uint                     `gorm:"not null;index" json:"target_id"`
	Message     string                   `gorm:"type:text" json:"message,omitempty"`
	Status      PartnershipRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	// PendingPairKey is set only while pending; its unique index rejects a
	// second pending request for the same unordered pair.
	PendingPairKey *string    `gorm:"size:64;uniqueIndex" json:"-"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	Version        int64      `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Requester *Student `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Target    *Student `gorm:"foreignKey:TargetID" json:"target,omitempty"`
}

// TableName specifies the table name for GORM
func (PartnershipRequest) TableName() string {
	return "partnership_requests"
}

// PairKey returns the order-independent key for a pair of students.
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// IsPending reports whether the request can still be answered.
func (r *PartnershipRequest) IsPending() bool {
	return r.Status == PartnershipRequestStatusPending
}

// Involves reports whether the student is either party to the request.
func (r *PartnershipRequest) Involves(studentID uint) bool {
	return r.RequesterID == studentID || r.TargetID == studentID
}

// Counterparty returns the other party to the request.
func (r *PartnershipRequest) Counterparty(studentID uint) uint {
	if r.RequesterID == studentID {
		return r.TargetID
	}
	return r.RequesterID
}

// Terminate closes a pending request with the given outcome.
func (r *PartnershipRequest) Terminate(status PartnershipRequestStatus, at time.Time) {
	r.Status = status
	r.RespondedAt = &at
	r.PendingPairKey = nil
}

// RequestDirection selects which side of a student's requests to list.
type RequestDirection string

const (
	RequestDirectionIncoming RequestDirection = "incoming"
	RequestDirectionOutgoing RequestDirection = "outgoing"
	RequestDirectionAll      RequestDirection = "all"
)

// Valid reports whether d is a known direction.
func (d RequestDirection) Valid() bool {
	switch d {
	case RequestDirectionIncoming, RequestDirectionOutgoing, RequestDirectionAll:
		return true
	}
	return false
}

// RespondAction is the target's answer to a partnership request.
type RespondAction string

const (
	RespondActionAccept RespondAction = "accept"
	RespondActionReject RespondAction = "reject"
)
