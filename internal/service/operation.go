// Package service holds the partnership state machine and the application
// linking engine. Every public operation runs as one optimistic transaction
// through repository.Store; callers pass their identity explicitly.
package service

import (
	"context"
	"errors"
	"time"

	"capstone/internal/models"
	"capstone/internal/observability"
	"capstone/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ActorKind distinguishes who is calling an operation.
type ActorKind string

const (
	ActorStudent    ActorKind = "student"
	ActorSupervisor ActorKind = "supervisor"
	ActorAdmin      ActorKind = "admin"
)

// Actor is the authenticated caller. ID is a student id or a supervisor id
// depending on Kind; it is zero for admins.
type Actor struct {
	Kind ActorKind
	ID   uint
}

// StudentActor returns an actor for the student with id.
func StudentActor(id uint) Actor { return Actor{Kind: ActorStudent, ID: id} }

// SupervisorActor returns an actor for the supervisor with id.
func SupervisorActor(id uint) Actor { return Actor{Kind: ActorSupervisor, ID: id} }

// AdminActor returns an actor with administrative rights.
func AdminActor() Actor { return Actor{Kind: ActorAdmin} }

var structured = observability.NewStructuredLogger()

// expectedFailure reports whether err is a refusal the caller caused, as
// opposed to an infrastructure failure or contention.
func expectedFailure(err error) bool {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code != models.CodeInternal && appErr.Code != models.CodeContention
}

// runOp traces, logs and runs fn as one optimistic transaction.
func runOp(ctx context.Context, store *repository.Store, svc, method string, fields map[string]interface{}, fn func(tx *repository.Tx) error) error {
	ctx = observability.EnsureCorrelationID(ctx)
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, svc, method)
	defer span.End()
	for k, v := range fields {
		if id, ok := v.(uint); ok {
			span.SetAttributes(attribute.Int64(k, int64(id)))
		}
	}

	structured.LogServiceCall(ctx, svc, method, fields)
	err := store.WithinTx(ctx, svc+"."+method, fn)
	if err != nil {
		structured.LogServiceError(ctx, svc, method, err, expectedFailure(err))
		if !expectedFailure(err) {
			observability.RecordErrorInContext(ctx, err)
		}
	}
	return err
}

func defaultNow() time.Time {
	return time.Now().UTC()
}
