package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"capstone/internal/models"
	"capstone/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// ErrConflict marks a compare-and-swap write that matched no row because the
// record changed after it was read.
var ErrConflict = errors.New("optimistic concurrency conflict")

// Postgres SQLSTATEs that mean "retry the whole transaction".
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const (
	defaultMaxAttempts = 5
	defaultBackoff     = 20 * time.Millisecond
)

// Store runs multi-record operations as optimistic transactions.
type Store struct {
	db          *gorm.DB
	maxAttempts int
	backoff     time.Duration
	log         *observability.RepoLogger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxAttempts caps how many times WithinTx runs fn before giving up.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between attempts; attempt n waits n*d.
func WithBackoff(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.backoff = d
		}
	}
}

// NewStore creates a Store over the primary connection.
func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:          db,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		log:         observability.NewRepoLogger("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithinTx runs fn in a database transaction. Every write fn makes through
// the Tx is conditional on the version it read; if any write loses a race the
// transaction is rolled back and fn runs again from the start. fn must
// therefore do all of its reads through tx and have no side effects outside
// it. Domain errors returned by fn roll back and are returned unchanged; after
// maxAttempts conflicts the result is a CONTENTION error.
func (s *Store) WithinTx(ctx context.Context, op string, fn func(tx *Tx) error) error {
	ctx = observability.EnsureCorrelationID(ctx)
	ctx, span := observability.GetTraceLayer().TraceTransaction(ctx, op, s.db.Dialector.Name())
	defer span.End()

	start := time.Now()
	defer observability.ObserveQuery(op, "tx", start)

	var lastConflict error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := s.wait(ctx, attempt); err != nil {
				observability.TxOutcomes.WithLabelValues(op, "failed").Inc()
				return models.NewInternalError(err)
			}
		}

		observability.TxAttempts.WithLabelValues(op).Inc()
		err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
			return fn(&Tx{db: gtx, ctx: ctx, attempt: attempt, log: s.log})
		})
		if err == nil {
			span.SetAttributes(attribute.Int("tx.attempts", attempt))
			observability.TxOutcomes.WithLabelValues(op, "committed").Inc()
			return nil
		}

		if IsConflict(err) {
			lastConflict = err
			observability.TxConflicts.WithLabelValues(op).Inc()
			s.log.LogConflict(ctx, map[string]interface{}{
				"op":      op,
				"attempt": attempt,
				"error":   err.Error(),
			})
			continue
		}

		observability.TxOutcomes.WithLabelValues(op, "failed").Inc()
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		s.log.LogError(ctx, err, op)
		observability.RecordErrorInContext(ctx, err)
		return models.NewInternalError(err)
	}

	observability.TxOutcomes.WithLabelValues(op, "exhausted").Inc()
	observability.GlobalLogger.WarnContext(ctx, "optimistic transaction exhausted retries",
		slog.String("op", op),
		slog.Int("attempts", s.maxAttempts),
	)
	err := models.NewContentionError(fmt.Errorf("%s: %d attempts: %w", op, s.maxAttempts, lastConflict))
	observability.RecordErrorInContext(ctx, err)
	return err
}

func (s *Store) wait(ctx context.Context, attempt int) error {
	if s.backoff == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(attempt-1) * s.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsConflict reports whether err means a concurrent writer won and the
// transaction should be retried from its reads.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	// SQLITE_BUSY surfaces only as text through the driver.
	return strings.Contains(err.Error(), "database is locked")
}
