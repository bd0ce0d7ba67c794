package service

import (
	"context"
	"log/slog"
	"time"

	"capstone/internal/cache"
	"capstone/internal/featureflags"
	"capstone/internal/models"
	"capstone/internal/observability"
	"capstone/internal/repository"
)

// CapacityInvalidator drops derived capacity views after a capacity write.
type CapacityInvalidator interface {
	Invalidate(ctx context.Context, supervisorIDs ...uint) error
}

// CapacityViewService serves SupervisorCapacityView projections. Views are
// always rebuilt from Supervisor.CurrentCapacity; Redis only holds copies.
type CapacityViewService struct {
	store *repository.Store
	cache *cache.CapacityCache
	flags *featureflags.Manager
	now   func() time.Time
}

// NewCapacityViewService returns a service reading through c. A nil cache or
// a capacity_view_cache=off flag serves every read from the store.
func NewCapacityViewService(store *repository.Store, c *cache.CapacityCache, flags *featureflags.Manager) *CapacityViewService {
	return &CapacityViewService{store: store, cache: c, flags: flags, now: defaultNow}
}

func (s *CapacityViewService) cacheEnabled() bool {
	return s.cache != nil && s.flags.EnabledOr(featureflags.CapacityViewCache, 0, true)
}

// Get returns the capacity view of one supervisor.
func (s *CapacityViewService) Get(ctx context.Context, supervisorID uint) (*models.SupervisorCapacityView, error) {
	if s.cacheEnabled() {
		view, ok, err := s.cache.Get(ctx, supervisorID)
		switch {
		case err != nil:
			observability.CapacityViewLookups.WithLabelValues("error").Inc()
			observability.GlobalLogger.WarnContext(ctx, "capacity cache read failed",
				slog.Uint64("supervisor_id", uint64(supervisorID)),
				slog.String("error", err.Error()),
			)
		case ok:
			observability.CapacityViewLookups.WithLabelValues("hit").Inc()
			return view, nil
		default:
			observability.CapacityViewLookups.WithLabelValues("miss").Inc()
		}
	} else {
		observability.CapacityViewLookups.WithLabelValues("bypass").Inc()
	}

	sup, err := s.store.GetSupervisor(ctx, supervisorID)
	if err != nil {
		return nil, err
	}
	view := models.NewSupervisorCapacityView(sup, s.now())

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, &view); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "capacity cache write failed",
				slog.Uint64("supervisor_id", uint64(supervisorID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return &view, nil
}

// List returns capacity views for supervisors, straight from the store.
func (s *CapacityViewService) List(ctx context.Context, page repository.Page) ([]models.SupervisorCapacityView, error) {
	sups, err := s.store.ListSupervisors(ctx, page)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]models.SupervisorCapacityView, 0, len(sups))
	for i := range sups {
		out = append(out, models.NewSupervisorCapacityView(&sups[i], now))
	}
	return out, nil
}

// Invalidate drops cached views. Failures are logged, not returned: the
// committed capacity change stands and the TTL bounds the staleness.
func (s *CapacityViewService) Invalidate(ctx context.Context, supervisorIDs ...uint) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, supervisorIDs...); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "capacity cache invalidation failed",
			slog.Any("supervisor_ids", supervisorIDs),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
