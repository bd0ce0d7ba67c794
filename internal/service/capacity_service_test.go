package service

import (
	"context"
	"testing"
	"time"

	"capstone/internal/cache"
	"capstone/internal/featureflags"
	"capstone/internal/models"
	"capstone/internal/repository"
	"capstone/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapacityViews(t *testing.T, f *fixture, flags string) (*CapacityViewService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := cache.NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	views := NewCapacityViewService(f.store, cache.NewCapacityCache(rdb, time.Minute), featureflags.NewManager(flags))
	views.now = func() time.Time { return fixedNow }
	return views, mr
}

func TestCapacityView_CacheAsideAndInvalidation(t *testing.T) {
	f := newFixture(t)
	views, mr := newCapacityViews(t, f, "")
	f.applications.capacity = views
	ctx := context.Background()

	a := testutil.CreateStudent(t, f.db, "Ada")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 1)

	view, err := views.Get(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.RemainingSlots)
	assert.True(t, view.AcceptingApplications)
	assert.True(t, mr.Exists(cache.SupervisorCapacityKey(sup.ID)))

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Compilers"))
	require.NoError(t, err)
	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), res.Application.ID, models.ApplicationStatusApproved, "")
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.SupervisorCapacityKey(sup.ID)), "capacity write must drop the cached view")

	view, err = views.Get(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentCapacity)
	assert.Equal(t, 0, view.RemainingSlots)
	assert.False(t, view.AcceptingApplications)
}

func TestCapacityView_HitServesCachedCopy(t *testing.T) {
	f := newFixture(t)
	views, _ := newCapacityViews(t, f, "capacity_view_cache=on")
	ctx := context.Background()
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 1, 3)

	_, err := views.Get(ctx, sup.ID)
	require.NoError(t, err)

	// A write that bypasses the engine is invisible until invalidation.
	require.NoError(t, f.db.Model(&models.Supervisor{}).Where("id = ?", sup.ID).Update("current_capacity", 2).Error)
	cached, err := views.Get(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.CurrentCapacity)

	require.NoError(t, views.Invalidate(ctx, sup.ID))
	fresh, err := views.Get(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.CurrentCapacity)
}

func TestCapacityView_FlagOffReadsStore(t *testing.T) {
	f := newFixture(t)
	views, mr := newCapacityViews(t, f, "capacity_view_cache=off")
	ctx := context.Background()
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 3)

	view, err := views.Get(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.RemainingSlots)
	assert.False(t, mr.Exists(cache.SupervisorCapacityKey(sup.ID)))

	_, err = views.Get(ctx, 9999)
	requireCode(t, err, models.CodeNotFound)
}

func TestCapacityView_RedisDownFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	views, mr := newCapacityViews(t, f, "")
	ctx := context.Background()
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 2, 3)

	mr.Close()

	view, err := views.Get(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.RemainingSlots)
	assert.NoError(t, views.Invalidate(ctx, sup.ID))
}

func TestCapacityView_List(t *testing.T) {
	f := newFixture(t)
	views := NewCapacityViewService(f.store, nil, nil)
	ctx := context.Background()
	testutil.CreateSupervisor(t, f.db, "Dr B", 3, 3)
	testutil.CreateSupervisor(t, f.db, "Dr A", 0, 2)

	list, err := views.List(ctx, repository.Page{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Dr A", list[0].Name)
	assert.True(t, list[0].AcceptingApplications)
	assert.False(t, list[1].AcceptingApplications)
}
