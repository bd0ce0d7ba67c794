package service

import (
	"context"
	"testing"
	"time"

	"capstone/internal/models"
	"capstone/internal/repository"
	"capstone/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db           *gorm.DB
	store        *repository.Store
	partnerships *PartnershipService
	applications *ApplicationService
	invalidated  *recordingInvalidator
}

type recordingInvalidator struct {
	ids []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...uint) error {
	r.ids = append(r.ids, ids...)
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := repository.NewStore(db, repository.WithMaxAttempts(5), repository.WithBackoff(0))

	inv := &recordingInvalidator{}
	ps := NewPartnershipService(store)
	ps.now = func() time.Time { return fixedNow }
	as := NewApplicationService(store, inv)
	as.now = func() time.Time { return fixedNow }

	return &fixture{db: db, store: store, partnerships: ps, applications: as, invalidated: inv}
}

// pair makes a and b partners through the public operations.
func (f *fixture) pair(t *testing.T, a, b *models.Student) {
	t.Helper()
	req, err := f.partnerships.SendRequest(context.Background(), a.ID, b.ID, "")
	require.NoError(t, err)
	_, err = f.partnerships.Respond(context.Background(), req.ID, b.ID, models.RespondActionAccept)
	require.NoError(t, err)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, models.IsCode(err, code), "want %s, got %v", code, err)
}
