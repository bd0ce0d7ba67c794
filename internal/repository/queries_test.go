package repository

import (
	"context"
	"testing"

	"capstone/internal/models"
	"capstone/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRequests_Directions(t *testing.T) {
	store, db := newTestStore(t, 3)
	ctx := context.Background()
	a := testutil.CreateStudent(t, db, "Ada")
	b := testutil.CreateStudent(t, db, "Bo")
	c := testutil.CreateStudent(t, db, "Cy")

	require.NoError(t, store.WithinTx(ctx, "seed", func(tx *Tx) error {
		if err := tx.CreateRequest(&models.PartnershipRequest{RequesterID: a.ID, TargetID: b.ID}); err != nil {
			return err
		}
		return tx.CreateRequest(&models.PartnershipRequest{RequesterID: c.ID, TargetID: a.ID})
	}))

	incoming, err := store.ListRequests(ctx, a.ID, models.RequestDirectionIncoming, "", Page{})
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, c.ID, incoming[0].RequesterID)
	require.NotNil(t, incoming[0].Requester)
	assert.Equal(t, "Cy", incoming[0].Requester.Name)

	outgoing, err := store.ListRequests(ctx, a.ID, models.RequestDirectionOutgoing, "", Page{})
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, b.ID, outgoing[0].TargetID)

	all, err := store.ListRequests(ctx, a.ID, models.RequestDirectionAll, models.PartnershipRequestStatusPending, Page{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted, err := store.ListRequests(ctx, a.ID, models.RequestDirectionAll, models.PartnershipRequestStatusAccepted, Page{})
	require.NoError(t, err)
	assert.Empty(t, accepted)

	limited, err := store.ListRequests(ctx, a.ID, models.RequestDirectionAll, "", Page{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestListAvailableStudents_ExcludesCallerAndBusyStudents(t *testing.T) {
	store, db := newTestStore(t, 3)
	ctx := context.Background()
	a := testutil.CreateStudent(t, db, "Ada")
	b := testutil.CreateStudent(t, db, "Bo")
	c := testutil.CreateStudent(t, db, "Cy")

	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", c.ID).
		Update("partnership_status", models.PartnershipStatusPendingReceived).Error)

	got, err := store.ListAvailableStudents(ctx, a.ID, Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestListApplications_Filters(t *testing.T) {
	store, db := newTestStore(t, 3)
	ctx := context.Background()
	a := testutil.CreateStudent(t, db, "Ada")
	b := testutil.CreateStudent(t, db, "Bo")
	s1 := testutil.CreateSupervisor(t, db, "Dr One", 0, 3)
	s2 := testutil.CreateSupervisor(t, db, "Dr Two", 0, 3)

	require.NoError(t, store.WithinTx(ctx, "seed", func(tx *Tx) error {
		for _, app := range []*models.Application{
			{StudentID: a.ID, SupervisorID: s1.ID, ProjectTitle: "Compilers", IsLeadApplication: true},
			{StudentID: a.ID, SupervisorID: s2.ID, ProjectTitle: "Graphs", IsLeadApplication: true, Status: models.ApplicationStatusRejected},
			{StudentID: b.ID, SupervisorID: s1.ID, ProjectTitle: "Robots", IsLeadApplication: true},
		} {
			if err := tx.CreateApplication(app); err != nil {
				return err
			}
		}
		return nil
	}))

	byStudent, err := store.ListApplications(ctx, ApplicationFilter{StudentID: a.ID}, Page{})
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	bySupervisor, err := store.ListApplications(ctx, ApplicationFilter{SupervisorID: s1.ID}, Page{})
	require.NoError(t, err)
	assert.Len(t, bySupervisor, 2)

	rejected, err := store.ListApplications(ctx, ApplicationFilter{StudentID: a.ID, Status: models.ApplicationStatusRejected}, Page{})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "Graphs", rejected[0].ProjectTitle)
}

func TestActiveApplicationAndApprovedUnits(t *testing.T) {
	store, db := newTestStore(t, 3)
	ctx := context.Background()
	a := testutil.CreateStudent(t, db, "Ada")
	b := testutil.CreateStudent(t, db, "Bo")
	sup := testutil.CreateSupervisor(t, db, "Dr One", 0, 3)

	require.NoError(t, store.WithinTx(ctx, "seed", func(tx *Tx) error {
		lead := &models.Application{StudentID: a.ID, SupervisorID: sup.ID, ProjectTitle: "Pair", Status: models.ApplicationStatusApproved, IsLeadApplication: true}
		if err := tx.CreateApplication(lead); err != nil {
			return err
		}
		follower := &models.Application{StudentID: b.ID, SupervisorID: sup.ID, ProjectTitle: "Pair", Status: models.ApplicationStatusApproved, LinkedApplicationID: &lead.ID}
		return tx.CreateApplication(follower)
	}))

	require.NoError(t, store.WithinTx(ctx, "check", func(tx *Tx) error {
		units, err := tx.ApprovedUnits(sup.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, units)

		active, err := tx.ActiveApplication(b.ID, sup.ID)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.False(t, active.IsLeadApplication)

		none, err := tx.ActiveApplication(b.ID, sup.ID+1)
		require.NoError(t, err)
		assert.Nil(t, none)
		return nil
	}))
}
