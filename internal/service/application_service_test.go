package service

import (
	"context"
	"testing"

	"capstone/internal/models"
	"capstone/internal/repository"
	"capstone/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func details(title string) models.ProjectDetails {
	return models.ProjectDetails{Title: title, Description: "A study of " + title}
}

func assertLinkedPair(t *testing.T, f *fixture, x, y uint) (lead, follower *models.Application) {
	t.Helper()
	ax := testutil.ReloadApplication(t, f.db, x)
	ay := testutil.ReloadApplication(t, f.db, y)
	require.NotNil(t, ax.LinkedApplicationID)
	require.NotNil(t, ay.LinkedApplicationID)
	assert.Equal(t, y, *ax.LinkedApplicationID)
	assert.Equal(t, x, *ay.LinkedApplicationID)
	require.NotEqual(t, ax.IsLeadApplication, ay.IsLeadApplication, "exactly one application leads")
	assert.Equal(t, ax.Status, ay.Status)
	assert.Equal(t, ax.Feedback, ay.Feedback)
	if ax.IsLeadApplication {
		return ax, ay
	}
	return ay, ax
}

func TestSubmit_UnpairedStudentGetsSingleLeadApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 2)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("  Compilers "))
	require.NoError(t, err)
	require.Nil(t, res.Linked)
	assert.Equal(t, []uint{res.Application.ID}, res.IDs())

	app := testutil.ReloadApplication(t, f.db, res.Application.ID)
	assert.Equal(t, "Compilers", app.ProjectTitle)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.False(t, app.HasPartner)
	assert.Nil(t, app.PartnerID)
	assert.Nil(t, app.LinkedApplicationID)
	assert.True(t, app.IsLeadApplication)

	_, err = f.applications.Submit(ctx, a.ID, sup.ID, details("Again"))
	requireCode(t, err, models.CodeDuplicateApplication)

	_, err = f.applications.Submit(ctx, a.ID, sup.ID, models.ProjectDetails{Title: "   "})
	requireCode(t, err, models.CodeValidation)
}

func TestSubmit_RefusedByUnavailableSupervisor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	full := testutil.CreateSupervisor(t, f.db, "Dr Full", 3, 3)
	away := testutil.CreateSupervisor(t, f.db, "Dr Away", 0, 3)
	require.NoError(t, f.db.Model(away).Update("availability_status", models.AvailabilityUnavailable).Error)

	_, err := f.applications.Submit(ctx, a.ID, full.ID, details("Compilers"))
	requireCode(t, err, models.CodeSupervisorUnavailable)

	_, err = f.applications.Submit(ctx, a.ID, away.ID, details("Compilers"))
	requireCode(t, err, models.CodeSupervisorUnavailable)

	_, err = f.applications.Submit(ctx, a.ID, 9999, details("Compilers"))
	requireCode(t, err, models.CodeNotFound)
}

func TestLinkedPair_ApprovalCountsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	b := testutil.CreateStudent(t, f.db, "Bo")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)
	f.pair(t, a, b)

	first, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Robotics"))
	require.NoError(t, err)
	require.NotNil(t, first.Linked)

	second, err := f.applications.Submit(ctx, b.ID, sup.ID, details("Robotics"))
	require.NoError(t, err)
	assert.ElementsMatch(t, first.IDs(), second.IDs())

	var count int64
	require.NoError(t, f.db.Model(&models.Application{}).Where("supervisor_id = ?", sup.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	lead, follower := assertLinkedPair(t, f, first.Application.ID, first.Linked.ID)
	assert.Equal(t, a.ID, lead.StudentID, "first submitter leads")
	assert.True(t, follower.HasPartner)
	require.NotNil(t, follower.PartnerID)
	assert.Equal(t, a.ID, *follower.PartnerID)

	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), lead.ID, models.ApplicationStatusApproved, "Welcome aboard")
	require.NoError(t, err)

	lead, follower = assertLinkedPair(t, f, lead.ID, follower.ID)
	assert.Equal(t, models.ApplicationStatusApproved, follower.Status)
	assert.Equal(t, "Welcome aboard", follower.Feedback)
	require.NotNil(t, follower.DecidedAt)
	assert.Equal(t, 1, testutil.ReloadSupervisor(t, f.db, sup.ID).CurrentCapacity)
	assert.Equal(t, []uint{sup.ID}, f.invalidated.ids)
}

func TestDecide_CorrectionsDoNotDoubleCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	b := testutil.CreateStudent(t, f.db, "Bo")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)
	f.pair(t, a, b)
	actor := SupervisorActor(sup.ID)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Robotics"))
	require.NoError(t, err)

	steps := []struct {
		appID    uint
		status   models.ApplicationStatus
		capacity int
	}{
		{res.Application.ID, models.ApplicationStatusApproved, 1},
		{res.Linked.ID, models.ApplicationStatusApproved, 1},
		{res.Linked.ID, models.ApplicationStatusRejected, 0},
		{res.Application.ID, models.ApplicationStatusApproved, 1},
		{res.Application.ID, models.ApplicationStatusRevisionRequested, 0},
	}
	for _, step := range steps {
		_, err := f.applications.Decide(ctx, actor, step.appID, step.status, "")
		require.NoError(t, err, "decide %d -> %s", step.appID, step.status)
		assert.Equal(t, step.capacity, testutil.ReloadSupervisor(t, f.db, sup.ID).CurrentCapacity, "after %s", step.status)
		assertLinkedPair(t, f, res.Application.ID, res.Linked.ID)
	}
}

func TestDecide_SameStatusIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Graphs"))
	require.NoError(t, err)
	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), res.Application.ID, models.ApplicationStatusApproved, "")
	require.NoError(t, err)
	before := testutil.ReloadApplication(t, f.db, res.Application.ID)

	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), res.Application.ID, models.ApplicationStatusApproved, "again")
	require.NoError(t, err)

	after := testutil.ReloadApplication(t, f.db, res.Application.ID)
	assert.Equal(t, before.Version, after.Version)
	assert.Empty(t, after.Feedback)
	assert.Equal(t, 1, testutil.ReloadSupervisor(t, f.db, sup.ID).CurrentCapacity)
}

func TestDecide_Refusals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)
	other := testutil.CreateSupervisor(t, f.db, "Dr Other", 0, 5)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Graphs"))
	require.NoError(t, err)
	id := res.Application.ID

	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), 9999, models.ApplicationStatusApproved, "")
	requireCode(t, err, models.CodeApplicationNotFound)

	_, err = f.applications.Decide(ctx, SupervisorActor(other.ID), id, models.ApplicationStatusApproved, "")
	requireCode(t, err, models.CodeUnauthorized)

	_, err = f.applications.Decide(ctx, StudentActor(a.ID), id, models.ApplicationStatusApproved, "")
	requireCode(t, err, models.CodeUnauthorized)

	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), id, models.ApplicationStatus("shelved"), "")
	requireCode(t, err, models.CodeValidation)

	_, err = f.applications.Decide(ctx, AdminActor(), id, models.ApplicationStatusRejected, "Out of scope")
	require.NoError(t, err)

	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), id, models.ApplicationStatusPending, "")
	requireCode(t, err, models.CodeInvalidTransition)

	assert.Equal(t, 0, testutil.ReloadSupervisor(t, f.db, sup.ID).CurrentCapacity)
	assert.Empty(t, f.invalidated.ids)
}

func TestResubmit_RevisionRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	b := testutil.CreateStudent(t, f.db, "Bo")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)
	f.pair(t, a, b)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Robotics"))
	require.NoError(t, err)

	_, err = f.applications.Resubmit(ctx, res.Application.ID, a.ID, details("Robotics v2"))
	requireCode(t, err, models.CodeInvalidTransition)

	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), res.Application.ID, models.ApplicationStatusRevisionRequested, "Narrow the scope")
	require.NoError(t, err)

	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), res.Linked.ID, models.ApplicationStatusApproved, "")
	requireCode(t, err, models.CodeInvalidTransition)

	_, err = f.applications.Resubmit(ctx, res.Application.ID, b.ID, details("Robotics v2"))
	requireCode(t, err, models.CodeUnauthorized)

	_, err = f.applications.Resubmit(ctx, res.Linked.ID, b.ID, details("Robotics v2"))
	require.NoError(t, err)

	lead, follower := assertLinkedPair(t, f, res.Application.ID, res.Linked.ID)
	for _, app := range []*models.Application{lead, follower} {
		assert.Equal(t, models.ApplicationStatusPending, app.Status)
		assert.Equal(t, "Robotics v2", app.ProjectTitle)
		assert.Nil(t, app.DecidedAt)
	}

	_, err = f.applications.Resubmit(ctx, 9999, a.ID, details("x y z"))
	requireCode(t, err, models.CodeApplicationNotFound)
}

func TestSubmit_AttachesToPartnersEarlierApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	b := testutil.CreateStudent(t, f.db, "Bo")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)

	// Bo applies alone, gets approved, then pairs with Ada.
	solo, err := f.applications.Submit(ctx, b.ID, sup.ID, details("Vision"))
	require.NoError(t, err)
	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), solo.Application.ID, models.ApplicationStatusApproved, "ok")
	require.NoError(t, err)
	f.pair(t, a, b)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Vision"))
	require.NoError(t, err)
	require.NotNil(t, res.Linked)
	assert.Equal(t, solo.Application.ID, res.Linked.ID)

	lead, follower := assertLinkedPair(t, f, res.Application.ID, solo.Application.ID)
	assert.Equal(t, b.ID, lead.StudentID)
	assert.Equal(t, a.ID, follower.StudentID)
	assert.Equal(t, models.ApplicationStatusApproved, follower.Status)
	assert.Equal(t, 1, testutil.ReloadSupervisor(t, f.db, sup.ID).CurrentCapacity)

	result, err := f.applications.ReconcileCapacity(ctx, sup.ID)
	require.NoError(t, err)
	assert.False(t, result.Changed())
}

func TestUnpair_LeavesApplicationsAndCapacityAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	b := testutil.CreateStudent(t, f.db, "Bo")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)
	f.pair(t, a, b)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Robotics"))
	require.NoError(t, err)
	_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), res.Application.ID, models.ApplicationStatusApproved, "")
	require.NoError(t, err)

	require.NoError(t, f.partnerships.Unpair(ctx, a.ID))

	assert.Equal(t, 1, testutil.ReloadSupervisor(t, f.db, sup.ID).CurrentCapacity)
	lead, follower := assertLinkedPair(t, f, res.Application.ID, res.Linked.ID)
	assert.True(t, lead.HasPartner)
	require.NotNil(t, lead.PartnerID)
	assert.Equal(t, b.ID, *lead.PartnerID)
	assert.Equal(t, models.ApplicationStatusApproved, follower.Status)
	for _, id := range []uint{a.ID, b.ID} {
		assert.Equal(t, models.PartnershipStatusNone, testutil.ReloadStudent(t, f.db, id).PartnershipStatus)
	}
}

func TestReconcileCapacity_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	b := testutil.CreateStudent(t, f.db, "Bo")
	c := testutil.CreateStudent(t, f.db, "Cy")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)
	f.pair(t, a, b)

	pair, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Robotics"))
	require.NoError(t, err)
	solo, err := f.applications.Submit(ctx, c.ID, sup.ID, details("Graphs"))
	require.NoError(t, err)
	for _, id := range []uint{pair.Linked.ID, solo.Application.ID} {
		_, err = f.applications.Decide(ctx, SupervisorActor(sup.ID), id, models.ApplicationStatusApproved, "")
		require.NoError(t, err)
	}
	require.NoError(t, f.db.Model(&models.Supervisor{}).Where("id = ?", sup.ID).Update("current_capacity", 7).Error)

	f.invalidated.ids = nil
	result, err := f.applications.ReconcileCapacity(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Before)
	assert.Equal(t, 2, result.After)
	assert.True(t, result.Changed())
	assert.Equal(t, 2, testutil.ReloadSupervisor(t, f.db, sup.ID).CurrentCapacity)
	assert.Equal(t, []uint{sup.ID}, f.invalidated.ids)

	_, err = f.applications.ReconcileCapacity(ctx, 9999)
	requireCode(t, err, models.CodeNotFound)
}

func TestListAndGet_ScopedToParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	b := testutil.CreateStudent(t, f.db, "Bo")
	c := testutil.CreateStudent(t, f.db, "Cy")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)
	other := testutil.CreateSupervisor(t, f.db, "Dr Other", 0, 5)
	f.pair(t, a, b)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Robotics"))
	require.NoError(t, err)
	_, err = f.applications.Submit(ctx, c.ID, other.ID, details("Graphs"))
	require.NoError(t, err)

	mine, err := f.applications.List(ctx, StudentActor(b.ID), repository.ApplicationFilter{StudentID: c.ID}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b.ID, mine[0].StudentID)

	inbox, err := f.applications.List(ctx, SupervisorActor(sup.ID), repository.ApplicationFilter{}, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	everything, err := f.applications.List(ctx, AdminActor(), repository.ApplicationFilter{}, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, everything, 3)

	got, err := f.applications.Get(ctx, StudentActor(b.ID), res.Application.ID)
	require.NoError(t, err, "partner may read the lead application")
	assert.Equal(t, res.Application.ID, got.ID)

	_, err = f.applications.Get(ctx, StudentActor(c.ID), res.Application.ID)
	requireCode(t, err, models.CodeUnauthorized)
	_, err = f.applications.Get(ctx, SupervisorActor(other.ID), res.Application.ID)
	requireCode(t, err, models.CodeUnauthorized)
	_, err = f.applications.Get(ctx, AdminActor(), 9999)
	requireCode(t, err, models.CodeApplicationNotFound)
}

func TestConcurrentDecisions_OnLinkedPairCountOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, f.db, "Ada")
	b := testutil.CreateStudent(t, f.db, "Bo")
	sup := testutil.CreateSupervisor(t, f.db, "Dr Grey", 0, 5)
	f.pair(t, a, b)

	res, err := f.applications.Submit(ctx, a.ID, sup.ID, details("Robotics"))
	require.NoError(t, err)

	var g errgroup.Group
	for _, id := range res.IDs() {
		id := id
		g.Go(func() error {
			_, err := f.applications.Decide(ctx, SupervisorActor(sup.ID), id, models.ApplicationStatusApproved, "")
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, testutil.ReloadSupervisor(t, f.db, sup.ID).CurrentCapacity)
	assertLinkedPair(t, f, res.Application.ID, res.Linked.ID)
}
