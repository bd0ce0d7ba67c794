package seed

import (
	"testing"

	"capstone/internal/models"
	"capstone/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_CreatesConsistentPairs(t *testing.T) {
	db := testutil.NewTestDB(t)

	summary, err := Seed(db, Options{NumStudents: 6, NumSupervisors: 2, NumPairs: 2, RandomSeed: 42})
	require.NoError(t, err)
	assert.Equal(t, &Summary{Students: 6, Supervisors: 2, Pairs: 2}, summary)

	var students []models.Student
	require.NoError(t, db.Order("id").Find(&students).Error)
	require.Len(t, students, 6)

	byID := make(map[uint]models.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	paired := 0
	for _, s := range students {
		if !s.IsPaired() {
			assert.Equal(t, models.PartnershipStatusNone, s.PartnershipStatus)
			assert.Nil(t, s.PartnerID)
			continue
		}
		paired++
		partner := byID[*s.PartnerID]
		require.NotNil(t, partner.PartnerID)
		assert.Equal(t, s.ID, *partner.PartnerID)
	}
	assert.Equal(t, 4, paired)

	var supervisors []models.Supervisor
	require.NoError(t, db.Find(&supervisors).Error)
	for _, s := range supervisors {
		assert.Zero(t, s.CurrentCapacity)
		assert.GreaterOrEqual(t, s.MaxCapacity, 2)
	}
}

func TestSeed_CleanReplacesRoster(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := Seed(db, Options{NumStudents: 4, NumSupervisors: 1})
	require.NoError(t, err)

	_, err = Seed(db, Options{NumStudents: 2, NumSupervisors: 1, ShouldClean: true})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Student{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestSeed_RejectsTooManyPairs(t *testing.T) {
	_, err := Seed(nil, Options{NumStudents: 3, NumPairs: 2})
	require.Error(t, err)
}

func TestSeed_DryRunAssignsSyntheticIDs(t *testing.T) {
	summary, err := Seed(nil, Options{NumStudents: 3, NumSupervisors: 2, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Students)
	assert.Equal(t, 2, summary.Supervisors)
}

func TestFactory_SameSeedSameRoster(t *testing.T) {
	a := NewFactory(nil, 7, true).BuildStudent()
	b := NewFactory(nil, 7, true).BuildStudent()
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Email, b.Email)
	assert.Equal(t, models.PartnershipStatusNone, a.PartnershipStatus)
}
