// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"capstone/internal/database"
	"capstone/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewTestDB returns a migrated in-memory SQLite database private to t. It is
// pinned to one connection so every query sees the same database, and
// transactions from concurrent goroutines queue instead of failing.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateStudent inserts an unpaired student.
func CreateStudent(t *testing.T, db *gorm.DB, name string) *models.Student {
	t.Helper()
	s := &models.Student{
		Name:              name,
		Email:             fmt.Sprintf("%s.%d@uni.test", strings.ToLower(strings.ReplaceAll(name, " ", ".")), dbSeq.Add(1)),
		PartnershipStatus: models.PartnershipStatusNone,
		Version:           1,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateSupervisor inserts an available supervisor with the given capacity.
func CreateSupervisor(t *testing.T, db *gorm.DB, name string, current, maxCapacity int) *models.Supervisor {
	t.Helper()
	s := &models.Supervisor{
		Name:               name,
		Email:              fmt.Sprintf("%s.%d@uni.test", strings.ToLower(strings.ReplaceAll(name, " ", ".")), dbSeq.Add(1)),
		CurrentCapacity:    current,
		MaxCapacity:        maxCapacity,
		AvailabilityStatus: models.AvailabilityAvailable,
		Version:            1,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

// ReloadStudent reads the student's current row.
func ReloadStudent(t *testing.T, db *gorm.DB, id uint) *models.Student {
	t.Helper()
	var s models.Student
	require.NoError(t, db.First(&s, id).Error)
	return &s
}

// ReloadSupervisor reads the supervisor's current row.
func ReloadSupervisor(t *testing.T, db *gorm.DB, id uint) *models.Supervisor {
	t.Helper()
	var s models.Supervisor
	require.NoError(t, db.First(&s, id).Error)
	return &s
}

// ReloadRequest reads the request's current row.
func ReloadRequest(t *testing.T, db *gorm.DB, id uint) *models.PartnershipRequest {
	t.Helper()
	var r models.PartnershipRequest
	require.NoError(t, db.First(&r, id).Error)
	return &r
}

// ReloadApplication reads the application's current row.
func ReloadApplication(t *testing.T, db *gorm.DB, id uint) *models.Application {
	t.Helper()
	var a models.Application
	require.NoError(t, db.First(&a, id).Error)
	return &a
}

// CountPending returns the number of pending requests between a and b in
// either direction.
func CountPending(t *testing.T, db *gorm.DB, a, b uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.PartnershipRequest{}).
		Where("status = ? AND ((requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?))",
			models.PartnershipRequestStatusPending, a, b, b, a).
		Count(&n).Error)
	return n
}
