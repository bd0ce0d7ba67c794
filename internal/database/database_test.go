package database

import (
	"context"
	"testing"

	"capstone/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                      "test",
		DBDriver:                 DriverSQLite,
		SQLitePath:               "file:" + t.Name() + "?mode=memory",
		DBSchemaMode:             SchemaModeHybrid,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
}

func TestConnect_SQLiteSingleWriter(t *testing.T) {
	db, err := Connect(sqliteConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close() })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.Nil(t, GetReadDB())
	assert.NoError(t, Ping(context.Background(), db))
}

func TestConnect_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DBDriver = "oracle"
	_, err := Connect(cfg)
	assert.Error(t, err)
}

func TestApplySchema_SQLiteUsesAutoMigrate(t *testing.T) {
	cfg := sqliteConfig(t)
	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close() })

	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"students", "supervisors", "partnership_requests", "applications"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("partnership_requests", "idx_partnership_requests_pending_pair_key"))
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"hybrid dev", config.Config{Env: "development", DBDriver: DriverPostgres, DBSchemaMode: SchemaModeHybrid}, true, true, false},
		{"hybrid prod", config.Config{Env: "production", DBDriver: DriverPostgres, DBSchemaMode: SchemaModeHybrid}, true, false, false},
		{"sql", config.Config{Env: "production", DBDriver: DriverPostgres, DBSchemaMode: SchemaModeSQL}, true, false, false},
		{"auto prod refused", config.Config{Env: "production", DBDriver: DriverPostgres, DBSchemaMode: SchemaModeAuto}, false, false, true},
		{"auto prod allowed", config.Config{Env: "production", DBDriver: DriverPostgres, DBSchemaMode: SchemaModeAuto, DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"sqlite hybrid", config.Config{Env: "development", DBDriver: DriverSQLite, DBSchemaMode: SchemaModeHybrid}, false, true, false},
		{"sqlite sql refused", config.Config{Env: "development", DBDriver: DriverSQLite, DBSchemaMode: SchemaModeSQL}, false, false, true},
		{"unknown mode", config.Config{Env: "development", DBDriver: DriverPostgres, DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestEmbeddedMigrationsRegistered(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	for i, m := range ms {
		assert.NotEmpty(t, m.UpScript, m.String())
		assert.NotEmpty(t, m.DownScript, m.String())
		if i > 0 {
			assert.Less(t, ms[i-1].Version, m.Version)
		}
	}
	assert.Equal(t, "000001_core_schema", ms[0].String())
	assert.Contains(t, ms[0].UpScript, "pending_pair_key")
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}

func TestMigrationStore_EmptyBeforeFirstRun(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory"), GormConfig())
	require.NoError(t, err)

	versions, err := NewMigrationStore(db).GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
}
