package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancelflow/entities"
)

func TestOpenSQLite_Migrates(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&entities.Subscription{}))
	assert.True(t, db.Migrator().HasTable(&entities.Cancellation{}))
	assert.True(t, db.Migrator().HasIndex(&entities.Cancellation{}, "UserID"))

	require.NoError(t, db.Create(&entities.Cancellation{UserID: "u1", DownsellVariant: "A"}).Error)
	err = db.Create(&entities.Cancellation{UserID: "u1", DownsellVariant: "B"}).Error
	assert.Error(t, err, "user_id is unique")
}

func TestOpenSQLite_DedupesLegacyCancellations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// Build a table the way older releases did: no unique index on user_id.
	legacy, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, legacy.Exec(`DROP TABLE cancellations`).Error)
	require.NoError(t, legacy.Exec(`
CREATE TABLE cancellations (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    subscription_id TEXT,
    downsell_variant TEXT,
    state_json_array TEXT,
    created_at DATETIME,
    updated_at DATETIME
)`).Error)
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, row := range []entities.Cancellation{
		{ID: "c1", UserID: "u1", DownsellVariant: "A", StateJSONArray: "[]", UpdatedAt: old},
		{ID: "c2", UserID: "u1", DownsellVariant: "A", StateJSONArray: `[{"screen":"start"}]`, UpdatedAt: old.Add(time.Hour)},
		{ID: "c3", UserID: "u2", DownsellVariant: "B", StateJSONArray: "[]", UpdatedAt: old},
	} {
		require.NoError(t, legacy.Exec(
			`INSERT INTO cancellations (id, user_id, downsell_variant, state_json_array, updated_at) VALUES (?, ?, ?, ?, ?)`,
			row.ID, row.UserID, row.DownsellVariant, row.StateJSONArray, row.UpdatedAt,
		).Error, i)
	}
	sqlDB, err := legacy.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	var rows []entities.Cancellation
	require.NoError(t, db.Order("user_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "c2", rows[0].ID, "the most recently updated row survives")
	assert.Equal(t, "c3", rows[1].ID)
	assert.True(t, db.Migrator().HasIndex(&entities.Cancellation{}, "idx_cancellations_user_id"))
}
