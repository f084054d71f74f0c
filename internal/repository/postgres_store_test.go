package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nurpe/ride-profit/internal/db"
	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/repository"
)

// newPostgresStore runs against TEST_DATABASE_URL inside a transaction that is
// rolled back when the test ends. Skipped when the variable is unset.
func newPostgresStore(t *testing.T) *repository.PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	tx := database.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })

	return repository.NewPostgresStore(tx)
}

func TestPostgresStore_Log(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	lines, err := s.ReadLog(ctx, "pg-user")
	require.NoError(t, err)
	assert.Nil(t, lines)

	require.NoError(t, s.AppendLog(ctx, "pg-user", []string{"", "[2026-10-19 08:00:00]"}))
	require.NoError(t, s.AppendLog(ctx, "pg-user", []string{"Zysk netto: 1.00 zł"}))

	lines, err = s.ReadLog(ctx, "pg-user")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "[2026-10-19 08:00:00]", "Zysk netto: 1.00 zł"}, lines)

	require.NoError(t, s.RewriteLog(ctx, "pg-user", []string{"x"}))
	lines, err = s.ReadLog(ctx, "pg-user")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, lines)
}

func TestPostgresStore_Goals(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, s.InitUser(ctx, "pg-user", defaultGoal))
	values, found, err := s.ReadGoal(ctx, "pg-user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, defaultGoal, values)

	custom := []model.Field{{Key: "min_stawka", Value: "40"}}
	require.NoError(t, s.WriteGoal(ctx, "pg-user", custom))
	require.NoError(t, s.InitUser(ctx, "pg-user", defaultGoal))

	values, _, err = s.ReadGoal(ctx, "pg-user")
	require.NoError(t, err)
	assert.Equal(t, custom, values)
}
