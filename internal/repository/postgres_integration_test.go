//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/hitoshi/exercisetracker/internal/database"
	"github.com/hitoshi/exercisetracker/internal/model"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("exercisetracker"),
		postgrescontainer.WithUsername("tracker"),
		postgrescontainer.WithPassword("tracker"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(connStr))

	db, err := database.Open(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))

	return db
}

func TestPostgresRepos_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)

	users := NewPostgresUserRepo(db)
	exercises := NewPostgresExerciseRepo(db)

	alice := &model.User{ID: uuid.NewString(), Username: "alice", CreatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(ctx, alice))

	err := users.Create(ctx, &model.User{ID: uuid.NewString(), Username: "alice", CreatedAt: time.Now().UTC()})
	require.True(t, errors.Is(err, model.ErrDuplicateUsername), "got %v", err)

	listed, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	found, err := users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", found.Username)

	upper, err := users.FindByID(ctx, strings.ToUpper(alice.ID))
	require.NoError(t, err)
	require.NotNil(t, upper)
	require.Equal(t, alice.ID, upper.ID)

	missing, err := users.FindByID(ctx, uuid.NewString())
	require.NoError(t, err)
	require.Nil(t, missing)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, exercises.Create(ctx, &model.Exercise{
			ID:          uuid.NewString(),
			UserID:      alice.ID,
			Description: "run",
			Duration:    30,
			Date:        base.AddDate(0, 0, i*7),
			CreatedAt:   time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		}))
	}

	from := base.AddDate(0, 0, 7)
	to := base.AddDate(0, 0, 14)
	log, err := exercises.ListByUser(ctx, alice.ID, model.ExerciseFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, log, 2)
	require.Equal(t, from, log[0].Date)
	require.Equal(t, to, log[1].Date)

	limited, err := exercises.ListByUser(ctx, alice.ID, model.ExerciseFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, limited, 3)
}
