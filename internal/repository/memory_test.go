package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/exercisetracker/internal/model"
)

func TestMemoryUserRepo_CreateFindList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()

	alice := &model.User{ID: uuid.NewString(), Username: "alice", CreatedAt: time.Now().UTC()}
	bob := &model.User{ID: uuid.NewString(), Username: "bob", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	found, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "alice", found.Username)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, alice.ID, users[0].ID)
	require.Equal(t, bob.ID, users[1].ID)
}

func TestMemoryUserRepo_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()

	require.NoError(t, repo.Create(ctx, &model.User{ID: uuid.NewString(), Username: "alice"}))
	err := repo.Create(ctx, &model.User{ID: uuid.NewString(), Username: "alice"})
	require.Error(t, err)
	require.True(t, errors.Is(err, model.ErrDuplicateUsername))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestMemoryUserRepo_FindByID_Missing(t *testing.T) {
	repo := NewMemoryUserRepo()

	user, err := repo.FindByID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestMemoryUserRepo_FindByID_IgnoresUUIDCase(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()

	alice := &model.User{ID: uuid.NewString(), Username: "alice", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, alice))

	found, err := repo.FindByID(ctx, strings.ToUpper(alice.ID))
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, alice.ID, found.ID)

	found, err = repo.FindByID(ctx, "urn:uuid:"+alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestMemoryUserRepo_ListEmptyIsNotNil(t *testing.T) {
	users, err := NewMemoryUserRepo().List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Empty(t, users)
}

func TestMemoryExerciseRepo_ListByUser_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExerciseRepo()

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	for i, d := range []int{1, 5, 10, 15, 20} {
		require.NoError(t, repo.Create(ctx, &model.Exercise{
			ID:          uuid.NewString(),
			UserID:      "user-1",
			Description: "run",
			Duration:    float64(10 * (i + 1)),
			Date:        day(d),
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.Exercise{ID: uuid.NewString(), UserID: "user-2", Description: "swim", Duration: 5, Date: day(5)}))

	all, err := repo.ListByUser(ctx, "user-1", model.ExerciseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)

	from, to := day(5), day(15)
	ranged, err := repo.ListByUser(ctx, "user-1", model.ExerciseFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 3)
	for _, e := range ranged {
		require.False(t, e.Date.Before(from))
		require.False(t, e.Date.After(to))
	}

	limited, err := repo.ListByUser(ctx, "user-1", model.ExerciseFilter{From: &from, Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, day(5), limited[0].Date)
	require.Equal(t, day(10), limited[1].Date)

	require.Equal(t, 6, repo.count(), "limit must not affect stored records")
}

func TestMemoryExerciseRepo_ListByUser_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExerciseRepo()
	require.NoError(t, repo.Create(ctx, &model.Exercise{ID: "e1", UserID: "u1", Description: "run", Duration: 30}))

	first, err := repo.ListByUser(ctx, "u1", model.ExerciseFilter{})
	require.NoError(t, err)
	first[0].Description = "mutated"

	second, err := repo.ListByUser(ctx, "u1", model.ExerciseFilter{})
	require.NoError(t, err)
	require.Equal(t, "run", second[0].Description)
}
