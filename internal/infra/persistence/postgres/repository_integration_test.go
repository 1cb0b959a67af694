//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/domain/entity"
	"taskboard/internal/domain/repository"
	"taskboard/internal/infra/persistence/migration"
	"taskboard/internal/infra/persistence/postgres"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupDB starts a throwaway PostgreSQL, applies the schema and returns a gorm handle.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("taskboard"),
		tcpostgres.WithUsername("taskboard"),
		tcpostgres.WithPassword("taskboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := migration.NewMigrator(connStr)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, repo repository.UserRepository, email, username string) *entity.User {
	t.Helper()

	user := &entity.User{Email: email, Username: username, HashedPassword: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))

	return user
}

func TestUserRepository_Integration(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	ann := createUser(t, repo, "ann@example.com", "ann")
	assert.NotEqual(t, uuid.Nil, ann.ID)
	assert.False(t, ann.CreatedAt.IsZero())

	t.Run("find by each key", func(t *testing.T) {
		byID, err := repo.FindByID(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", byID.Email)

		byEmail, err := repo.FindByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, ann.ID, byEmail.ID)

		byName, err := repo.FindByUsername(ctx, "ann")
		require.NoError(t, err)
		assert.Equal(t, ann.ID, byName.ID)

		_, err = repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("duplicates are attributed", func(t *testing.T) {
		err := repo.Create(ctx, &entity.User{Email: "ann@example.com", Username: "other", HashedPassword: "hash"})
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

		err = repo.Create(ctx, &entity.User{Email: "other@example.com", Username: "ann", HashedPassword: "hash"})
		assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
	})

	t.Run("update and delete", func(t *testing.T) {
		bob := createUser(t, repo, "bob@example.com", "bob")

		bob.Username = "bobby"
		require.NoError(t, repo.Update(ctx, bob))

		got, err := repo.FindByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bobby", got.Username)

		bob.Email = "ann@example.com"
		assert.ErrorIs(t, repo.Update(ctx, bob), repository.ErrDuplicateEmail)

		require.NoError(t, repo.Delete(ctx, bob.ID))
		assert.ErrorIs(t, repo.Delete(ctx, bob.ID), repository.ErrUserNotFound)
	})
}

func TestTaskRepository_Integration(t *testing.T) {
	db := setupDB(t)
	users := postgres.NewUserRepository(db)
	repo := postgres.NewTaskRepository(db)
	ctx := context.Background()

	ann := createUser(t, users, "ann@example.com", "ann")
	bob := createUser(t, users, "bob@example.com", "bob")

	due := time.Date(2026, 12, 24, 18, 0, 0, 0, time.UTC)
	first := &entity.Task{UserID: ann.ID, Title: "first", Status: entity.TaskStatusPending}
	second := &entity.Task{UserID: ann.ID, Title: "second", Status: entity.TaskStatusCompleted, DueDate: &due}
	foreign := &entity.Task{UserID: bob.ID, Title: "bob's", Status: entity.TaskStatusPending}
	for _, task := range []*entity.Task{first, second, foreign} {
		require.NoError(t, repo.Create(ctx, task))
		// Keep created_at distinct so the newest-first order is deterministic.
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("list is newest first and owner scoped", func(t *testing.T) {
		tasks, err := repo.ListByOwner(ctx, ann.ID, nil)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, second.ID, tasks[0].ID)
		assert.Equal(t, first.ID, tasks[1].ID)
		require.NotNil(t, tasks[0].DueDate)
		assert.True(t, due.Equal(*tasks[0].DueDate))
	})

	t.Run("list by status", func(t *testing.T) {
		status := entity.TaskStatusCompleted
		tasks, err := repo.ListByOwner(ctx, ann.ID, &status)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "second", tasks[0].Title)
	})

	t.Run("foreign task is not found", func(t *testing.T) {
		_, err := repo.FindByIDAndOwner(ctx, foreign.ID, ann.ID)
		assert.ErrorIs(t, err, repository.ErrTaskNotFound)

		assert.ErrorIs(t, repo.DeleteByIDAndOwner(ctx, foreign.ID, ann.ID), repository.ErrTaskNotFound)
	})

	t.Run("update clears due date", func(t *testing.T) {
		second.DueDate = nil
		second.Description = "done"
		require.NoError(t, repo.Update(ctx, second))

		got, err := repo.FindByIDAndOwner(ctx, second.ID, ann.ID)
		require.NoError(t, err)
		assert.Nil(t, got.DueDate)
		assert.Equal(t, "done", got.Description)
	})

	t.Run("unknown owner", func(t *testing.T) {
		err := repo.Create(ctx, &entity.Task{UserID: uuid.New(), Title: "orphan", Status: entity.TaskStatusPending})
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("delete by owner", func(t *testing.T) {
		n, err := repo.DeleteByOwner(ctx, ann.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		remaining, err := repo.ListByOwner(ctx, bob.ID, nil)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}

func TestTransactionManager_Integration(t *testing.T) {
	db := setupDB(t)
	txManager := postgres.NewTransactionManager(db)
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		user := &entity.User{Email: "ann@example.com", Username: "ann", HashedPassword: "hash"}
		if err := factory.UserRepo().Create(ctx, user); err != nil {
			return err
		}

		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, err = postgres.NewUserRepository(db).FindByEmail(ctx, "ann@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	err = txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		user := &entity.User{Email: "ann@example.com", Username: "ann", HashedPassword: "hash"}
		if err := factory.UserRepo().Create(ctx, user); err != nil {
			return err
		}

		return factory.TaskRepo().Create(ctx, &entity.Task{UserID: user.ID, Title: "committed", Status: entity.TaskStatusPending})
	})
	require.NoError(t, err)

	user, err := postgres.NewUserRepository(db).FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	tasks, err := postgres.NewTaskRepository(db).ListByOwner(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
