package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"taskboard/internal/domain/repository"
	mockRepo "taskboard/internal/mocks/repository"

	"github.com/stretchr/testify/mock"
)

const txFnType = "func(repository.RepositoryFactory) error"

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// txFixtures wires a transaction manager that runs every callback against the same mocked repositories.
type txFixtures struct {
	txManager *mockRepo.MockTransactionManager
	factory   *mockRepo.MockRepositoryFactory
	userRepo  *mockRepo.MockUserRepository
	taskRepo  *mockRepo.MockTaskRepository
}

func newTxFixtures(t *testing.T) txFixtures {
	t.Helper()

	fx := txFixtures{
		txManager: mockRepo.NewMockTransactionManager(t),
		factory:   mockRepo.NewMockRepositoryFactory(t),
		userRepo:  mockRepo.NewMockUserRepository(t),
		taskRepo:  mockRepo.NewMockTaskRepository(t),
	}

	fx.factory.EXPECT().UserRepo().Return(fx.userRepo).Maybe()
	fx.factory.EXPECT().TaskRepo().Return(fx.taskRepo).Maybe()

	return fx
}

// expectTx lets Execute run its callback with the mocked factory.
func (fx txFixtures) expectTx() {
	fx.txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType(txFnType)).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(fx.factory)
		})
}
