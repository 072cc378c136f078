// Package storetest provides a testify mock of store.EvaluationStore.
package storetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shrimpsizemoose/evaluaciones/internal/models"
	"github.com/shrimpsizemoose/evaluaciones/internal/store"
)

type MockStore struct {
	mock.Mock
}

var _ store.EvaluationStore = (*MockStore)(nil)

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) ApplyMigrations(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) CreateEvaluation(ctx context.Context, e *models.Evaluation) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListEvaluations(ctx context.Context, filter store.ListFilter) ([]models.EvaluationSummary, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]models.EvaluationSummary)
	return rows, args.Error(1)
}

func (m *MockStore) GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*models.Evaluation)
	return e, args.Error(1)
}

func (m *MockStore) DeleteEvaluation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) FindByPinDigest(ctx context.Context, digest string) (*models.Evaluation, error) {
	args := m.Called(ctx, digest)
	e, _ := args.Get(0).(*models.Evaluation)
	return e, args.Error(1)
}

func (m *MockStore) ExportEvaluations(ctx context.Context) ([]models.Evaluation, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]models.Evaluation)
	return rows, args.Error(1)
}
