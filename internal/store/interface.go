package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/evaluaciones/internal/models"
)

var (
	ErrNotFound     = errors.New("evaluation not found")
	ErrDuplicatePin = errors.New("pin digest already in use")
)

type EvaluationStore interface {
	Close() error
	Ping(ctx context.Context) error
	ApplyMigrations(ctx context.Context) error

	CreateEvaluation(ctx context.Context, e *models.Evaluation) (int64, error)
	ListEvaluations(ctx context.Context, filter ListFilter) ([]models.EvaluationSummary, error)
	GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error)
	DeleteEvaluation(ctx context.Context, id int64) error
	FindByPinDigest(ctx context.Context, digest string) (*models.Evaluation, error)
	ExportEvaluations(ctx context.Context) ([]models.Evaluation, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
	// TranslateDDL rewrites the Postgres-flavoured migrations for the dialect, nil means as is.
	TranslateDDL func(string) string
	// IsUniqueViolation reports a driver error for a unique index conflict.
	IsUniqueViolation func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

const evaluationColumns = `id, student_name, student_id, course, date, score, comments,
	pin_digest, pin_hint, created_at, updated_at`

func (s *BaseStore) CreateEvaluation(ctx context.Context, e *models.Evaluation) (int64, error) {
	query, args, err := sqlx.Named(`
		INSERT INTO evaluations (student_name, student_id, course, date, score, comments,
			pin_digest, pin_hint, created_at, updated_at)
		VALUES (:student_name, :student_id, :course, :date, :score, :comments,
			:pin_digest, :pin_hint, :created_at, :updated_at)
		RETURNING id
	`, e)
	if err != nil {
		return 0, fmt.Errorf("failed to bind evaluation: %w", err)
	}

	var id int64
	if err := s.DB.GetContext(ctx, &id, s.Converter(query), args...); err != nil {
		if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
			return 0, ErrDuplicatePin
		}
		return 0, fmt.Errorf("failed to create evaluation: %w", err)
	}
	e.ID = id
	return id, nil
}

func (s *BaseStore) ListEvaluations(ctx context.Context, filter ListFilter) ([]models.EvaluationSummary, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	where := ""
	args := []interface{}{}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		where = `WHERE student_name LIKE ? ESCAPE '\' OR student_id LIKE ? ESCAPE '\' OR course LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}
	args = append(args, limit)

	query := s.Converter(`
		SELECT id, student_name, student_id, course, date, score, pin_hint, created_at
		FROM evaluations
		` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	summaries := []models.EvaluationSummary{}
	if err := s.DB.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return summaries, nil
}

func (s *BaseStore) GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error) {
	var e models.Evaluation
	query := s.Converter(`SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = ?`)

	err := s.DB.GetContext(ctx, &e, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation %d: %w", id, err)
	}
	return &e, nil
}

func (s *BaseStore) DeleteEvaluation(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, s.Converter(`DELETE FROM evaluations WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete evaluation %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) FindByPinDigest(ctx context.Context, digest string) (*models.Evaluation, error) {
	var e models.Evaluation
	query := s.Converter(`SELECT ` + evaluationColumns + ` FROM evaluations WHERE pin_digest = ? LIMIT 1`)

	err := s.DB.GetContext(ctx, &e, query, digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find evaluation by pin: %w", err)
	}
	return &e, nil
}

func (s *BaseStore) ExportEvaluations(ctx context.Context) ([]models.Evaluation, error) {
	evaluations := []models.Evaluation{}
	query := `SELECT ` + evaluationColumns + ` FROM evaluations ORDER BY created_at DESC, id DESC`
	if err := s.DB.SelectContext(ctx, &evaluations, query); err != nil {
		return nil, fmt.Errorf("failed to export evaluations: %w", err)
	}
	return evaluations, nil
}
