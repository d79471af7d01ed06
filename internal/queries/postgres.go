package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/query"
	"github.com/JaimeStill/caduceus/pkg/repository"
)

// PostgresStore is a Store backed by the queries table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store over db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, q Query) (uuid.UUID, error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}

	stmt := `
		INSERT INTO queries(id, patient_id, question, category, urgency_level, status,
			ai_response, clinician_response, clinician_id, is_anonymous, created_at, updated_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(ctx, stmt,
		q.ID, q.PatientID, q.Question, q.Category, q.Urgency, q.Status,
		nullString(q.AIResponse), nullString(q.ClinicianResponse), q.ClinicianID,
		q.IsAnonymous, q.CreatedAt, q.UpdatedAt, q.ReviewedAt,
	)
	if err != nil {
		return uuid.Nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return q.ID, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Query, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	found, err := repository.QueryOne(ctx, s.db, q, args, scanQuery)
	if err != nil {
		return Query{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return found, nil
}

func (s *PostgresStore) CompareAndUpdate(
	ctx context.Context,
	id uuid.UUID,
	expected Status,
	mutate func(*Query) error,
) (Query, error) {
	updated, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Query, error) {
		lockQ, lockArgs := query.NewBuilder(projection).BuildSingleForUpdate("ID", id)
		current, err := repository.QueryOne(ctx, tx, lockQ, lockArgs, scanQuery)
		if err != nil {
			return Query{}, err
		}

		if current.Status != expected {
			return Query{}, &ConflictError{ID: id, Expected: expected, Actual: current.Status}
		}

		working := clone(current)
		if err := mutate(&working); err != nil {
			return Query{}, err
		}
		mutable(&current, working)

		stmt := `
			UPDATE queries
			SET status = $1, ai_response = $2, clinician_response = $3,
				clinician_id = $4, updated_at = $5, reviewed_at = $6
			WHERE id = $7 AND status = $8`

		if err := repository.ExecExpectOne(ctx, tx, stmt,
			current.Status, nullString(current.AIResponse), nullString(current.ClinicianResponse),
			current.ClinicianID, current.UpdatedAt, current.ReviewedAt,
			id, expected,
		); err != nil {
			if repository.IsNoRows(err) {
				return Query{}, &ConflictError{ID: id, Expected: expected}
			}
			return Query{}, fmt.Errorf("update query: %w", err)
		}

		return current, nil
	})

	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return Query{}, err
		}
		return Query{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return updated, nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Query, error) {
	return s.list(ctx, query.NewBuilder(projection, defaultSort).WhereEquals("Status", status))
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Query, error) {
	return s.list(ctx, query.NewBuilder(projection, defaultSort))
}

func (s *PostgresStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Query, error) {
	return s.list(ctx, query.NewBuilder(projection, defaultSort).WhereEquals("PatientID", patientID))
}

func (s *PostgresStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]Query, error) {
	return s.list(ctx, query.
		NewBuilder(projection, defaultSort).
		WhereEquals("Status", StatusPending).
		WhereAtMost("CreatedAt", cutoff))
}

func (s *PostgresStore) list(ctx context.Context, b *query.Builder) ([]Query, error) {
	q, args := b.Build()
	qs, err := repository.QueryMany(ctx, s.db, q, args, scanQuery)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	return qs, nil
}
