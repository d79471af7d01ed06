package users

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/query"
	"github.com/JaimeStill/caduceus/pkg/repository"
)

// PostgresStore is a Store backed by the users table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store over db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u User) (User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	q := `
		INSERT INTO users(id, email, password_hash, first_name, last_name, role,
			specialization, license_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, email, password_hash, first_name, last_name, role,
			specialization, license_number, created_at, updated_at`

	args := []any{
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role,
		nullCategory(u.Specialization), nullString(u.LicenseNumber), u.CreatedAt, u.UpdatedAt,
	}

	created, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (User, error) {
		return repository.QueryOne(ctx, tx, q, args, scanUser)
	})
	if err != nil {
		return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return created, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (User, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	u, err := repository.QueryOne(ctx, s.db, q, args, scanUser)
	if err != nil {
		return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return u, nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Email", email)

	u, err := repository.QueryOne(ctx, s.db, q, args, scanUser)
	if err != nil {
		return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return u, nil
}

func (s *PostgresStore) Update(ctx context.Context, u User) (User, error) {
	q := `
		UPDATE users
		SET first_name = $1, last_name = $2, specialization = $3, license_number = $4, updated_at = $5
		WHERE id = $6
		RETURNING id, email, password_hash, first_name, last_name, role,
			specialization, license_number, created_at, updated_at`

	args := []any{
		u.FirstName, u.LastName, nullCategory(u.Specialization), nullString(u.LicenseNumber), u.UpdatedAt, u.ID,
	}

	updated, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (User, error) {
		return repository.QueryOne(ctx, tx, q, args, scanUser)
	})
	if err != nil {
		return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return updated, nil
}
