package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/pagination"
	"github.com/JaimeStill/caduceus/pkg/query"
	"github.com/JaimeStill/caduceus/pkg/repository"
)

const returning = "RETURNING id, name, stage, instructions, description, active"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	maxBody    int64
}

// New creates a PostgreSQL-backed prompt System. The partial unique index on
// (stage) WHERE active keeps at most one active override per stage even
// under concurrent activation.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBody int64,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
		maxBody:    maxBody,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.maxBody)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := filters.Apply(
		query.NewBuilder(projection, defaultSort).
			WhereSearch(page.Search, "Name", "Description"),
	)
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PerPage)
	found, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	result := pagination.NewPageResult(found, total, page.Page, page.PerPage)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	return r.one(ctx, `
		INSERT INTO prompts(name, stage, instructions, description)
		VALUES ($1, $2, $3, $4) `+returning,
		cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description,
	)
}

// Update replaces the prompt's fields. Moving an active prompt to another
// stage fails with ErrDuplicate when that stage already has an active
// override.
func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	return r.one(ctx, `
		UPDATE prompts
		SET name = $1, stage = $2, instructions = $3, description = $4
		WHERE id = $5 `+returning,
		cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description, id,
	)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM prompts WHERE id = $1", id)
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

// Activate locks the target row, clears any other active override for the
// same stage, then activates the target within one transaction.
func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		lockQ, lockArgs := query.NewBuilder(projection).BuildSingleForUpdate("ID", id)
		target, err := repository.QueryOne(ctx, tx, lockQ, lockArgs, scanPrompt)
		if err != nil {
			return Prompt{}, err
		}
		if target.Active {
			return target, nil
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE prompts SET active = false WHERE stage = $1 AND active",
			target.Stage,
		); err != nil {
			return Prompt{}, fmt.Errorf("deactivate current: %w", err)
		}

		return repository.QueryOne(ctx, tx,
			"UPDATE prompts SET active = true WHERE id = $1 "+returning,
			[]any{id}, scanPrompt,
		)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	return r.one(ctx, "UPDATE prompts SET active = false WHERE id = $1 "+returning, id)
}

func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}

	active := true
	q, args := query.
		NewBuilder(projection).
		WhereEquals("Stage", &stage).
		WhereEquals("Active", &active).
		BuildFirst()

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if repository.IsNoRows(err) {
		r.logger.Debug("no active override", "stage", stage)
		return DefaultInstructions(stage)
	}
	if err != nil {
		return "", fmt.Errorf("query active prompt: %w", err)
	}
	return p.Instructions, nil
}

// one runs a single-row write that returns the affected prompt.
func (r *repo) one(ctx context.Context, q string, args ...any) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}
