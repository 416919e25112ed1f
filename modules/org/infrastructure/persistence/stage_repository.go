package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/stage"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var ErrStageNotFound = serrors.NewError("STAGE_NOT_FOUND", "stage not found", "")

type PgStageRepository struct{}

func NewStageRepository() stage.Repository {
	return &PgStageRepository{}
}

const stageColumns = `id, name, description, position, capacity, created_at, updated_at`

func scanStage(row pgx.Row) (*stage.Stage, error) {
	var st stage.Stage
	if err := row.Scan(&st.ID, &st.Name, &st.Description, &st.Position, &st.Capacity, &st.CreatedAt, &st.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (r *PgStageRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM org_stages`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgStageRepository) GetAll(ctx context.Context) ([]stage.Stage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+stageColumns+`
FROM org_stages
ORDER BY position ASC, name ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]stage.Stage, 0, 8)
	for rows.Next() {
		var st stage.Stage
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.Position, &st.Capacity, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *PgStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*stage.Stage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanStage(tx.QueryRow(ctx, `
SELECT `+stageColumns+`
FROM org_stages
WHERE id = $1
`, pgUUID(id)))
}

func (r *PgStageRepository) Create(ctx context.Context, entity *stage.Stage) (*stage.Stage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	created, err := scanStage(tx.QueryRow(ctx, `
INSERT INTO org_stages (id, name, description, position, capacity)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+stageColumns+`
`, pgUUID(entity.ID), entity.Name, entity.Description, entity.Position, entity.Capacity))
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create stage")
	}
	return created, nil
}

func (r *PgStageRepository) Update(ctx context.Context, entity *stage.Stage) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE org_stages
SET name = $2, description = $3, capacity = $4, updated_at = now()
WHERE id = $1
`, pgUUID(entity.ID), entity.Name, entity.Description, entity.Capacity)
	if err != nil {
		return gerrors.Wrap(err, "failed to update stage")
	}
	if tag.RowsAffected() == 0 {
		return ErrStageNotFound
	}
	return nil
}

func (r *PgStageRepository) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE org_stages
SET position = $2, updated_at = now()
WHERE id = $1
`, pgUUID(id), position)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStageNotFound
	}
	return nil
}

func (r *PgStageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM org_stages WHERE id = $1`, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStageNotFound
	}
	return nil
}

func (r *PgStageRepository) CountAssigned(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `
SELECT COUNT(*) FROM org_employees WHERE stage_id = $1
`, pgUUID(id)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
