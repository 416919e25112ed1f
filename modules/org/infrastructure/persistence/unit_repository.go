package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/evaldesk/evaldesk/modules/org/domain/aggregates/unit"
	"github.com/evaldesk/evaldesk/pkg/composables"
)

type PgUnitRepository struct{}

func NewUnitRepository() unit.Repository {
	return &PgUnitRepository{}
}

const unitColumns = `id, name, parent_id, created_at, updated_at`

func scanUnit(row pgx.Row) (*unit.Unit, error) {
	var u unit.Unit
	var parentID pgtype.UUID
	if err := row.Scan(&u.ID, &u.Name, &parentID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, unit.ErrNotFound
		}
		return nil, err
	}
	u.ParentID = asUUIDPtr(parentID)
	return &u, nil
}

func (r *PgUnitRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM org_units`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgUnitRepository) GetAll(ctx context.Context) ([]unit.Unit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+unitColumns+`
FROM org_units
ORDER BY created_at ASC, name ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]unit.Unit, 0, 16)
	for rows.Next() {
		var u unit.Unit
		var parentID pgtype.UUID
		if err := rows.Scan(&u.ID, &u.Name, &parentID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.ParentID = asUUIDPtr(parentID)
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *PgUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*unit.Unit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanUnit(tx.QueryRow(ctx, `
SELECT `+unitColumns+`
FROM org_units
WHERE id = $1
`, pgUUID(id)))
}

func (r *PgUnitRepository) Create(ctx context.Context, entity *unit.Unit) (*unit.Unit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	created, err := scanUnit(tx.QueryRow(ctx, `
INSERT INTO org_units (id, name, parent_id)
VALUES ($1, $2, $3)
RETURNING `+unitColumns+`
`, pgUUID(entity.ID), entity.Name, pgUUIDPtr(entity.ParentID)))
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create unit")
	}
	return created, nil
}

func (r *PgUnitRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE org_units
SET name = $2, updated_at = now()
WHERE id = $1
`, pgUUID(id), name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return unit.ErrNotFound
	}
	return nil
}

func (r *PgUnitRepository) Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE org_units
SET parent_id = $2, updated_at = now()
WHERE id = $1
`, pgUUID(id), pgUUIDPtr(parentID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return unit.ErrNotFound
	}
	return nil
}

func (r *PgUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM org_units WHERE id = $1`, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return unit.ErrNotFound
	}
	return nil
}
