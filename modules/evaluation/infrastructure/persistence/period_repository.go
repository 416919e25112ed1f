package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/entities/period"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var ErrPeriodNotFound = serrors.NewError("PERIOD_NOT_FOUND", "evaluation period not found", "")

type PgPeriodRepository struct{}

func NewPeriodRepository() period.Repository {
	return &PgPeriodRepository{}
}

const periodColumns = `id, name, start_date, end_date, status, created_at, updated_at`

func scanPeriod(row pgx.Row) (*period.Period, error) {
	var p period.Period
	if err := row.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgPeriodRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM evaluation_periods`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgPeriodRepository) GetAll(ctx context.Context) ([]period.Period, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+periodColumns+`
FROM evaluation_periods
ORDER BY start_date DESC, name ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPeriods(rows)
}

func (r *PgPeriodRepository) GetPaginated(ctx context.Context, params *period.FindParams) ([]period.Period, error) {
	if params == nil {
		params = &period.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	statuses := make([]string, 0, len(params.Statuses))
	for _, s := range params.Statuses {
		statuses = append(statuses, string(s))
	}

	rows, err := tx.Query(ctx, `
SELECT `+periodColumns+`
FROM evaluation_periods
WHERE cardinality($1::text[]) = 0 OR status = ANY($1::text[])
ORDER BY start_date DESC, name ASC
LIMIT $2 OFFSET $3
`, statuses, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPeriods(rows)
}

func collectPeriods(rows pgx.Rows) ([]period.Period, error) {
	out := make([]period.Period, 0, 16)
	for rows.Next() {
		var p period.Period
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *PgPeriodRepository) GetByID(ctx context.Context, id uuid.UUID) (*period.Period, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanPeriod(tx.QueryRow(ctx, `
SELECT `+periodColumns+`
FROM evaluation_periods
WHERE id = $1
`, pgUUID(id)))
}

func (r *PgPeriodRepository) Create(ctx context.Context, entity *period.Period) (*period.Period, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	created, err := scanPeriod(tx.QueryRow(ctx, `
INSERT INTO evaluation_periods (id, name, start_date, end_date, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+periodColumns+`
`, pgUUID(entity.ID), entity.Name, entity.StartDate, entity.EndDate, string(entity.Status)))
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create period")
	}
	return created, nil
}

func (r *PgPeriodRepository) Update(ctx context.Context, entity *period.Period) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE evaluation_periods
SET name = $2, start_date = $3, end_date = $4, updated_at = now()
WHERE id = $1
`, pgUUID(entity.ID), entity.Name, entity.StartDate, entity.EndDate)
	if err != nil {
		return gerrors.Wrap(err, "failed to update period")
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func (r *PgPeriodRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status period.Status) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE evaluation_periods
SET status = $2, updated_at = now()
WHERE id = $1
`, pgUUID(id), string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func (r *PgPeriodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM evaluation_periods WHERE id = $1`, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}
