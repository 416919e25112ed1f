package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/goal"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var ErrGoalNotFound = serrors.NewError("GOAL_NOT_FOUND", "goal not found", "")

type PgGoalRepository struct{}

func NewGoalRepository() goal.Repository {
	return &PgGoalRepository{}
}

const goalColumns = `id, period_id, employee_id, category, title, description, weight, created_at, updated_at`

func scanGoal(row pgx.Row) (*goal.Goal, error) {
	var g goal.Goal
	var weight string
	err := row.Scan(&g.ID, &g.PeriodID, &g.EmployeeID, &g.Category, &g.Title, &g.Description, &weight, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	g.Weight, err = decimal.NewFromString(weight)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid weight in storage")
	}
	return &g, nil
}

func (r *PgGoalRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM evaluation_goals`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgGoalRepository) GetPaginated(ctx context.Context, params *goal.FindParams) ([]goal.Goal, error) {
	if params == nil {
		params = &goal.FindParams{}
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

	rows, err := tx.Query(ctx, `
SELECT `+goalColumns+`
FROM evaluation_goals
WHERE ($1::uuid IS NULL OR period_id = $1)
	AND ($2::uuid IS NULL OR employee_id = $2)
	AND ($3::text = '' OR category = $3)
ORDER BY created_at ASC, id ASC
LIMIT $4 OFFSET $5
`, nullableUUID(params.PeriodID), nullableUUID(params.EmployeeID), params.Category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]goal.Goal, 0, 16)
	for rows.Next() {
		var g goal.Goal
		var weight string
		if err := rows.Scan(&g.ID, &g.PeriodID, &g.EmployeeID, &g.Category, &g.Title, &g.Description, &weight, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.Weight, err = decimal.NewFromString(weight)
		if err != nil {
			return nil, gerrors.Wrap(err, "invalid weight in storage")
		}
		out = append(out, g)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *PgGoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanGoal(tx.QueryRow(ctx, `
SELECT `+goalColumns+`
FROM evaluation_goals
WHERE id = $1
`, pgUUID(id)))
}

func (r *PgGoalRepository) Create(ctx context.Context, entity *goal.Goal) (*goal.Goal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	created, err := scanGoal(tx.QueryRow(ctx, `
INSERT INTO evaluation_goals (id, period_id, employee_id, category, title, description, weight)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+goalColumns+`
`, pgUUID(entity.ID), pgUUID(entity.PeriodID), pgUUID(entity.EmployeeID),
		entity.Category, entity.Title, entity.Description, entity.Weight.String()))
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create goal")
	}
	return created, nil
}

func (r *PgGoalRepository) Update(ctx context.Context, entity *goal.Goal) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE evaluation_goals
SET category = $2, title = $3, description = $4, weight = $5, updated_at = now()
WHERE id = $1
`, pgUUID(entity.ID), entity.Category, entity.Title, entity.Description, entity.Weight.String())
	if err != nil {
		return gerrors.Wrap(err, "failed to update goal")
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *PgGoalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM evaluation_goals WHERE id = $1`, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *PgGoalRepository) SumWeight(ctx context.Context, periodID, employeeID, excludeGoalID uuid.UUID) (decimal.Decimal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	var total string
	err = tx.QueryRow(ctx, `
SELECT COALESCE(SUM(weight), 0)::text
FROM evaluation_goals
WHERE period_id = $1 AND employee_id = $2 AND id != $3
`, pgUUID(periodID), pgUUID(employeeID), pgUUID(excludeGoalID)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}
