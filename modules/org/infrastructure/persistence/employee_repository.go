package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/evaldesk/evaldesk/modules/org/domain/entities/employee"
	"github.com/evaldesk/evaldesk/pkg/composables"
	"github.com/evaldesk/evaldesk/pkg/serrors"
)

var ErrEmployeeNotFound = serrors.NewError("EMPLOYEE_NOT_FOUND", "employee not found", "")

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

const employeeColumns = `id, first_name, last_name, email, supervisor_id, stage_id, unit_id, created_at, updated_at`

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var e employee.Employee
	var supervisorID, stageID, unitID pgtype.UUID
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &supervisorID, &stageID, &unitID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	e.SupervisorID = asUUIDPtr(supervisorID)
	e.StageID = asUUIDPtr(stageID)
	e.UnitID = asUUIDPtr(unitID)
	return &e, nil
}

func (r *PgEmployeeRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM org_employees`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgEmployeeRepository) GetPaginated(ctx context.Context, params *employee.FindParams) ([]employee.Employee, error) {
	if params == nil {
		params = &employee.FindParams{}
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
SELECT `+employeeColumns+`
FROM org_employees
WHERE ($1::uuid IS NULL OR stage_id = $1)
	AND ($2::uuid IS NULL OR unit_id = $2)
	AND ($3::uuid IS NULL OR supervisor_id = $3)
ORDER BY last_name ASC, first_name ASC, id ASC
LIMIT $4 OFFSET $5
`, nullableUUID(params.StageID), nullableUUID(params.UnitID), nullableUUID(params.SupervisorID), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]employee.Employee, 0, 16)
	for rows.Next() {
		var e employee.Employee
		var supervisorID, stageID, unitID pgtype.UUID
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &supervisorID, &stageID, &unitID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.SupervisorID = asUUIDPtr(supervisorID)
		e.StageID = asUUIDPtr(stageID)
		e.UnitID = asUUIDPtr(unitID)
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	return scanEmployee(tx.QueryRow(ctx, `
SELECT `+employeeColumns+`
FROM org_employees
WHERE id = $1
`, pgUUID(id)))
}

func (r *PgEmployeeRepository) Create(ctx context.Context, entity *employee.Employee) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	created, err := scanEmployee(tx.QueryRow(ctx, `
INSERT INTO org_employees (id, first_name, last_name, email, supervisor_id, stage_id, unit_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+employeeColumns+`
`, pgUUID(entity.ID), entity.FirstName, entity.LastName, entity.Email,
		pgUUIDPtr(entity.SupervisorID), pgUUIDPtr(entity.StageID), pgUUIDPtr(entity.UnitID)))
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create employee")
	}
	return created, nil
}

func (r *PgEmployeeRepository) Update(ctx context.Context, entity *employee.Employee) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE org_employees
SET first_name = $2, last_name = $3, email = $4, supervisor_id = $5, unit_id = $6, updated_at = now()
WHERE id = $1
`, pgUUID(entity.ID), entity.FirstName, entity.LastName, entity.Email,
		pgUUIDPtr(entity.SupervisorID), pgUUIDPtr(entity.UnitID))
	if err != nil {
		return gerrors.Wrap(err, "failed to update employee")
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (r *PgEmployeeRepository) UpdateStage(ctx context.Context, id uuid.UUID, stageID *uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE org_employees
SET stage_id = $2, updated_at = now()
WHERE id = $1
`, pgUUID(id), pgUUIDPtr(stageID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (r *PgEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM org_employees WHERE id = $1`, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
