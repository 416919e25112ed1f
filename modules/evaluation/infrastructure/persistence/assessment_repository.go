package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/evaldesk/evaldesk/modules/evaluation/domain/aggregates/assessment"
	"github.com/evaldesk/evaldesk/pkg/composables"
)

type PgAssessmentRepository struct{}

func NewAssessmentRepository() assessment.Repository {
	return &PgAssessmentRepository{}
}

const assessmentColumns = `id, period_id, employee_id, status, overall_comment, reviewer_id, review_comment, submitted_at, reviewed_at, created_at, updated_at`

func scanAssessment(row pgx.Row) (*assessment.Assessment, error) {
	var a assessment.Assessment
	var reviewerID pgtype.UUID
	var submittedAt, reviewedAt pgtype.Timestamptz
	err := row.Scan(
		&a.ID, &a.PeriodID, &a.EmployeeID, &a.Status, &a.OverallComment,
		&reviewerID, &a.ReviewComment, &submittedAt, &reviewedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assessment.ErrNotFound
		}
		return nil, err
	}
	a.ReviewerID = asUUIDPtr(reviewerID)
	a.SubmittedAt = asTimePtr(submittedAt)
	a.ReviewedAt = asTimePtr(reviewedAt)
	return &a, nil
}

func (r *PgAssessmentRepository) loadRatings(ctx context.Context, tx pgx.Tx, entity *assessment.Assessment) error {
	rows, err := tx.Query(ctx, `
SELECT goal_id, score, comment
FROM assessment_ratings
WHERE assessment_id = $1
ORDER BY created_at ASC, goal_id ASC
`, pgUUID(entity.ID))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rating assessment.Rating
		if err := rows.Scan(&rating.GoalID, &rating.Score, &rating.Comment); err != nil {
			return err
		}
		entity.Ratings = append(entity.Ratings, rating)
	}
	return rows.Err()
}

func (r *PgAssessmentRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgAssessmentRepository) GetPaginated(ctx context.Context, params *assessment.FindParams) ([]assessment.Assessment, error) {
	if params == nil {
		params = &assessment.FindParams{}
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
SELECT `+assessmentColumns+`
FROM assessments
WHERE ($1::uuid IS NULL OR period_id = $1)
	AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
ORDER BY created_at ASC, id ASC
LIMIT $3 OFFSET $4
`, nullableUUID(params.PeriodID), statuses, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]assessment.Assessment, 0, 16)
	for rows.Next() {
		var a assessment.Assessment
		var reviewerID pgtype.UUID
		var submittedAt, reviewedAt pgtype.Timestamptz
		if err := rows.Scan(
			&a.ID, &a.PeriodID, &a.EmployeeID, &a.Status, &a.OverallComment,
			&reviewerID, &a.ReviewComment, &submittedAt, &reviewedAt,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		a.ReviewerID = asUUIDPtr(reviewerID)
		a.SubmittedAt = asTimePtr(submittedAt)
		a.ReviewedAt = asTimePtr(reviewedAt)
		out = append(out, a)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range out {
		if err := r.loadRatings(ctx, tx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PgAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*assessment.Assessment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	entity, err := scanAssessment(tx.QueryRow(ctx, `
SELECT `+assessmentColumns+`
FROM assessments
WHERE id = $1
`, pgUUID(id)))
	if err != nil {
		return nil, err
	}
	if err := r.loadRatings(ctx, tx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *PgAssessmentRepository) GetForEmployee(ctx context.Context, periodID, employeeID uuid.UUID) (*assessment.Assessment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	entity, err := scanAssessment(tx.QueryRow(ctx, `
SELECT `+assessmentColumns+`
FROM assessments
WHERE period_id = $1 AND employee_id = $2
`, pgUUID(periodID), pgUUID(employeeID)))
	if err != nil {
		return nil, err
	}
	if err := r.loadRatings(ctx, tx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *PgAssessmentRepository) Create(ctx context.Context, entity *assessment.Assessment) (*assessment.Assessment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	created, err := scanAssessment(tx.QueryRow(ctx, `
INSERT INTO assessments (id, period_id, employee_id, status, overall_comment)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+assessmentColumns+`
`, pgUUID(entity.ID), pgUUID(entity.PeriodID), pgUUID(entity.EmployeeID),
		string(entity.Status), entity.OverallComment))
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create assessment")
	}
	return created, nil
}

// Update replaces the row and its ratings atomically, then reloads the
// stored aggregate so callers commit only round-tripped data.
func (r *PgAssessmentRepository) Update(ctx context.Context, entity *assessment.Assessment) (*assessment.Assessment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx, `
UPDATE assessments
SET status = $2, overall_comment = $3, reviewer_id = $4, review_comment = $5,
	submitted_at = $6, reviewed_at = $7, updated_at = now()
WHERE id = $1
`, pgUUID(entity.ID), string(entity.Status), entity.OverallComment,
		pgUUIDPtr(entity.ReviewerID), entity.ReviewComment, entity.SubmittedAt, entity.ReviewedAt)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to update assessment")
	}
	if tag.RowsAffected() == 0 {
		return nil, assessment.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM assessment_ratings WHERE assessment_id = $1`, pgUUID(entity.ID)); err != nil {
		return nil, err
	}
	for _, rating := range entity.Ratings {
		if _, err := tx.Exec(ctx, `
INSERT INTO assessment_ratings (assessment_id, goal_id, score, comment)
VALUES ($1, $2, $3, $4)
`, pgUUID(entity.ID), pgUUID(rating.GoalID), rating.Score, rating.Comment); err != nil {
			return nil, gerrors.Wrap(err, "failed to store rating")
		}
	}

	return r.GetByID(ctx, entity.ID)
}

func (r *PgAssessmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status assessment.Status) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE assessments
SET status = $2, updated_at = now()
WHERE id = $1
`, pgUUID(id), string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return assessment.ErrNotFound
	}
	return nil
}
