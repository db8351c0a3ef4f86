package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

// StoreCalculation records a calculation snapshot. A zero CreatedAt is stamped with the
// current time.
func (r *PostgresRepo) StoreCalculation(ctx context.Context, calc models.Calculation) error {
	const op = "repo.StoreCalculation"
	if calc.ID == uuid.Nil {
		return utils.InvalidRequest(op, "calculation id is required")
	}
	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calculations (id, project_id, payload, result, created_at) VALUES ($1, $2, $3, $4, $5)`,
		calc.ID, calc.ProjectID, []byte(calc.Payload), []byte(calc.Result), calc.CreatedAt)
	if err != nil {
		return utils.NewAppError(op, "insert failed", err)
	}
	return nil
}

// ListCalculations returns the most recent snapshots of a project, newest first.
func (r *PostgresRepo) ListCalculations(ctx context.Context, projectID uuid.UUID, limit int) ([]models.Calculation, error) {
	const op = "repo.ListCalculations"
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, payload, result, created_at FROM calculations
		 WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer rows.Close()

	out := make([]models.Calculation, 0)
	for rows.Next() {
		var calc models.Calculation
		var payload, result []byte
		if err := rows.Scan(&calc.ID, &calc.ProjectID, &payload, &result, &calc.CreatedAt); err != nil {
			return nil, queryError(op, err)
		}
		calc.Payload = payload
		calc.Result = result
		out = append(out, calc)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(op, err)
	}
	return out, nil
}
