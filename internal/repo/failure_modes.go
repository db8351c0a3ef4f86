package repo

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

const failureModeColumns = `id, mpn, family, mode, lambda, detection_coverage, created_at`

func scanFailureModes(rows *sql.Rows) ([]models.FailureMode, error) {
	defer rows.Close()
	modes := make([]models.FailureMode, 0)
	for rows.Next() {
		var (
			m           models.FailureMode
			mpn, family sql.NullString
			coverage    sql.NullFloat64
		)
		if err := rows.Scan(&m.ID, &mpn, &family, &m.Mode, &m.Lambda, &coverage, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.MPN = mpn.String
		m.Family = family.String
		m.DetectionCoverage = floatPtr(coverage)
		modes = append(modes, m)
	}
	return modes, rows.Err()
}

// FailureModesByMPN returns the catalog entries recorded for an exact part number.
func (r *PostgresRepo) FailureModesByMPN(ctx context.Context, mpn string) ([]models.FailureMode, error) {
	const op = "repo.FailureModesByMPN"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+failureModeColumns+` FROM failure_modes WHERE mpn = $1 ORDER BY created_at, id`, mpn)
	if err != nil {
		return nil, queryError(op, err)
	}
	modes, err := scanFailureModes(rows)
	if err != nil {
		return nil, queryError(op, err)
	}
	return modes, nil
}

// FailureModesByFamily returns family-level catalog entries. An empty family matches any
// family-tagged entry; limit <= 0 means no limit.
func (r *PostgresRepo) FailureModesByFamily(ctx context.Context, family string, limit int) ([]models.FailureMode, error) {
	const op = "repo.FailureModesByFamily"
	query := `SELECT ` + failureModeColumns + ` FROM failure_modes WHERE `
	args := make([]any, 0, 2)
	if family == "" {
		query += `family IS NOT NULL`
	} else {
		query += `lower(family) = lower($1)`
		args = append(args, family)
	}
	query += ` ORDER BY created_at, id`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(op, err)
	}
	modes, err := scanFailureModes(rows)
	if err != nil {
		return nil, queryError(op, err)
	}
	return modes, nil
}

// CreateFailureMode inserts a catalog entry and returns it with its generated id and
// creation time.
func (r *PostgresRepo) CreateFailureMode(ctx context.Context, m models.FailureMode) (models.FailureMode, error) {
	const op = "repo.CreateFailureMode"
	if m.MPN == "" && m.Family == "" {
		return models.FailureMode{}, utils.InvalidRequest(op, "failure mode needs an mpn or a family")
	}
	var (
		id      uuid.UUID
		created time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO failure_modes (mpn, family, mode, lambda, detection_coverage)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		nullString(m.MPN), nullString(m.Family), m.Mode, m.Lambda, nullFloat(m.DetectionCoverage)).Scan(&id, &created)
	if err != nil {
		return models.FailureMode{}, utils.NewAppError(op, "insert failed", err)
	}
	m.ID = id
	m.CreatedAt = created
	return m, nil
}
