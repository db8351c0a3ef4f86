package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

// Seed is a project with everything its calculations read.
type Seed struct {
	ProjectID    uuid.UUID
	Name         string
	Profiles     []models.MissionProfile
	Variants     []models.ComponentVariant
	Components   []models.Component
	FailureModes []models.FailureMode
}

// SeedProject writes seed in one transaction. Rows whose ids already exist are kept.
func (r *PostgresRepo) SeedProject(ctx context.Context, seed Seed) (err error) {
	const op = "repo.SeedProject"
	if seed.ProjectID == uuid.Nil {
		return utils.InvalidRequest(op, "project id is required")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return queryError(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		seed.ProjectID, seed.Name); err != nil {
		return utils.NewAppError(op, "insert project", err)
	}
	for _, p := range seed.Profiles {
		if err = insertProfile(ctx, tx, p); err != nil {
			return utils.NewAppError(op, "insert mission profile", err)
		}
	}
	for _, v := range seed.Variants {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO component_variants (id, subtype_id, name, ref_fit, ref_temp, notes)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			v.ID, v.SubtypeID, v.Name, v.RefFIT, nullFloat(v.RefTemp), nullString(v.Notes)); err != nil {
			return utils.NewAppError(op, "insert variant", err)
		}
	}
	for _, c := range seed.Components {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO components (id, project_id, manufacturer_part_number, manufacturer, reference_designator,
				family, component_type, quantity, base_fit, quality_factor, resistor_type, variant_id, mission_profile_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) ON CONFLICT (id) DO NOTHING`,
			c.ID, seed.ProjectID, c.ManufacturerPartNumber, nullString(c.Manufacturer), nullString(c.ReferenceDesignator),
			nullString(c.Family), c.Type, c.Quantity, nullFloat(c.BaseFIT), nullFloat(c.QualityFactor), nullString(c.ResistorType),
			nullUUID(c.VariantID), nullUUID(c.MissionProfileID)); err != nil {
			return utils.NewAppError(op, fmt.Sprintf("insert component %s", c.ManufacturerPartNumber), err)
		}
	}
	for _, m := range seed.FailureModes {
		id := m.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO failure_modes (id, mpn, family, mode, lambda, detection_coverage)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
			id, nullString(m.MPN), nullString(m.Family), m.Mode, m.Lambda, nullFloat(m.DetectionCoverage)); err != nil {
			return utils.NewAppError(op, "insert failure mode", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return queryError(op, err)
	}
	return nil
}

func insertProfile(ctx context.Context, tx *sql.Tx, p models.MissionProfile) error {
	segments := p.Segments
	if segments == nil {
		segments = []models.ProfileSegment{}
	}
	raw, err := json.Marshal(segments)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO mission_profiles (id, name, description, temp_tau_profile, environment_factor, stress_factor)
		 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, nullString(p.Description), raw, nullFloat(p.EnvironmentFactor), nullFloat(p.StressFactor))
	return err
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
