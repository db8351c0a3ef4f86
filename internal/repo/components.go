package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/cache"
	"github.com/miradorstack/mirador-fmeda/internal/models"
)

const componentColumns = `id, project_id, manufacturer_part_number, manufacturer, reference_designator,
	family, component_type, quantity, base_fit, quality_factor, resistor_type,
	variant_id, mission_profile_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComponent(row rowScanner) (models.Component, error) {
	var (
		c                                      models.Component
		manufacturer, refDes, family, resistor sql.NullString
		baseFIT, quality                       sql.NullFloat64
		variantID, profileID                   uuid.NullUUID
	)
	err := row.Scan(&c.ID, &c.ProjectID, &c.ManufacturerPartNumber, &manufacturer, &refDes,
		&family, &c.Type, &c.Quantity, &baseFIT, &quality, &resistor,
		&variantID, &profileID, &c.CreatedAt)
	if err != nil {
		return models.Component{}, err
	}
	c.Manufacturer = manufacturer.String
	c.ReferenceDesignator = refDes.String
	c.Family = family.String
	c.ResistorType = resistor.String
	c.BaseFIT = floatPtr(baseFIT)
	c.QualityFactor = floatPtr(quality)
	c.VariantID = uuidPtr(variantID)
	c.MissionProfileID = uuidPtr(profileID)
	return c, nil
}

// ListProjectComponents returns the BOM of a project in insertion order.
func (r *PostgresRepo) ListProjectComponents(ctx context.Context, projectID uuid.UUID) ([]models.Component, error) {
	const op = "repo.ListProjectComponents"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+componentColumns+` FROM components WHERE project_id = $1 ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer rows.Close()

	components := make([]models.Component, 0)
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, queryError(op, err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(op, err)
	}
	return components, nil
}

// GetComponent loads one component.
func (r *PostgresRepo) GetComponent(ctx context.Context, id uuid.UUID) (models.Component, error) {
	const op = "repo.GetComponent"
	row := r.db.QueryRowContext(ctx, `SELECT `+componentColumns+` FROM components WHERE id = $1`, id)
	c, err := scanComponent(row)
	if err != nil {
		return models.Component{}, notFoundOr(op, "component", id, err)
	}
	return c, nil
}

// GetVariant loads a component variant, through the record cache.
func (r *PostgresRepo) GetVariant(ctx context.Context, id uuid.UUID) (models.ComponentVariant, error) {
	const op = "repo.GetVariant"
	key := cache.Key("variant", id.String())
	var v models.ComponentVariant
	if r.cached(ctx, key, &v) {
		return v, nil
	}

	var refTemp sql.NullFloat64
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, subtype_id, name, ref_fit, ref_temp, notes, created_at FROM component_variants WHERE id = $1`, id).
		Scan(&v.ID, &v.SubtypeID, &v.Name, &v.RefFIT, &refTemp, &notes, &v.CreatedAt)
	if err != nil {
		return models.ComponentVariant{}, notFoundOr(op, "variant", id, err)
	}
	v.RefTemp = floatPtr(refTemp)
	v.Notes = notes.String
	r.remember(ctx, key, v)
	return v, nil
}

// GetMissionProfile loads a mission profile, through the record cache. Segments come from
// the temp_tau_profile JSON array; entries missing a numeric temp or tau are skipped.
func (r *PostgresRepo) GetMissionProfile(ctx context.Context, id uuid.UUID) (models.MissionProfile, error) {
	const op = "repo.GetMissionProfile"
	key := cache.Key("profile", id.String())
	var p models.MissionProfile
	if r.cached(ctx, key, &p) {
		return p, nil
	}

	var (
		description sql.NullString
		raw         []byte
		env, stress sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, temp_tau_profile, environment_factor, stress_factor, created_at
		 FROM mission_profiles WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &description, &raw, &env, &stress, &p.CreatedAt)
	if err != nil {
		return models.MissionProfile{}, notFoundOr(op, "mission profile", id, err)
	}
	p.Description = description.String
	p.EnvironmentFactor = floatPtr(env)
	p.StressFactor = floatPtr(stress)
	p.Segments = decodeSegments(raw)
	r.remember(ctx, key, p)
	return p, nil
}

func decodeSegments(raw []byte) []models.ProfileSegment {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []models.ProfileSegment{}
	}
	segments := make([]models.ProfileSegment, 0, len(items))
	for _, item := range items {
		var seg struct {
			Temp *float64 `json:"temp"`
			Tau  *float64 `json:"tau"`
		}
		if err := json.Unmarshal(item, &seg); err != nil || seg.Temp == nil || seg.Tau == nil {
			continue
		}
		segments = append(segments, models.ProfileSegment{Temp: *seg.Temp, Weight: *seg.Tau})
	}
	return segments
}
