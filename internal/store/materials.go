package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

const materialColumns = `material_id, name, formula, cas_number, molar_mass, density, viscosity,
	specific_heat, thermal_conductivity, boiling_point, melting_point, safety_class,
	hazard_class, storage_conditions, quality_json, properties_json`

// UpsertMaterial validates and writes a material, replacing any existing
// record with the same id.
func (s *Store) UpsertMaterial(ctx context.Context, m model.Material) error {
	if err := m.Validate(); err != nil {
		return err
	}
	quality, err := marshalMap(m.Quality)
	if err != nil {
		return fmt.Errorf("write material: %w", err)
	}
	props, err := marshalMap(m.Properties)
	if err != nil {
		return fmt.Errorf("write material: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO materials (`+materialColumns+`, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(material_id) DO UPDATE SET
			name = excluded.name,
			formula = excluded.formula,
			cas_number = excluded.cas_number,
			molar_mass = excluded.molar_mass,
			density = excluded.density,
			viscosity = excluded.viscosity,
			specific_heat = excluded.specific_heat,
			thermal_conductivity = excluded.thermal_conductivity,
			boiling_point = excluded.boiling_point,
			melting_point = excluded.melting_point,
			safety_class = excluded.safety_class,
			hazard_class = excluded.hazard_class,
			storage_conditions = excluded.storage_conditions,
			quality_json = excluded.quality_json,
			properties_json = excluded.properties_json,
			modified_at = excluded.modified_at
	`,
		m.ID, m.Name, m.Formula, m.CASNumber, m.MolarMass, m.Density, m.Viscosity,
		m.SpecificHeat, m.ThermalConductivity, m.BoilingPoint, m.MeltingPoint, m.SafetyClass,
		m.HazardClass, m.StorageConditions, quality, props, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("write material: %w", err)
	}
	return nil
}

// GetMaterial returns one material or an error wrapping model.ErrNotFound.
func (s *Store) GetMaterial(ctx context.Context, id string) (model.Material, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM materials WHERE material_id = ?`, id)
	m, err := scanMaterial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Material{}, fmt.Errorf("material %q: %w", id, model.ErrNotFound)
	}
	return m, err
}

// ListMaterials returns every material ordered by id.
func (s *Store) ListMaterials(ctx context.Context) ([]model.Material, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+materialColumns+` FROM materials
		ORDER BY material_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := []model.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return materials, nil
}

// DeleteMaterial removes a material. Streams referencing it are left for
// the propagation engine to renormalize. Reports whether a row was removed.
func (s *Store) DeleteMaterial(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM materials WHERE material_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete material: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete material: %w", err)
	}
	return n > 0, nil
}

func scanMaterial(sc scanner) (model.Material, error) {
	var (
		m              model.Material
		quality, props string
	)
	err := sc.Scan(
		&m.ID, &m.Name, &m.Formula, &m.CASNumber, &m.MolarMass, &m.Density, &m.Viscosity,
		&m.SpecificHeat, &m.ThermalConductivity, &m.BoilingPoint, &m.MeltingPoint, &m.SafetyClass,
		&m.HazardClass, &m.StorageConditions, &quality, &props,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Material{}, err
		}
		return model.Material{}, fmt.Errorf("scan material: %w", err)
	}
	if err := unmarshalText(quality, &m.Quality); err != nil {
		return model.Material{}, fmt.Errorf("material %q quality: %w", m.ID, err)
	}
	if err := unmarshalText(props, &m.Properties); err != nil {
		return model.Material{}, fmt.Errorf("material %q properties: %w", m.ID, err)
	}
	return m, nil
}
