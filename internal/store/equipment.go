package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

const equipmentColumns = `equipment_id, name, type, model, manufacturer, material_of_construction,
	quantity, specifications_json, operating_conditions_json, utility_requirements_json`

// UpsertEquipment validates and writes an equipment item. The
// specifications' source_unit is indexed for UnitsForEquipment.
func (s *Store) UpsertEquipment(ctx context.Context, e model.Equipment) error {
	if err := e.Validate(); err != nil {
		return err
	}
	specs, err := marshalMap(e.Specifications)
	if err != nil {
		return fmt.Errorf("write equipment: %w", err)
	}
	conditions, err := marshalMap(e.OperatingConditions)
	if err != nil {
		return fmt.Errorf("write equipment: %w", err)
	}
	utilities, err := marshalMap(e.UtilityRequirements)
	if err != nil {
		return fmt.Errorf("write equipment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO equipment (`+equipmentColumns+`, source_unit, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(equipment_id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			model = excluded.model,
			manufacturer = excluded.manufacturer,
			material_of_construction = excluded.material_of_construction,
			quantity = excluded.quantity,
			specifications_json = excluded.specifications_json,
			operating_conditions_json = excluded.operating_conditions_json,
			utility_requirements_json = excluded.utility_requirements_json,
			source_unit = excluded.source_unit,
			modified_at = excluded.modified_at
	`,
		e.ID, e.Name, e.Type, e.Model, e.Manufacturer, e.MaterialOfConstruction,
		e.Quantity, specs, conditions, utilities, e.SourceUnit(), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("write equipment: %w", err)
	}
	return nil
}

// GetEquipment returns one equipment item or an error wrapping model.ErrNotFound.
func (s *Store) GetEquipment(ctx context.Context, id string) (model.Equipment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE equipment_id = ?`, id)
	e, err := scanEquipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Equipment{}, fmt.Errorf("equipment %q: %w", id, model.ErrNotFound)
	}
	return e, err
}

// ListEquipment returns every equipment item ordered by id.
func (s *Store) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+equipmentColumns+` FROM equipment
		ORDER BY equipment_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()

	items := []model.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment: %w", err)
	}
	return items, nil
}

// UnitsForEquipment returns the unit referenced by the equipment's
// source_unit specification, when that unit exists. Missing equipment or a
// dangling reference yields an empty slice.
func (s *Store) UnitsForEquipment(ctx context.Context, equipmentID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.unit_id FROM equipment e
		JOIN process_units u ON u.unit_id = e.source_unit
		WHERE e.equipment_id = ?
		ORDER BY u.unit_id COLLATE BINARY ASC
	`, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("query units for equipment: %w", err)
	}
	defer rows.Close()

	units := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unit id: %w", err)
		}
		units = append(units, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units for equipment: %w", err)
	}
	return units, nil
}

// DeleteEquipment removes an equipment item. Reports whether a row was removed.
func (s *Store) DeleteEquipment(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM equipment WHERE equipment_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete equipment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete equipment: %w", err)
	}
	return n > 0, nil
}

func scanEquipment(sc scanner) (model.Equipment, error) {
	var (
		e                            model.Equipment
		specs, conditions, utilities string
	)
	err := sc.Scan(
		&e.ID, &e.Name, &e.Type, &e.Model, &e.Manufacturer, &e.MaterialOfConstruction,
		&e.Quantity, &specs, &conditions, &utilities,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Equipment{}, err
		}
		return model.Equipment{}, fmt.Errorf("scan equipment: %w", err)
	}
	if err := unmarshalText(specs, &e.Specifications); err != nil {
		return model.Equipment{}, fmt.Errorf("equipment %q specifications: %w", e.ID, err)
	}
	if err := unmarshalText(conditions, &e.OperatingConditions); err != nil {
		return model.Equipment{}, fmt.Errorf("equipment %q operating conditions: %w", e.ID, err)
	}
	if err := unmarshalText(utilities, &e.UtilityRequirements); err != nil {
		return model.Equipment{}, fmt.Errorf("equipment %q utility requirements: %w", e.ID, err)
	}
	return e, nil
}
