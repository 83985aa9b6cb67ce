package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

const unitColumns = `unit_id, name, type, description, pos_x, pos_y, parameters_json`

// UpsertUnit validates and writes a process unit.
func (s *Store) UpsertUnit(ctx context.Context, u model.ProcessUnit) error {
	if err := u.Validate(); err != nil {
		return err
	}
	params, err := marshalMap(u.Parameters)
	if err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	if u.Type == "" {
		u.Type = model.UnitOther
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO process_units (`+unitColumns+`, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(unit_id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			pos_x = excluded.pos_x,
			pos_y = excluded.pos_y,
			parameters_json = excluded.parameters_json,
			modified_at = excluded.modified_at
	`,
		u.ID, u.Name, string(u.Type), u.Description, u.Position.X, u.Position.Y, params, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	return nil
}

// GetUnit returns one process unit or an error wrapping model.ErrNotFound.
func (s *Store) GetUnit(ctx context.Context, id string) (model.ProcessUnit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM process_units WHERE unit_id = ?`, id)
	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProcessUnit{}, fmt.Errorf("unit %q: %w", id, model.ErrNotFound)
	}
	return u, err
}

// ListUnits returns every process unit ordered by id.
func (s *Store) ListUnits(ctx context.Context) ([]model.ProcessUnit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+unitColumns+` FROM process_units
		ORDER BY unit_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	units := []model.ProcessUnit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}

// DeleteUnit removes a process unit. Its balance records are removed by the
// foreign key cascade; derived equipment is left to the caller.
func (s *Store) DeleteUnit(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM process_units WHERE unit_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete unit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete unit: %w", err)
	}
	return n > 0, nil
}

func scanUnit(sc scanner) (model.ProcessUnit, error) {
	var (
		u      model.ProcessUnit
		typ    string
		params string
	)
	err := sc.Scan(&u.ID, &u.Name, &typ, &u.Description, &u.Position.X, &u.Position.Y, &params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ProcessUnit{}, err
		}
		return model.ProcessUnit{}, fmt.Errorf("scan unit: %w", err)
	}
	u.Type = model.UnitType(typ)
	if err := unmarshalText(params, &u.Parameters); err != nil {
		return model.ProcessUnit{}, fmt.Errorf("unit %q parameters: %w", u.ID, err)
	}
	return u, nil
}
