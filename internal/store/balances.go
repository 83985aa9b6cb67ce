package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// exists reports whether a balance row for unitID is present in table.
func exists(ctx context.Context, tx *sql.Tx, table, unitID string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE unit_id = ?`, unitID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query %s: %w", table, err)
	}
	return true, nil
}

// UpsertMaterialBalance writes a unit's mass balance record. The row is
// looked up first and then updated in place or inserted, so created_at
// survives recalculation.
func (s *Store) UpsertMaterialBalance(ctx context.Context, b model.MaterialBalance) error {
	inputs, err := marshalSlice(b.InputStreams)
	if err != nil {
		return fmt.Errorf("write material balance: %w", err)
	}
	outputs, err := marshalSlice(b.OutputStreams)
	if err != nil {
		return fmt.Errorf("write material balance: %w", err)
	}
	var data sql.NullString
	if b.Result != nil {
		text, err := marshalMap(b.Result)
		if err != nil {
			return fmt.Errorf("write material balance: %w", err)
		}
		data = sql.NullString{String: text, Valid: true}
	}
	if b.Status == "" {
		b.Status = model.StatusPending
	}
	if b.Tolerance <= 0 {
		b.Tolerance = model.DefaultMassTolerance
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write material balance: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, "material_balances", b.UnitID)
	if err != nil {
		return fmt.Errorf("write material balance: %w", err)
	}
	now := s.timestamp()
	if found {
		_, err = tx.ExecContext(ctx, `
			UPDATE material_balances
			SET input_streams_json = ?, output_streams_json = ?, balance_status = ?,
				tolerance = ?, calculated_data_json = ?, modified_at = ?
			WHERE unit_id = ?
		`, inputs, outputs, string(b.Status), b.Tolerance, data, now, b.UnitID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO material_balances
			(unit_id, input_streams_json, output_streams_json, balance_status, tolerance,
			 calculated_data_json, created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, b.UnitID, inputs, outputs, string(b.Status), b.Tolerance, data, now, now)
	}
	if err != nil {
		return fmt.Errorf("write material balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write material balance: commit: %w", err)
	}
	return nil
}

// EnsureMaterialBalance returns the unit's mass balance record, creating a
// pending one when none exists.
func (s *Store) EnsureMaterialBalance(ctx context.Context, unitID string) (model.MaterialBalance, error) {
	b, err := s.GetMaterialBalance(ctx, unitID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.MaterialBalance{}, err
	}
	b = model.NewMaterialBalance(unitID)
	if err := s.UpsertMaterialBalance(ctx, b); err != nil {
		return model.MaterialBalance{}, err
	}
	return b, nil
}

const materialBalanceColumns = `unit_id, input_streams_json, output_streams_json, balance_status,
	tolerance, calculated_data_json`

// GetMaterialBalance returns a unit's mass balance record or an error
// wrapping model.ErrNotFound.
func (s *Store) GetMaterialBalance(ctx context.Context, unitID string) (model.MaterialBalance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+materialBalanceColumns+` FROM material_balances WHERE unit_id = ?
	`, unitID)
	b, err := scanMaterialBalance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MaterialBalance{}, fmt.Errorf("material balance %q: %w", unitID, model.ErrNotFound)
	}
	return b, err
}

// ListMaterialBalances returns every mass balance record ordered by unit id.
func (s *Store) ListMaterialBalances(ctx context.Context) ([]model.MaterialBalance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+materialBalanceColumns+` FROM material_balances
		ORDER BY unit_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query material balances: %w", err)
	}
	defer rows.Close()

	balances := []model.MaterialBalance{}
	for rows.Next() {
		b, err := scanMaterialBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate material balances: %w", err)
	}
	return balances, nil
}

// MarkMaterialBalancesForRecalculation sets needs_recalculation on every
// mass balance whose stored result mentions materialID and returns the
// affected unit ids.
func (s *Store) MarkMaterialBalancesForRecalculation(ctx context.Context, materialID string) ([]string, error) {
	balances, err := s.ListMaterialBalances(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mark material balances: %w", err)
	}
	defer tx.Rollback()

	now := s.timestamp()
	marked := []string{}
	for _, b := range balances {
		if !b.References(materialID) {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE material_balances SET balance_status = ?, modified_at = ? WHERE unit_id = ?
		`, string(model.StatusNeedsRecalculation), now, b.UnitID)
		if err != nil {
			return nil, fmt.Errorf("mark material balances: %w", err)
		}
		marked = append(marked, b.UnitID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("mark material balances: commit: %w", err)
	}
	return marked, nil
}

func scanMaterialBalance(sc scanner) (model.MaterialBalance, error) {
	var (
		b               model.MaterialBalance
		inputs, outputs string
		status          string
		data            sql.NullString
	)
	err := sc.Scan(&b.UnitID, &inputs, &outputs, &status, &b.Tolerance, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MaterialBalance{}, err
		}
		return model.MaterialBalance{}, fmt.Errorf("scan material balance: %w", err)
	}
	b.Status = model.Status(status)
	b.InputStreams = []string{}
	b.OutputStreams = []string{}
	if err := unmarshalText(inputs, &b.InputStreams); err != nil {
		return model.MaterialBalance{}, fmt.Errorf("material balance %q inputs: %w", b.UnitID, err)
	}
	if err := unmarshalText(outputs, &b.OutputStreams); err != nil {
		return model.MaterialBalance{}, fmt.Errorf("material balance %q outputs: %w", b.UnitID, err)
	}
	b.Result, err = nullableText[model.MassResult](data)
	if err != nil {
		return model.MaterialBalance{}, fmt.Errorf("material balance %q data: %w", b.UnitID, err)
	}
	return b, nil
}

// UpsertHeatBalance writes a unit's heat balance record using the same
// query-then-insert-or-update pattern as UpsertMaterialBalance.
func (s *Store) UpsertHeatBalance(ctx context.Context, b model.HeatBalance) error {
	input, err := marshalMap(b.InputHeat)
	if err != nil {
		return fmt.Errorf("write heat balance: %w", err)
	}
	output, err := marshalMap(b.OutputHeat)
	if err != nil {
		return fmt.Errorf("write heat balance: %w", err)
	}
	utilities, err := marshalMap(b.UtilityRequirements)
	if err != nil {
		return fmt.Errorf("write heat balance: %w", err)
	}
	var data sql.NullString
	if b.Result != nil {
		text, err := marshalMap(b.Result)
		if err != nil {
			return fmt.Errorf("write heat balance: %w", err)
		}
		data = sql.NullString{String: text, Valid: true}
	}
	if b.Status == "" {
		b.Status = model.StatusPending
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write heat balance: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, "heat_balances", b.UnitID)
	if err != nil {
		return fmt.Errorf("write heat balance: %w", err)
	}
	now := s.timestamp()
	if found {
		_, err = tx.ExecContext(ctx, `
			UPDATE heat_balances
			SET input_heat_json = ?, output_heat_json = ?, heat_loss = ?, efficiency = ?,
				utility_requirements_json = ?, calculated_data_json = ?, balance_status = ?,
				modified_at = ?
			WHERE unit_id = ?
		`, input, output, b.HeatLoss, nullFloat(b.Efficiency), utilities, data, string(b.Status), now, b.UnitID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO heat_balances
			(unit_id, input_heat_json, output_heat_json, heat_loss, efficiency,
			 utility_requirements_json, calculated_data_json, balance_status, created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, b.UnitID, input, output, b.HeatLoss, nullFloat(b.Efficiency), utilities, data, string(b.Status), now, now)
	}
	if err != nil {
		return fmt.Errorf("write heat balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write heat balance: commit: %w", err)
	}
	return nil
}

const heatBalanceColumns = `unit_id, input_heat_json, output_heat_json, heat_loss, efficiency,
	utility_requirements_json, balance_status, calculated_data_json`

// GetHeatBalance returns a unit's heat balance record or an error wrapping
// model.ErrNotFound.
func (s *Store) GetHeatBalance(ctx context.Context, unitID string) (model.HeatBalance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+heatBalanceColumns+` FROM heat_balances WHERE unit_id = ?
	`, unitID)
	b, err := scanHeatBalance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.HeatBalance{}, fmt.Errorf("heat balance %q: %w", unitID, model.ErrNotFound)
	}
	return b, err
}

// ListHeatBalances returns every heat balance record ordered by unit id.
func (s *Store) ListHeatBalances(ctx context.Context) ([]model.HeatBalance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+heatBalanceColumns+` FROM heat_balances
		ORDER BY unit_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query heat balances: %w", err)
	}
	defer rows.Close()

	balances := []model.HeatBalance{}
	for rows.Next() {
		b, err := scanHeatBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate heat balances: %w", err)
	}
	return balances, nil
}

func scanHeatBalance(sc scanner) (model.HeatBalance, error) {
	var (
		b                        model.HeatBalance
		input, output, utilities string
		status                   string
		efficiency               sql.NullFloat64
		data                     sql.NullString
	)
	err := sc.Scan(&b.UnitID, &input, &output, &b.HeatLoss, &efficiency, &utilities, &status, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.HeatBalance{}, err
		}
		return model.HeatBalance{}, fmt.Errorf("scan heat balance: %w", err)
	}
	b.Status = model.Status(status)
	b.Efficiency = floatPtr(efficiency)
	if err := unmarshalText(input, &b.InputHeat); err != nil {
		return model.HeatBalance{}, fmt.Errorf("heat balance %q input: %w", b.UnitID, err)
	}
	if err := unmarshalText(output, &b.OutputHeat); err != nil {
		return model.HeatBalance{}, fmt.Errorf("heat balance %q output: %w", b.UnitID, err)
	}
	if err := unmarshalText(utilities, &b.UtilityRequirements); err != nil {
		return model.HeatBalance{}, fmt.Errorf("heat balance %q utilities: %w", b.UnitID, err)
	}
	b.Result, err = nullableText[model.HeatResult](data)
	if err != nil {
		return model.HeatBalance{}, fmt.Errorf("heat balance %q data: %w", b.UnitID, err)
	}
	return b, nil
}

// UpsertWaterBalance writes a unit's water balance record using the same
// query-then-insert-or-update pattern as UpsertMaterialBalance.
func (s *Store) UpsertWaterBalance(ctx context.Context, b model.WaterBalance) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write water balance: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, "water_balances", b.UnitID)
	if err != nil {
		return fmt.Errorf("write water balance: %w", err)
	}
	now := s.timestamp()
	if found {
		_, err = tx.ExecContext(ctx, `
			UPDATE water_balances
			SET fresh_water_in = ?, recycled_water_in = ?, water_consumption = ?,
				wastewater_out = ?, reuse_possibilities = ?, modified_at = ?
			WHERE unit_id = ?
		`, b.FreshWaterIn, b.RecycledWaterIn, b.WaterConsumption, b.WastewaterOut, b.ReuseNote, now, b.UnitID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO water_balances
			(unit_id, fresh_water_in, recycled_water_in, water_consumption, wastewater_out,
			 reuse_possibilities, created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, b.UnitID, b.FreshWaterIn, b.RecycledWaterIn, b.WaterConsumption, b.WastewaterOut, b.ReuseNote, now, now)
	}
	if err != nil {
		return fmt.Errorf("write water balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write water balance: commit: %w", err)
	}
	return nil
}

const waterBalanceColumns = `unit_id, fresh_water_in, recycled_water_in, water_consumption,
	wastewater_out, reuse_possibilities`

// GetWaterBalance returns a unit's water balance record or an error
// wrapping model.ErrNotFound.
func (s *Store) GetWaterBalance(ctx context.Context, unitID string) (model.WaterBalance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+waterBalanceColumns+` FROM water_balances WHERE unit_id = ?
	`, unitID)
	b, err := scanWaterBalance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WaterBalance{}, fmt.Errorf("water balance %q: %w", unitID, model.ErrNotFound)
	}
	return b, err
}

// ListWaterBalances returns every water balance record ordered by unit id.
func (s *Store) ListWaterBalances(ctx context.Context) ([]model.WaterBalance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+waterBalanceColumns+` FROM water_balances
		ORDER BY unit_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query water balances: %w", err)
	}
	defer rows.Close()

	balances := []model.WaterBalance{}
	for rows.Next() {
		b, err := scanWaterBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate water balances: %w", err)
	}
	return balances, nil
}

func scanWaterBalance(sc scanner) (model.WaterBalance, error) {
	var b model.WaterBalance
	err := sc.Scan(&b.UnitID, &b.FreshWaterIn, &b.RecycledWaterIn, &b.WaterConsumption, &b.WastewaterOut, &b.ReuseNote)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.WaterBalance{}, err
		}
		return model.WaterBalance{}, fmt.Errorf("scan water balance: %w", err)
	}
	return b, nil
}

// DeleteBalancesForUnit removes all three balance records of a unit.
// Deleting the unit itself does the same through the foreign key cascade;
// this is for callers that keep the unit.
func (s *Store) DeleteBalancesForUnit(ctx context.Context, unitID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete balances: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"material_balances", "heat_balances", "water_balances"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE unit_id = ?`, unitID); err != nil {
			return fmt.Errorf("delete balances from %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete balances: commit: %w", err)
	}
	return nil
}
