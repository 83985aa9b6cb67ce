package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// UpsertHeatStream validates and writes a network heat stream.
func (s *Store) UpsertHeatStream(ctx context.Context, h model.HeatStream) error {
	if err := h.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO heat_streams (stream_id, name, temperature_in, temperature_out, flow_rate, heat_capacity)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(stream_id) DO UPDATE SET
			name = excluded.name,
			temperature_in = excluded.temperature_in,
			temperature_out = excluded.temperature_out,
			flow_rate = excluded.flow_rate,
			heat_capacity = excluded.heat_capacity
	`, h.ID, h.Name, h.TemperatureIn, h.TemperatureOut, h.FlowRate, h.HeatCapacity)
	if err != nil {
		return fmt.Errorf("write heat stream: %w", err)
	}
	return nil
}

// ListHeatStreams returns every network heat stream ordered by id.
func (s *Store) ListHeatStreams(ctx context.Context) ([]model.HeatStream, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_id, name, temperature_in, temperature_out, flow_rate, heat_capacity
		FROM heat_streams
		ORDER BY stream_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query heat streams: %w", err)
	}
	defer rows.Close()

	streams := []model.HeatStream{}
	for rows.Next() {
		var h model.HeatStream
		if err := rows.Scan(&h.ID, &h.Name, &h.TemperatureIn, &h.TemperatureOut, &h.FlowRate, &h.HeatCapacity); err != nil {
			return nil, fmt.Errorf("scan heat stream: %w", err)
		}
		streams = append(streams, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate heat streams: %w", err)
	}
	return streams, nil
}

// DeleteHeatStream removes a heat stream and, through the cascade, every
// exchanger that references it.
func (s *Store) DeleteHeatStream(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, "heat_streams", "stream_id", id)
}

// UpsertHeatExchanger validates and writes an exchanger. Both streams must
// already exist.
func (s *Store) UpsertHeatExchanger(ctx context.Context, x model.HeatExchanger) error {
	if err := x.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO heat_exchangers
		(exchanger_id, name, type, hot_stream, cold_stream, u_value, area, fouling_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(exchanger_id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			hot_stream = excluded.hot_stream,
			cold_stream = excluded.cold_stream,
			u_value = excluded.u_value,
			area = excluded.area,
			fouling_factor = excluded.fouling_factor
	`, x.ID, x.Name, string(x.Type), x.HotStream, x.ColdStream, x.UValue, x.Area, x.Fouling())
	if err != nil {
		return fmt.Errorf("write heat exchanger: %w", err)
	}
	return nil
}

// ListHeatExchangers returns every exchanger ordered by id.
func (s *Store) ListHeatExchangers(ctx context.Context) ([]model.HeatExchanger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT exchanger_id, name, type, hot_stream, cold_stream, u_value, area, fouling_factor
		FROM heat_exchangers
		ORDER BY exchanger_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query heat exchangers: %w", err)
	}
	defer rows.Close()

	exchangers := []model.HeatExchanger{}
	for rows.Next() {
		var (
			x   model.HeatExchanger
			typ string
		)
		if err := rows.Scan(&x.ID, &x.Name, &typ, &x.HotStream, &x.ColdStream, &x.UValue, &x.Area, &x.FoulingFactor); err != nil {
			return nil, fmt.Errorf("scan heat exchanger: %w", err)
		}
		x.Type = model.ExchangerType(typ)
		exchangers = append(exchangers, x)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate heat exchangers: %w", err)
	}
	return exchangers, nil
}

// DeleteHeatExchanger removes an exchanger.
func (s *Store) DeleteHeatExchanger(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, "heat_exchangers", "exchanger_id", id)
}

// UpsertWaterStream validates and writes a network water stream.
func (s *Store) UpsertWaterStream(ctx context.Context, w model.WaterStream) error {
	if err := w.Validate(); err != nil {
		return err
	}
	quality, err := marshalMap(w.Quality)
	if err != nil {
		return fmt.Errorf("write water stream: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO water_streams (stream_id, name, source_type, flow_rate, temperature, pressure, quality_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stream_id) DO UPDATE SET
			name = excluded.name,
			source_type = excluded.source_type,
			flow_rate = excluded.flow_rate,
			temperature = excluded.temperature,
			pressure = excluded.pressure,
			quality_json = excluded.quality_json
	`, w.ID, w.Name, string(w.Source), w.FlowRate, w.Temperature, w.Pressure, quality)
	if err != nil {
		return fmt.Errorf("write water stream: %w", err)
	}
	return nil
}

// GetWaterStream returns one water stream or an error wrapping model.ErrNotFound.
func (s *Store) GetWaterStream(ctx context.Context, id string) (model.WaterStream, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT stream_id, name, source_type, flow_rate, temperature, pressure, quality_json
		FROM water_streams WHERE stream_id = ?
	`, id)
	w, err := scanWaterStream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WaterStream{}, fmt.Errorf("water stream %q: %w", id, model.ErrNotFound)
	}
	return w, err
}

// ListWaterStreams returns every network water stream ordered by id.
func (s *Store) ListWaterStreams(ctx context.Context) ([]model.WaterStream, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_id, name, source_type, flow_rate, temperature, pressure, quality_json
		FROM water_streams
		ORDER BY stream_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query water streams: %w", err)
	}
	defer rows.Close()

	streams := []model.WaterStream{}
	for rows.Next() {
		w, err := scanWaterStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate water streams: %w", err)
	}
	return streams, nil
}

// DeleteWaterStream removes a water stream.
func (s *Store) DeleteWaterStream(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, "water_streams", "stream_id", id)
}

func scanWaterStream(sc scanner) (model.WaterStream, error) {
	var (
		w       model.WaterStream
		source  string
		quality string
	)
	err := sc.Scan(&w.ID, &w.Name, &source, &w.FlowRate, &w.Temperature, &w.Pressure, &quality)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.WaterStream{}, err
		}
		return model.WaterStream{}, fmt.Errorf("scan water stream: %w", err)
	}
	w.Source = model.WaterSource(source)
	if err := unmarshalText(quality, &w.Quality); err != nil {
		return model.WaterStream{}, fmt.Errorf("water stream %q quality: %w", w.ID, err)
	}
	return w, nil
}

// UpsertTreatmentUnit validates and writes a treatment unit.
func (s *Store) UpsertTreatmentUnit(ctx context.Context, t model.TreatmentUnit) error {
	if err := t.Validate(); err != nil {
		return err
	}
	inlets, err := marshalSlice(t.InletStreams)
	if err != nil {
		return fmt.Errorf("write treatment unit: %w", err)
	}
	outlets, err := marshalSlice(t.OutletStreams)
	if err != nil {
		return fmt.Errorf("write treatment unit: %w", err)
	}
	efficiencies, err := marshalMap(t.RemovalEfficiencies)
	if err != nil {
		return fmt.Errorf("write treatment unit: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO treatment_units
		(unit_id, name, type, inlet_streams_json, outlet_streams_json, removal_efficiencies_json, operating_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(unit_id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			inlet_streams_json = excluded.inlet_streams_json,
			outlet_streams_json = excluded.outlet_streams_json,
			removal_efficiencies_json = excluded.removal_efficiencies_json,
			operating_cost = excluded.operating_cost
	`, t.ID, t.Name, t.Type, inlets, outlets, efficiencies, t.OperatingCost)
	if err != nil {
		return fmt.Errorf("write treatment unit: %w", err)
	}
	return nil
}

// ListTreatmentUnits returns every treatment unit ordered by id.
func (s *Store) ListTreatmentUnits(ctx context.Context) ([]model.TreatmentUnit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT unit_id, name, type, inlet_streams_json, outlet_streams_json,
			removal_efficiencies_json, operating_cost
		FROM treatment_units
		ORDER BY unit_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query treatment units: %w", err)
	}
	defer rows.Close()

	units := []model.TreatmentUnit{}
	for rows.Next() {
		var (
			t                             model.TreatmentUnit
			inlets, outlets, efficiencies string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &inlets, &outlets, &efficiencies, &t.OperatingCost); err != nil {
			return nil, fmt.Errorf("scan treatment unit: %w", err)
		}
		t.InletStreams = []string{}
		t.OutletStreams = []string{}
		if err := unmarshalText(inlets, &t.InletStreams); err != nil {
			return nil, fmt.Errorf("treatment unit %q inlets: %w", t.ID, err)
		}
		if err := unmarshalText(outlets, &t.OutletStreams); err != nil {
			return nil, fmt.Errorf("treatment unit %q outlets: %w", t.ID, err)
		}
		if err := unmarshalText(efficiencies, &t.RemovalEfficiencies); err != nil {
			return nil, fmt.Errorf("treatment unit %q efficiencies: %w", t.ID, err)
		}
		units = append(units, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate treatment units: %w", err)
	}
	return units, nil
}

// DeleteTreatmentUnit removes a treatment unit.
func (s *Store) DeleteTreatmentUnit(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, "treatment_units", "unit_id", id)
}

func (s *Store) deleteRow(ctx context.Context, table, key, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+key+` = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	return n > 0, nil
}
