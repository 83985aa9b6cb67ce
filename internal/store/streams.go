package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

const streamColumns = `stream_id, name, phase, temperature, pressure, flow_rate,
	composition_json, source_unit, destination_unit, properties_json`

// UpsertStream validates and writes a stream together with its component
// membership rows.
func (s *Store) UpsertStream(ctx context.Context, st model.Stream) error {
	if err := st.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	defer tx.Rollback()

	if err := upsertStreamTx(ctx, tx, st, s.timestamp()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write stream: commit: %w", err)
	}
	return nil
}

func upsertStreamTx(ctx context.Context, tx *sql.Tx, st model.Stream, now string) error {
	comp, err := marshalMap(st.Composition)
	if err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	props, err := marshalMap(st.Properties)
	if err != nil {
		return fmt.Errorf("write stream: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO streams (`+streamColumns+`, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stream_id) DO UPDATE SET
			name = excluded.name,
			phase = excluded.phase,
			temperature = excluded.temperature,
			pressure = excluded.pressure,
			flow_rate = excluded.flow_rate,
			composition_json = excluded.composition_json,
			source_unit = excluded.source_unit,
			destination_unit = excluded.destination_unit,
			properties_json = excluded.properties_json,
			modified_at = excluded.modified_at
	`,
		st.ID, st.Name, string(st.Phase), nullFloat(st.Temperature), st.Pressure, st.FlowRate,
		comp, st.SourceUnit, st.DestinationUnit, props, now,
	)
	if err != nil {
		return fmt.Errorf("write stream: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM stream_components WHERE stream_id = ?`, st.ID); err != nil {
		return fmt.Errorf("write stream components: %w", err)
	}
	for _, materialID := range st.Composition.Keys() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stream_components (stream_id, material_id, fraction) VALUES (?, ?, ?)
		`, st.ID, materialID, st.Composition[materialID])
		if err != nil {
			return fmt.Errorf("write stream components: %w", err)
		}
	}
	return nil
}

// GetStream returns one stream or an error wrapping model.ErrNotFound.
func (s *Store) GetStream(ctx context.Context, id string) (model.Stream, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+streamColumns+` FROM streams WHERE stream_id = ?`, id)
	st, err := scanStream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stream{}, fmt.Errorf("stream %q: %w", id, model.ErrNotFound)
	}
	return st, err
}

// ListStreams returns every stream ordered by id.
func (s *Store) ListStreams(ctx context.Context) ([]model.Stream, error) {
	return s.queryStreams(ctx, `
		SELECT `+streamColumns+` FROM streams
		ORDER BY stream_id COLLATE BINARY ASC
	`)
}

// StreamsForUnit returns the streams whose source or destination is unitID.
func (s *Store) StreamsForUnit(ctx context.Context, unitID string) ([]model.Stream, error) {
	return s.queryStreams(ctx, `
		SELECT `+streamColumns+` FROM streams
		WHERE source_unit = ? OR destination_unit = ?
		ORDER BY stream_id COLLATE BINARY ASC
	`, unitID, unitID)
}

// StreamsContainingMaterial returns the streams whose composition lists
// materialID.
func (s *Store) StreamsContainingMaterial(ctx context.Context, materialID string) ([]model.Stream, error) {
	return s.queryStreams(ctx, `
		SELECT `+prefixed("s.", streamColumns)+` FROM streams s
		JOIN stream_components c ON c.stream_id = s.stream_id
		WHERE c.material_id = ?
		ORDER BY s.stream_id COLLATE BINARY ASC
	`, materialID)
}

// RemoveMaterialFromStreams deletes materialID from every composition that
// lists it and renormalizes the remaining fractions, all in one
// transaction. Returns the ids of the rewritten streams.
func (s *Store) RemoveMaterialFromStreams(ctx context.Context, materialID string) ([]string, error) {
	streams, err := s.StreamsContainingMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("remove material from streams: %w", err)
	}
	defer tx.Rollback()

	now := s.timestamp()
	ids := []string{}
	for _, st := range streams {
		comp, removed := st.Composition.Without(materialID)
		if !removed {
			continue
		}
		st.Composition = comp
		if err := upsertStreamTx(ctx, tx, st, now); err != nil {
			return nil, err
		}
		ids = append(ids, st.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("remove material from streams: commit: %w", err)
	}
	return ids, nil
}

// DeleteStream removes a stream. Reports whether a row was removed.
func (s *Store) DeleteStream(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM streams WHERE stream_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete stream: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete stream: %w", err)
	}
	return n > 0, nil
}

func (s *Store) queryStreams(ctx context.Context, query string, args ...any) ([]model.Stream, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	streams := []model.Stream{}
	for rows.Next() {
		st, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streams: %w", err)
	}
	return streams, nil
}

func scanStream(sc scanner) (model.Stream, error) {
	var (
		st          model.Stream
		phase       string
		temperature sql.NullFloat64
		comp, props string
	)
	err := sc.Scan(
		&st.ID, &st.Name, &phase, &temperature, &st.Pressure, &st.FlowRate,
		&comp, &st.SourceUnit, &st.DestinationUnit, &props,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Stream{}, err
		}
		return model.Stream{}, fmt.Errorf("scan stream: %w", err)
	}
	st.Phase = model.Phase(phase)
	st.Temperature = floatPtr(temperature)
	if err := unmarshalText(comp, &st.Composition); err != nil {
		return model.Stream{}, fmt.Errorf("stream %q composition: %w", st.ID, err)
	}
	if err := unmarshalText(props, &st.Properties); err != nil {
		return model.Stream{}, fmt.Errorf("stream %q properties: %w", st.ID, err)
	}
	return st, nil
}

// prefixed qualifies every column in a comma-separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
