package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

const reactionColumns = `reaction_id, name, stoichiometry_json, conversion, selectivity_json, heat_of_reaction`

// UpsertReaction validates and writes a reaction.
func (s *Store) UpsertReaction(ctx context.Context, r model.Reaction) error {
	if err := r.Validate(); err != nil {
		return err
	}
	stoich, err := marshalMap(r.Stoichiometry)
	if err != nil {
		return fmt.Errorf("write reaction: %w", err)
	}
	selectivity, err := marshalMap(r.Selectivity)
	if err != nil {
		return fmt.Errorf("write reaction: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reactions (`+reactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(reaction_id) DO UPDATE SET
			name = excluded.name,
			stoichiometry_json = excluded.stoichiometry_json,
			conversion = excluded.conversion,
			selectivity_json = excluded.selectivity_json,
			heat_of_reaction = excluded.heat_of_reaction
	`, r.ID, r.Name, stoich, r.Conversion, selectivity, r.HeatOfReaction)
	if err != nil {
		return fmt.Errorf("write reaction: %w", err)
	}
	return nil
}

// GetReaction returns one reaction or an error wrapping model.ErrNotFound.
func (s *Store) GetReaction(ctx context.Context, id string) (model.Reaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reactionColumns+` FROM reactions WHERE reaction_id = ?`, id)
	r, err := scanReaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reaction{}, fmt.Errorf("reaction %q: %w", id, model.ErrNotFound)
	}
	return r, err
}

// ListReactions returns every reaction ordered by id.
func (s *Store) ListReactions(ctx context.Context) ([]model.Reaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reactionColumns+`
		FROM reactions
		ORDER BY reaction_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	reactions := []model.Reaction{}
	for rows.Next() {
		r, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reactions: %w", err)
	}
	return reactions, nil
}

// DeleteReaction removes a reaction.
func (s *Store) DeleteReaction(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, "reactions", "reaction_id", id)
}

func scanReaction(sc scanner) (model.Reaction, error) {
	var (
		r                   model.Reaction
		stoich, selectivity string
	)
	err := sc.Scan(&r.ID, &r.Name, &stoich, &r.Conversion, &selectivity, &r.HeatOfReaction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reaction{}, err
		}
		return model.Reaction{}, fmt.Errorf("scan reaction: %w", err)
	}
	if err := unmarshalText(stoich, &r.Stoichiometry); err != nil {
		return model.Reaction{}, fmt.Errorf("reaction %q stoichiometry: %w", r.ID, err)
	}
	if err := unmarshalText(selectivity, &r.Selectivity); err != nil {
		return model.Reaction{}, fmt.Errorf("reaction %q selectivity: %w", r.ID, err)
	}
	return r, nil
}
