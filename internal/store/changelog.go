package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// DefaultChangedBy is recorded when a change has no named author.
const DefaultChangedBy = "system"

// ChangeRecord is one row of the change log.
type ChangeRecord struct {
	ID        string          `json:"id"`
	Module    model.Kind      `json:"module"`
	EntityID  string          `json:"entity_id"`
	Version   int64           `json:"version"`
	DataHash  string          `json:"data_hash"`
	Operation model.Operation `json:"operation"`
	ChangedBy string          `json:"changed_by"`
	PassToken string          `json:"pass_token"`
	ChangedAt string          `json:"changed_at"`
}

// RecordChange appends a change log row for (module, entityID). The version
// is one more than the entity's latest version, starting at 1. The hash
// covers the id, the operation and the accompanying payload.
func (s *Store) RecordChange(ctx context.Context, module model.Kind, op model.Operation, entityID string, data any, changedBy, passToken string) (ChangeRecord, error) {
	hash, err := model.ChangeHash(entityID, op, data)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("record change: %w", err)
	}
	if changedBy == "" {
		changedBy = DefaultChangedBy
	}
	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.DefaultEntropy())
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("record change: ulid: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("record change: %w", err)
	}
	defer tx.Rollback()

	var latest sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT MAX(version) FROM data_versions WHERE module = ? AND entity_id = ?
	`, string(module), entityID).Scan(&latest)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("record change: query version: %w", err)
	}

	rec := ChangeRecord{
		ID:        id.String(),
		Module:    module,
		EntityID:  entityID,
		Version:   latest.Int64 + 1,
		DataHash:  hash,
		Operation: op,
		ChangedBy: changedBy,
		PassToken: passToken,
		ChangedAt: s.timestamp(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO data_versions
		(id, module, entity_id, version, data_hash, operation, changed_by, pass_token, changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, string(rec.Module), rec.EntityID, rec.Version, rec.DataHash,
		string(rec.Operation), rec.ChangedBy, rec.PassToken, rec.ChangedAt)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("record change: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ChangeRecord{}, fmt.Errorf("record change: commit: %w", err)
	}
	return rec, nil
}

// ListChanges returns the change log of one entity in version order. An
// empty module lists every change ordered by id, which is time order.
func (s *Store) ListChanges(ctx context.Context, module model.Kind, entityID string) ([]ChangeRecord, error) {
	query := `
		SELECT id, module, entity_id, version, data_hash, operation, changed_by, pass_token, changed_at
		FROM data_versions
	`
	var args []any
	if module != "" {
		query += ` WHERE module = ? AND entity_id = ? ORDER BY version ASC`
		args = append(args, string(module), entityID)
	} else {
		query += ` ORDER BY id COLLATE BINARY ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	changes := []ChangeRecord{}
	for rows.Next() {
		var (
			rec     ChangeRecord
			mod, op string
		)
		if err := rows.Scan(&rec.ID, &mod, &rec.EntityID, &rec.Version, &rec.DataHash,
			&op, &rec.ChangedBy, &rec.PassToken, &rec.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		rec.Module = model.Kind(mod)
		rec.Operation = model.Operation(op)
		changes = append(changes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changes: %w", err)
	}
	return changes, nil
}
