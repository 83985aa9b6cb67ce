package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	err = s2.db.QueryRow("SELECT COUNT(*) FROM process_units").Scan(&count)
	if err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{
		"materials", "streams", "stream_components", "process_units", "equipment",
		"material_balances", "heat_balances", "water_balances",
		"heat_streams", "heat_exchangers", "water_streams", "treatment_units",
		"data_versions",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	path := "/nonexistent/dir/project.db"

	_, err := Open(path)
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpenContext_CustomOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	s, err := OpenContext(context.Background(), path, Options{
		BusyTimeout: 250 * time.Millisecond,
		OpenRetries: 0,
		Logger:      zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("OpenContext() failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("busy_timeout", "250"); err != nil {
		t.Error(err)
	}
}

func TestOpenContext_CancelledContextStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A permanent error is returned immediately regardless of the context.
	_, err := OpenContext(ctx, "/nonexistent/dir/project.db", DefaultOptions())
	if err == nil {
		t.Error("expected error, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}
	_ = s.Close()
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createTestStore(t)
	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

// Schema tests

func TestSchema_StreamsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "streams")
	expected := []string{
		"stream_id", "name", "phase", "temperature", "pressure", "flow_rate",
		"composition_json", "source_unit", "destination_unit", "properties_json",
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("streams table missing column %q", col)
		}
	}
}

func TestSchema_BalanceTables(t *testing.T) {
	s := createTestStore(t)

	tests := map[string][]string{
		"material_balances": {"unit_id", "input_streams_json", "output_streams_json", "balance_status", "tolerance", "calculated_data_json", "created_at"},
		"heat_balances":     {"unit_id", "input_heat_json", "output_heat_json", "heat_loss", "efficiency", "utility_requirements_json", "balance_status"},
		"water_balances":    {"unit_id", "fresh_water_in", "recycled_water_in", "water_consumption", "wastewater_out", "reuse_possibilities"},
	}
	for table, expected := range tests {
		columns := getTableColumns(t, s.db, table)
		for _, col := range expected {
			if !contains(columns, col) {
				t.Errorf("%s table missing column %q", table, col)
			}
		}
	}
}

func TestSchema_Indexes(t *testing.T) {
	s := createTestStore(t)

	tests := map[string][]string{
		"streams":           {"idx_streams_source", "idx_streams_destination"},
		"stream_components": {"idx_stream_components_material"},
		"equipment":         {"idx_equipment_source_unit"},
	}
	for table, expected := range tests {
		indexes := getTableIndexes(t, s.db, table)
		for _, idx := range expected {
			if !contains(indexes, idx) {
				t.Errorf("%s table missing index %q", table, idx)
			}
		}
	}
}

// Constraint tests

func TestConstraint_BalanceRequiresUnit(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO material_balances (unit_id, created_at, modified_at)
		VALUES ('ghost', 'now', 'now')
	`)
	if err == nil {
		t.Error("expected foreign key violation for balance without unit")
	}
}

func TestConstraint_ChangeVersionUnique(t *testing.T) {
	s := createTestStore(t)

	insert := `
		INSERT INTO data_versions (id, module, entity_id, version, data_hash, operation, changed_at)
		VALUES (?, 'stream', 'S1', 1, 'h', 'add', 'now')
	`
	if _, err := s.db.Exec(insert, "a"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := s.db.Exec(insert, "b"); err == nil {
		t.Error("expected unique violation for duplicate (module, entity_id, version)")
	}
}

// Migration tests

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestMigration_IdempotentUpgrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}

		var version int
		if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
			t.Fatalf("failed to get user_version: %v", err)
		}
		if version != currentSchemaVersion {
			t.Errorf("iteration %d: user_version = %d, want %d", i, version, currentSchemaVersion)
		}
		s.Close()
	}
}

func TestMigration_BackfillsStreamComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	// Pre-migration database: streams written without membership rows.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	_, err = db.Exec(`
		INSERT INTO streams (stream_id, composition_json, modified_at)
		VALUES ('S1', '{"A":0.4,"B":0.6}', 'now')
	`)
	if err != nil {
		t.Fatalf("failed to insert stream: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	streams, err := s.StreamsContainingMaterial(context.Background(), "B")
	if err != nil {
		t.Fatalf("StreamsContainingMaterial() failed: %v", err)
	}
	if len(streams) != 1 || streams[0].ID != "S1" {
		t.Errorf("expected S1 after backfill, got %+v", streams)
	}
}

// Helper functions

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
