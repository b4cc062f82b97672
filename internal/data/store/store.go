package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cascade/internal/engine/parser"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// SymbolStore persists symbol tables across runs so a fresh process can warm
// its in-memory cache without re-parsing an unchanged workspace. Rows are
// denormalized per symbol for external lookup; the authoritative table is the
// JSON blob per document.
type SymbolStore struct {
	db         *sql.DB
	projectKey string
	lookupStmt *sql.Stmt
}

type SymbolRecord struct {
	Document string
	Kind     string
	Name     string
	Value    string
	Line     int
	Column   int
}

func Open(path, projectKey string) (*SymbolStore, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("symbol store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("symbol store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create symbol store directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite symbol store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite symbol store %q: %w", cleanPath, err)
	}

	if err := migrateSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	key := strings.TrimSpace(projectKey)
	if key == "" {
		key = "default"
	}

	lookupStmt, err := db.Prepare(`SELECT document, kind, name, value, line, col
FROM symbols
WHERE project_key = ? AND name = ?
ORDER BY document, sym_offset`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare lookup stmt: %w", err)
	}

	return &SymbolStore{db: db, projectKey: key, lookupStmt: lookupStmt}, nil
}

func (s *SymbolStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.lookupStmt != nil {
		_ = s.lookupStmt.Close()
	}
	return s.db.Close()
}

// UpsertTable replaces the persisted rows for the table's document.
func (s *SymbolStore) UpsertTable(table *parser.SymbolTable) error {
	if s == nil || s.db == nil || table == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin symbol upsert tx: %w", err)
	}
	if err := upsertTableRows(tx, s.projectKey, table); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit symbol upsert tx: %w", err)
	}
	return nil
}

// LoadAll returns every persisted table for the project, suitable for
// warming an in-memory cache. Corrupt blobs are skipped.
func (s *SymbolStore) LoadAll() ([]*parser.SymbolTable, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	rows, err := s.db.Query(`SELECT blob FROM documents WHERE project_key = ? ORDER BY document`, s.projectKey)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	out := make([]*parser.SymbolTable, 0)
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			continue
		}
		var table parser.SymbolTable
		if err := json.Unmarshal(blob, &table); err != nil {
			continue
		}
		out = append(out, &table)
	}
	return out, rows.Err()
}

func (s *SymbolStore) DeleteDocument(document string) error {
	if s == nil || s.db == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin symbol delete tx: %w", err)
	}
	if err := deleteDocument(tx, s.projectKey, document); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit symbol delete tx: %w", err)
	}
	return nil
}

// PruneToDocuments drops rows for documents no longer present in the
// workspace.
func (s *SymbolStore) PruneToDocuments(documents []string) error {
	if s == nil || s.db == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin symbol prune tx: %w", err)
	}
	if len(documents) == 0 {
		if _, err := tx.Exec(`DELETE FROM symbols WHERE project_key = ?`, s.projectKey); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear symbols for empty document set: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM documents WHERE project_key = ?`, s.projectKey); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear documents for empty document set: %w", err)
		}
	} else {
		if err := loadTempDocuments(tx, s.projectKey, documents); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`DELETE FROM symbols WHERE project_key = ? AND document NOT IN (SELECT document FROM current_documents WHERE project_key = ?)`, s.projectKey, s.projectKey); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete stale symbol rows: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM documents WHERE project_key = ? AND document NOT IN (SELECT document FROM current_documents WHERE project_key = ?)`, s.projectKey, s.projectKey); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete stale document blobs: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit symbol prune tx: %w", err)
	}
	return nil
}

// Lookup returns the persisted symbols with the given name across the
// project, for consumers that query without a warmed cache.
func (s *SymbolStore) Lookup(name string) []SymbolRecord {
	if s == nil || s.db == nil || s.lookupStmt == nil {
		return nil
	}
	rows, err := s.lookupStmt.Query(s.projectKey, name)
	if err != nil {
		return nil
	}
	defer rows.Close()

	out := make([]SymbolRecord, 0)
	for rows.Next() {
		var rec SymbolRecord
		if err := rows.Scan(&rec.Document, &rec.Kind, &rec.Name, &rec.Value, &rec.Line, &rec.Column); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func migrateSchema(db *sql.DB) error {
	var version int
	_ = db.QueryRow(`PRAGMA user_version`).Scan(&version)

	if version == 0 {
		_, err := db.Exec(`
CREATE TABLE documents (
  project_key TEXT NOT NULL,
  document TEXT NOT NULL,
  ctime INTEGER NOT NULL DEFAULT 0,
  blob BLOB NOT NULL,
  PRIMARY KEY (project_key, document)
);

CREATE TABLE symbols (
  project_key TEXT NOT NULL,
  document TEXT NOT NULL,
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  value TEXT NOT NULL DEFAULT '',
  sym_offset INTEGER NOT NULL DEFAULT 0,
  line INTEGER NOT NULL DEFAULT 0,
  col INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_symbols_project_name ON symbols(project_key, name);
CREATE INDEX idx_symbols_project_document ON symbols(project_key, document);

PRAGMA user_version = 1;
`)
		if err != nil {
			return fmt.Errorf("create v1 schema: %w", err)
		}
		return nil
	}

	if version != 1 {
		return fmt.Errorf("unsupported symbol store schema version %d", version)
	}
	return nil
}

func deleteDocument(tx *sql.Tx, projectKey, document string) error {
	if _, err := tx.Exec(`DELETE FROM symbols WHERE project_key = ? AND document = ?`, projectKey, document); err != nil {
		return fmt.Errorf("delete symbol rows for %q: %w", document, err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE project_key = ? AND document = ?`, projectKey, document); err != nil {
		return fmt.Errorf("delete document blob for %q: %w", document, err)
	}
	return nil
}

func loadTempDocuments(tx *sql.Tx, projectKey string, documents []string) error {
	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS current_documents (
  project_key TEXT NOT NULL,
  document TEXT NOT NULL,
  PRIMARY KEY (project_key, document)
)`); err != nil {
		return fmt.Errorf("create temp documents table: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM current_documents WHERE project_key = ?`, projectKey); err != nil {
		return fmt.Errorf("clear temp documents table: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO current_documents (project_key, document) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare temp document insert: %w", err)
	}
	defer stmt.Close()
	for _, doc := range documents {
		if _, err := stmt.Exec(projectKey, doc); err != nil {
			return fmt.Errorf("insert temp document: %w", err)
		}
	}
	return nil
}

func upsertTableRows(tx *sql.Tx, projectKey string, table *parser.SymbolTable) error {
	if err := deleteDocument(tx, projectKey, table.Document); err != nil {
		return err
	}

	blob, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("marshal table for %q: %w", table.Document, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO documents (project_key, document, ctime, blob) VALUES (?, ?, ?, ?)`,
		projectKey, table.Document, table.CTime.UnixNano(), blob,
	); err != nil {
		return fmt.Errorf("upsert document blob: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO symbols (project_key, document, kind, name, value, sym_offset, line, col)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range table.Variables {
		if _, err := stmt.Exec(projectKey, table.Document, "variable", v.Name, v.Value, v.Offset, v.Location.Line, v.Location.Column); err != nil {
			return fmt.Errorf("insert variable row (%s): %w", v.Name, err)
		}
	}
	for _, m := range table.Mixins {
		if _, err := stmt.Exec(projectKey, table.Document, "mixin", m.Name, strings.Join(m.Parameters, ", "), m.Offset, m.Location.Line, m.Location.Column); err != nil {
			return fmt.Errorf("insert mixin row (%s): %w", m.Name, err)
		}
	}
	for _, f := range table.Functions {
		if _, err := stmt.Exec(projectKey, table.Document, "function", f.Name, strings.Join(f.Parameters, ", "), f.Offset, f.Location.Line, f.Location.Column); err != nil {
			return fmt.Errorf("insert function row (%s): %w", f.Name, err)
		}
	}
	return nil
}
