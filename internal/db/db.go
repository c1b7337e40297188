package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/repotxt/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// FileName is the database file created under the base directory.
const FileName = "repotxt.db"

// ExportsDir returns the default export directory under baseDir.
func ExportsDir(baseDir string) string {
	return filepath.Join(baseDir, "exports")
}

// Init initializes the SQLite database at baseDir/repotxt.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.repotxt.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Best-effort, may not work on all platforms
	_ = os.Chmod(baseDir, 0700)

	exportsDir := ExportsDir(baseDir)
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the DSN apply to every pooled connection.
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: snapshots and their files
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
		  id              TEXT PRIMARY KEY,
		  repository_url  TEXT NOT NULL,
		  repo_name       TEXT NOT NULL,
		  file_count      INTEGER NOT NULL,
		  total_chars     INTEGER NOT NULL,
		  tokens_estimate INTEGER NOT NULL,
		  created_at      INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshot_files (
		  snapshot_id   TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		  seq           INTEGER NOT NULL,
		  relative_path TEXT NOT NULL,
		  extension     TEXT NOT NULL,
		  content       TEXT NOT NULL,
		  chars         INTEGER NOT NULL,
		  PRIMARY KEY (snapshot_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_created
		ON snapshots(created_at DESC, id DESC);

		CREATE INDEX IF NOT EXISTS idx_snapshots_repository_created
		ON snapshots(repository_url, created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_snapshot_files_path
		ON snapshot_files(snapshot_id, relative_path);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
