package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaVersion is bumped whenever migrations gains an entry.
const schemaVersion = 1

// migrations[i] upgrades a database from version i to i+1.
var migrations = []string{
	`
CREATE TABLE files (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL,
	sha256      TEXT NOT NULL UNIQUE,
	blake3      TEXT NOT NULL,
	compression TEXT NOT NULL,
	imported_at TEXT NOT NULL
);

CREATE TABLE instruments (
	id         TEXT PRIMARY KEY,
	file_id    TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	ordinal    INTEGER NOT NULL,
	network    TEXT NOT NULL,
	station    TEXT NOT NULL,
	location   TEXT NOT NULL,
	channel    TEXT NOT NULL,
	start_time TEXT,
	end_time   TEXT,
	constant   REAL,
	zeros      TEXT NOT NULL,
	poles      TEXT NOT NULL,
	header     TEXT NOT NULL,
	UNIQUE (file_id, ordinal)
);

CREATE INDEX instruments_seed ON instruments (network, station, location, channel);
`,
}

// migrate brings the database up to schemaVersion.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema_version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema_version: %w", err)
	}

	if version > schemaVersion {
		return fmt.Errorf("catalog schema version %d is newer than supported version %d", version, schemaVersion)
	}

	for v := version; v < schemaVersion; v++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE schema_version SET version = ?`, v+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	return nil
}
