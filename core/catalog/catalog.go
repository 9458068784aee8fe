// Package catalog stores parsed pole-zero files in SQLite so instruments can
// be looked up by SEED identifier and epoch without re-reading the files.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/PoleZero/core/errors"
	"github.com/FocuswithJustin/PoleZero/core/pz"
	"github.com/FocuswithJustin/PoleZero/core/pzfile"
	"github.com/FocuswithJustin/PoleZero/core/sqlite"
	"github.com/FocuswithJustin/PoleZero/internal/logging"
	"github.com/FocuswithJustin/PoleZero/internal/source"
)

// timeLayout is fixed width so stored epochs compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Catalog is a SQLite-backed instrument store. It is safe for concurrent use.
type Catalog struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the catalog at path and applies pending migrations.
// Use sqlite.MemoryPath for a throwaway catalog.
func Open(ctx context.Context, path string) (*Catalog, error) {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, errors.NewIO("open catalog", path, err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewIO("migrate catalog", path, err)
	}
	return &Catalog{db: db, now: time.Now}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// ImportResult describes the outcome of Import.
type ImportResult struct {
	FileID      string `json:"file_id"`
	Instruments int    `json:"instruments"`
	// Duplicate is true when identical content was already imported; nothing
	// was written and FileID names the earlier import.
	Duplicate bool `json:"duplicate"`
}

// FileRecord is one imported file.
type FileRecord struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	SHA256      string    `json:"sha256"`
	BLAKE3      string    `json:"blake3"`
	Compression string    `json:"compression"`
	ImportedAt  time.Time `json:"imported_at"`
	Instruments int       `json:"instruments"`
}

// Entry is one stored instrument.
type Entry struct {
	ID         string         `json:"id"`
	FileID     string         `json:"file_id"`
	Path       string         `json:"path"`
	Ordinal    int            `json:"ordinal"`
	Instrument *pz.Instrument `json:"instrument"`
}

// Query selects instruments. Empty fields match anything; At, when set,
// keeps only instruments whose epoch contains that instant.
type Query struct {
	Network  string
	Station  string
	Location string
	Channel  string
	At       *time.Time
}

// storedValue keeps a header value's kind and source text. The coerced
// value is rebuilt from the text on load.
type storedValue struct {
	Kind string `json:"kind"`
	Raw  string `json:"raw"`
}

func encodeHeader(h pz.Header) ([]byte, error) {
	stored := make(map[string]storedValue, len(h))
	for k, v := range h {
		stored[k] = storedValue{Kind: v.Kind().String(), Raw: v.Raw()}
	}
	return json.Marshal(stored)
}

func decodeHeader(data []byte) (pz.Header, error) {
	var stored map[string]storedValue
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	h := make(pz.Header, len(stored))
	for k, s := range stored {
		switch s.Kind {
		case pz.KindNumber.String():
			f, err := strconv.ParseFloat(s.Raw, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "header %s", k)
			}
			h[k] = pz.NumberValue(s.Raw, f)
		case pz.KindTime.String():
			t, err := pz.ParseTimestamp(s.Raw)
			if err != nil {
				return nil, errors.Wrapf(err, "header %s", k)
			}
			h[k] = pz.TimeValue(s.Raw, t)
		default:
			h[k] = pz.StringValue(s.Raw)
		}
	}
	return h, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// Import stores every instrument of f in a single transaction.
// Re-importing content with the same SHA-256 is a no-op.
func (c *Catalog) Import(ctx context.Context, f *pzfile.File) (ImportResult, error) {
	if !source.IsValidHash(f.Hashes.SHA256) || !source.IsValidHash(f.Hashes.BLAKE3) {
		return ImportResult{}, errors.NewValidation("hashes", "file "+f.Path+" has no content digest")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "begin import")
	}
	defer tx.Rollback()

	var existing string
	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT f.id, (SELECT COUNT(*) FROM instruments i WHERE i.file_id = f.id)
		FROM files f WHERE f.sha256 = ?`, f.Hashes.SHA256).Scan(&existing, &count)
	switch {
	case err == nil:
		logging.CatalogImport(ctx, f.Path, existing, count, true)
		return ImportResult{FileID: existing, Instruments: count, Duplicate: true}, nil
	case err != sql.ErrNoRows:
		return ImportResult{}, errors.Wrapf(err, "lookup %s", f.Path)
	}

	fileID := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO files (id, path, sha256, blake3, compression, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fileID, f.Path, f.Hashes.SHA256, f.Hashes.BLAKE3, string(f.Compression),
		c.now().UTC().Format(timeLayout),
	); err != nil {
		return ImportResult{}, errors.Wrapf(err, "insert file %s", f.Path)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO instruments (id, file_id, ordinal, network, station, location, channel,
			start_time, end_time, constant, zeros, poles, header)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for i, in := range f.Instruments {
		info := in.Info()
		zeros, err := json.Marshal(in.Zeros)
		if err != nil {
			return ImportResult{}, errors.Wrapf(err, "encode zeros of block %d", i+1)
		}
		poles, err := json.Marshal(in.Poles)
		if err != nil {
			return ImportResult{}, errors.Wrapf(err, "encode poles of block %d", i+1)
		}
		header, err := encodeHeader(in.Header)
		if err != nil {
			return ImportResult{}, errors.Wrapf(err, "encode header of block %d", i+1)
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), fileID, i+1,
			info.Network, info.Station, info.Location, info.Channel,
			nullTime(info.Start), nullTime(info.End), nullFloat(in.Constant),
			string(zeros), string(poles), string(header),
		); err != nil {
			return ImportResult{}, errors.Wrapf(err, "insert block %d of %s", i+1, f.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, errors.Wrap(err, "commit import")
	}
	logging.CatalogImport(ctx, f.Path, fileID, len(f.Instruments), false)
	return ImportResult{FileID: fileID, Instruments: len(f.Instruments)}, nil
}

// Find returns the instruments matching q, ordered by SEED identifier,
// then start time, then source file and position.
func (c *Catalog) Find(ctx context.Context, q Query) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	for _, cond := range []struct {
		column, value string
	}{
		{"i.network", q.Network},
		{"i.station", q.Station},
		{"i.location", q.Location},
		{"i.channel", q.Channel},
	} {
		if cond.value != "" {
			where = append(where, cond.column+" = ?")
			args = append(args, cond.value)
		}
	}
	if q.At != nil {
		at := q.At.UTC().Format(timeLayout)
		where = append(where,
			"(i.start_time IS NULL OR i.start_time <= ?)",
			"(i.end_time IS NULL OR i.end_time >= ?)")
		args = append(args, at, at)
	}

	query := `
		SELECT i.id, i.file_id, f.path, i.ordinal, i.constant, i.zeros, i.poles, i.header
		FROM instruments i JOIN files f ON f.id = i.file_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY i.network, i.station, i.location, i.channel, i.start_time, f.path, i.ordinal`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "find instruments")
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                    Entry
			constant             sql.NullFloat64
			zeros, poles, header string
		)
		if err := rows.Scan(&e.ID, &e.FileID, &e.Path, &e.Ordinal, &constant, &zeros, &poles, &header); err != nil {
			return nil, errors.Wrap(err, "scan instrument")
		}
		in := &pz.Instrument{}
		if constant.Valid {
			in.Constant = &constant.Float64
		}
		if err := json.Unmarshal([]byte(zeros), &in.Zeros); err != nil {
			return nil, errors.Wrapf(err, "decode zeros of %s", e.ID)
		}
		if err := json.Unmarshal([]byte(poles), &in.Poles); err != nil {
			return nil, errors.Wrapf(err, "decode poles of %s", e.ID)
		}
		if in.Header, err = decodeHeader([]byte(header)); err != nil {
			return nil, errors.Wrapf(err, "decode header of %s", e.ID)
		}
		e.Instrument = in
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "find instruments")
	}
	return entries, nil
}

// Files lists imported files, oldest first.
func (c *Catalog) Files(ctx context.Context) ([]FileRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT f.id, f.path, f.sha256, f.blake3, f.compression, f.imported_at,
			(SELECT COUNT(*) FROM instruments i WHERE i.file_id = f.id)
		FROM files f ORDER BY f.imported_at, f.path`)
	if err != nil {
		return nil, errors.Wrap(err, "list files")
	}
	defer rows.Close()

	records := []FileRecord{}
	for rows.Next() {
		var (
			r          FileRecord
			importedAt string
		)
		if err := rows.Scan(&r.ID, &r.Path, &r.SHA256, &r.BLAKE3, &r.Compression, &importedAt, &r.Instruments); err != nil {
			return nil, errors.Wrap(err, "scan file")
		}
		if r.ImportedAt, err = time.Parse(timeLayout, importedAt); err != nil {
			return nil, errors.Wrapf(err, "file %s imported_at", r.ID)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list files")
	}
	return records, nil
}

// Remove deletes an imported file and its instruments.
func (c *Catalog) Remove(ctx context.Context, fileID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID)
	if err != nil {
		return errors.Wrapf(err, "remove %s", fileID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "remove %s", fileID)
	}
	if n == 0 {
		return errors.NewNotFound("file", fileID)
	}
	return nil
}
