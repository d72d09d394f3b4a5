package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/chazu/stereo/pkg/scene"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entities (
		seq    INTEGER PRIMARY KEY,
		name   TEXT NOT NULL UNIQUE,
		kind   TEXT NOT NULL,
		record BLOB NOT NULL
	)`,
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return db, nil
}

// saveSQLite replaces the database contents with doc in one transaction.
func saveSQLite(ctx context.Context, doc *scene.Document, path string) (retErr error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	undo, err := json.Marshal(doc.Undo)
	if err != nil {
		return fmt.Errorf("encode undo: %w", err)
	}
	redo, err := json.Marshal(doc.Redo)
	if err != nil {
		return fmt.Errorf("encode redo: %w", err)
	}
	meta := [][2]string{
		{"format", doc.Format},
		{"version", strconv.Itoa(doc.Version)},
		{"id", doc.ID},
		{"undo", string(undo)},
		{"redo", string(redo)},
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}
	for _, kv := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES(?, ?)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("insert meta %s: %w", kv[0], err)
		}
	}
	for i, rec := range doc.Entities {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", rec.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO entities(seq, name, kind, record) VALUES(?, ?, ?, ?)`,
			i, rec.Name, rec.Kind, data); err != nil {
			return fmt.Errorf("insert %s: %w", rec.Name, err)
		}
	}
	return tx.Commit()
}

func loadSQLite(ctx context.Context, path string) (*scene.Document, error) {
	// sql.Open would create a missing file.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	doc := &scene.Document{}
	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, err
	}
	doc.Format = meta["format"]
	doc.ID = meta["id"]
	if v, ok := meta["version"]; ok {
		if doc.Version, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("%w: version %q", scene.ErrInvalidFormat, v)
		}
	}
	for _, key := range []string{"undo", "redo"} {
		v, ok := meta[key]
		if !ok {
			continue
		}
		dst := &doc.Undo
		if key == "redo" {
			dst = &doc.Redo
		}
		if err := json.Unmarshal([]byte(v), dst); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", scene.ErrInvalidFormat, key, err)
		}
	}

	rows, err := db.QueryContext(ctx, `SELECT name, kind, record FROM entities ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select entities: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			name, kind string
			data       []byte
			rec        scene.Record
		)
		if err := rows.Scan(&name, &kind, &data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", scene.ErrInvalidFormat, name, err)
		}
		if rec.Name != name || rec.Kind != kind {
			return nil, fmt.Errorf("%w: row %q/%s holds record %q/%s", scene.ErrInvalidFormat, name, kind, rec.Name, rec.Kind)
		}
		doc.Entities = append(doc.Entities, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entities: %w", err)
	}
	return doc, nil
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("select meta: %w", err)
	}
	defer func() { _ = rows.Close() }()
	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}
