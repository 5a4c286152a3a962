// Package query backs `tola query`: an ad hoc read-only SQL surface over
// the compiled site's page metadata, for build scripts and editor
// tooling that want "list every post tagged X" without re-implementing a
// metadata scanner. Grounded on the original's src/cli/query/* feature
// (collect.rs's per-page record shape, output.rs's field filtering), but
// the implementation here loads records into an in-memory SQLite table
// and lets the caller write arbitrary SQL instead of a bespoke filter
// DSL — a deliberate divergence from the original's fixed field-list
// flags, justified in DESIGN.md.
package query

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tola-rs/tola/internal/page"
)

// Engine is a disposable, in-memory SQLite index rebuilt from the page
// store on every `tola query` invocation — it is never persisted, since
// the page store itself is already the source of truth and keeping two
// copies in sync across runs would just be another cache to invalidate.
type Engine struct {
	db *sql.DB
}

// Open creates a fresh in-memory query engine.
func Open() (*Engine, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open query engine: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Engine{db: db}, nil
}

const schema = `
CREATE TABLE pages (
	permalink        TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	date             TEXT NOT NULL,
	summary          TEXT NOT NULL,
	draft            INTEGER NOT NULL,
	custom_permalink TEXT NOT NULL,
	tags             TEXT NOT NULL, -- JSON array
	aliases          TEXT NOT NULL, -- JSON array
	extra            TEXT NOT NULL  -- JSON object
)`

// Load truncates and repopulates the pages table from records, which the
// caller obtains via page.Map.AllPages (or GetPages to exclude drafts
// up front).
func (e *Engine) Load(records []page.Stored) error {
	tx, err := e.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pages"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO pages
		(permalink, title, date, summary, draft, custom_permalink, tags, aliases, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range records {
		tags, err := json.Marshal(p.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", p.Permalink, err)
		}
		aliases, err := json.Marshal(p.Aliases)
		if err != nil {
			return fmt.Errorf("marshal aliases for %s: %w", p.Permalink, err)
		}
		extra, err := json.Marshal(p.Extra)
		if err != nil {
			return fmt.Errorf("marshal extra for %s: %w", p.Permalink, err)
		}

		draft := 0
		if p.Draft {
			draft = 1
		}
		if _, err := stmt.Exec(
			string(p.Permalink), p.DisplayTitle(), p.Date.Format(dateLayout), p.Summary,
			draft, p.CustomPermalink, string(tags), string(aliases), string(extra),
		); err != nil {
			return fmt.Errorf("insert %s: %w", p.Permalink, err)
		}
	}

	return tx.Commit()
}

const dateLayout = "2006-01-02T15:04:05Z07:00"

// Run executes an arbitrary read-only query against the loaded pages
// table and returns each row as a column-name-keyed map, the shape
// `tola query`'s JSON output serializes directly.
func (e *Engine) Run(sqlQuery string) ([]map[string]any, error) {
	rows, err := e.db.Query(sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close releases the in-memory database.
func (e *Engine) Close() error {
	return e.db.Close()
}
