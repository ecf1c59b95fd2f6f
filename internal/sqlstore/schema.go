// Package sqlstore implements the SQL-backed store that the decoded
// legacy database is loaded into: three tables (metadata_t, keys_t,
// data_t) accessed through database/sql against modernc.org/sqlite
// (spec.md §4.G). Grounded on original_source/btrieve/SqliteDatabase.cc
// for table shape and creation order; the auto-increment trigger and
// unique/non-modifiable enforcement the original stubbed out are fully
// implemented here.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/joshuapare/btrievekit/internal/keydef"
)

const schemaVersion = 2

const createMetadataTable = `
CREATE TABLE metadata_t (
	record_length INTEGER NOT NULL,
	physical_record_length INTEGER NOT NULL,
	page_length INTEGER NOT NULL,
	variable_length_records INTEGER NOT NULL,
	version INTEGER NOT NULL,
	acs_name TEXT,
	acs BLOB
)`

const createKeysTable = `
CREATE TABLE keys_t (
	id INTEGER PRIMARY KEY,
	number INTEGER NOT NULL,
	segment INTEGER NOT NULL,
	attributes INTEGER NOT NULL,
	data_type INTEGER NOT NULL,
	offset INTEGER NOT NULL,
	length INTEGER NOT NULL,
	null_value INTEGER NOT NULL,
	UNIQUE(number, segment)
)`

func createDataTable(keys []keydef.Key) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE data_t (\n\tid INTEGER PRIMARY KEY,\n\tdata BLOB NOT NULL")
	for i, k := range keys {
		fmt.Fprintf(&b, ",\n\t%s %s", keydef.SQLColumnName(i), k.SQLColumnType())
	}
	b.WriteString("\n)")
	return b.String()
}

func createDataIndices(keys []keydef.Key) []string {
	stmts := make([]string, 0, len(keys))
	for i := range keys {
		col := keydef.SQLColumnName(i)
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX idx_data_%s ON data_t(%s)", col, col))
	}
	return stmts
}

// createSchema builds all three tables plus per-key indices on the data
// table, in the order the original record manager used: metadata, then
// keys, then data (spec.md §4.G "create").
func createSchema(ctx context.Context, db *sql.DB, keys []keydef.Key) error {
	stmts := []string{createMetadataTable, createKeysTable, createDataTable(keys)}
	stmts = append(stmts, createDataIndices(keys)...)
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: creating schema: %w", err)
		}
	}
	return nil
}
