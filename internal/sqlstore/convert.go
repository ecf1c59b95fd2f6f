package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/joshuapare/btrievekit/internal/keydef"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func insertMetadataRow(ctx context.Context, db *sql.DB, meta Metadata) error {
	const stmt = `INSERT INTO metadata_t
		(record_length, physical_record_length, page_length, variable_length_records, version, acs_name, acs)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, stmt,
		meta.RecordLength, meta.PhysicalRecordLength, meta.PageLength,
		boolToInt(meta.VariableLengthRecords), schemaVersion, meta.ACSName, meta.ACS)
	if err != nil {
		return fmt.Errorf("sqlstore: inserting metadata row: %w", err)
	}
	return nil
}

func loadMetadataRow(db *sql.DB) (Metadata, error) {
	const stmt = `SELECT record_length, physical_record_length, page_length, variable_length_records, version, acs_name, acs FROM metadata_t`
	var (
		meta       Metadata
		variable   int
		acsName    sql.NullString
		acs        []byte
	)
	row := db.QueryRow(stmt)
	if err := row.Scan(&meta.RecordLength, &meta.PhysicalRecordLength, &meta.PageLength, &variable, &meta.Version, &acsName, &acs); err != nil {
		return Metadata{}, fmt.Errorf("sqlstore: loading metadata row: %w", err)
	}
	meta.VariableLengthRecords = variable != 0
	meta.ACSName = acsName.String
	meta.ACS = acs
	return meta, nil
}

func insertKeyRows(ctx context.Context, db *sql.DB, keys []keydef.Key) error {
	const stmt = `INSERT INTO keys_t (number, segment, attributes, data_type, offset, length, null_value) VALUES (?, ?, ?, ?, ?, ?, ?)`
	prep, err := db.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("sqlstore: preparing key insert: %w", err)
	}
	defer prep.Close()

	for _, k := range keys {
		for _, seg := range k.Segments() {
			_, err := prep.ExecContext(ctx, seg.Number, seg.SegmentIndex, uint16(seg.Attributes), uint8(seg.DataType), seg.Offset, seg.Length, seg.NullValue)
			if err != nil {
				return fmt.Errorf("sqlstore: inserting key row: %w", err)
			}
		}
	}
	return nil
}

func loadKeyRows(db *sql.DB, acsTable []byte) ([]keydef.Key, error) {
	const stmt = `SELECT number, segment, attributes, data_type, offset, length, null_value FROM keys_t ORDER BY number, segment`
	rows, err := db.Query(stmt)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: loading key rows: %w", err)
	}
	defer rows.Close()

	grouped := map[uint16][]keydef.Segment{}
	var order []uint16
	for rows.Next() {
		var number, segment uint16
		var attrs uint16
		var dataType uint8
		var offset, length uint16
		var nullValue uint8
		if err := rows.Scan(&number, &segment, &attrs, &dataType, &offset, &length, &nullValue); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning key row: %w", err)
		}
		var acs []byte
		if keydef.Attribute(attrs).Has(keydef.NumberedACS) {
			acs = acsTable
		}
		seg, err := keydef.NewSegment(number, length, offset, keydef.DataType(dataType), keydef.Attribute(attrs), segment, byte(nullValue), "", acs)
		if err != nil {
			return nil, err
		}
		if _, ok := grouped[number]; !ok {
			order = append(order, number)
		}
		grouped[number] = append(grouped[number], seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: reading key rows: %w", err)
	}

	keys := make([]keydef.Key, 0, len(order))
	for _, n := range order {
		key, err := keydef.NewKey(grouped[n])
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func insertDataSQL(keys []keydef.Key) string {
	var cols strings.Builder
	var params strings.Builder
	cols.WriteString("data")
	params.WriteString("?")
	for i := range keys {
		fmt.Fprintf(&cols, ", %s", keydef.SQLColumnName(i))
		params.WriteString(", ?")
	}
	return fmt.Sprintf("INSERT INTO data_t (%s) VALUES (%s)", cols.String(), params.String())
}

func keyColumnValues(keys []keydef.Key, record []byte) ([]any, error) {
	values := make([]any, len(keys))
	for i, k := range keys {
		v, err := k.ToTypedValue(record)
		if err != nil {
			return nil, err
		}
		values[i] = v.SQLParam()
	}
	return values, nil
}

func insertRecordRow(ctx context.Context, stmt *sql.Stmt, keys []keydef.Key, record []byte) error {
	keyValues, err := keyColumnValues(keys, record)
	if err != nil {
		return err
	}
	args := make([]any, 0, 1+len(keyValues))
	args = append(args, record)
	args = append(args, keyValues...)
	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		return wrapSQLError(err)
	}
	return nil
}
