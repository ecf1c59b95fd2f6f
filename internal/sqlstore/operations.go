package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joshuapare/btrievekit/internal/keydef"
)

// Insert adds record as a new row, auto-filling any all-zero
// auto-increment key field with max(existing)+1 within the same
// transaction (spec.md §4.G "Triggers / automation"). Returns the new
// row's position and, when auto-increment filled a field, the mutated
// record bytes.
func (s *Store) Insert(ctx context.Context, record []byte) (position uint32, stored []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, wrapSQLError(err)
	}
	defer tx.Rollback()

	stored = append([]byte(nil), record...)
	for _, k := range s.keys {
		if !k.IsAutoIncrement() {
			continue
		}
		seg := k.Primary()
		end := int(seg.Offset) + int(seg.Length)
		if end > len(stored) || !allZero(stored[seg.Offset:end]) {
			continue
		}
		next, err := nextAutoIncrementValue(ctx, tx, k)
		if err != nil {
			return 0, nil, err
		}
		if err := putLittleEndianUnsigned(stored[seg.Offset:end], next); err != nil {
			return 0, nil, err
		}
	}

	keyValues, err := keyColumnValues(s.keys, stored)
	if err != nil {
		return 0, nil, err
	}
	args := make([]any, 0, 1+len(keyValues))
	args = append(args, stored)
	args = append(args, keyValues...)

	res, err := tx.ExecContext(ctx, insertDataSQL(s.keys), args...)
	if err != nil {
		return 0, nil, wrapSQLError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, nil, wrapSQLError(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, nil, wrapSQLError(err)
	}
	return uint32(id), stored, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func putLittleEndianUnsigned(dst []byte, v uint64) error {
	if len(dst) < 8 && v>>(8*uint(len(dst))) != 0 {
		return errAutoIncrementOverflow
	}
	for i := range dst {
		dst[i] = byte(v >> (8 * uint(i)))
	}
	return nil
}

func nextAutoIncrementValue(ctx context.Context, tx *sql.Tx, k keydef.Key) (uint64, error) {
	col := keydef.SQLColumnName(int(k.Number()))
	var maxVal sql.NullInt64
	row := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(%s) FROM data_t", col))
	if err := row.Scan(&maxVal); err != nil {
		return 0, wrapSQLError(err)
	}
	if !maxVal.Valid {
		return 1, nil
	}
	return uint64(maxVal.Int64) + 1, nil
}

// Update replaces the data and key columns for the row at position.
// Rejects when the submitted bytes would change a non-modifiable key's
// value (spec.md §4.G "update").
func (s *Store) Update(ctx context.Context, position uint32, record []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.selectLocked(ctx, position)
	if err != nil {
		return err
	}

	for _, k := range s.keys {
		if k.IsModifiable() {
			continue
		}
		before, err := k.Extract(current)
		if err != nil {
			return err
		}
		after, err := k.Extract(record)
		if err != nil {
			return err
		}
		if string(before) != string(after) {
			return errNonModifiable
		}
	}

	keyValues, err := keyColumnValues(s.keys, record)
	if err != nil {
		return err
	}

	setClause := "data = ?"
	args := []any{record}
	for i := range s.keys {
		setClause += fmt.Sprintf(", %s = ?", keydef.SQLColumnName(i))
		args = append(args, keyValues[i])
	}
	args = append(args, position)

	_, err = s.db.ExecContext(ctx, fmt.Sprintf("UPDATE data_t SET %s WHERE id = ?", setClause), args...)
	if err != nil {
		return wrapSQLError(err)
	}
	s.cache.Invalidate(position)
	return nil
}

// Delete removes the row at position and invalidates it in the cache.
func (s *Store) Delete(ctx context.Context, position uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, "DELETE FROM data_t WHERE id = ?", position)
	if err != nil {
		return wrapSQLError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapSQLError(err)
	}
	if n == 0 {
		return errNotFound
	}
	s.cache.Invalidate(position)
	return nil
}

// DeleteAll empties data_t and resets the record cache.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM data_t"); err != nil {
		return wrapSQLError(err)
	}
	s.cache.Reset()
	return nil
}

// Select returns the record body for position, consulting the cache
// first.
func (s *Store) Select(ctx context.Context, position uint32) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(ctx, position)
}

func (s *Store) selectLocked(ctx context.Context, position uint32) ([]byte, error) {
	if body, ok := s.cache.Get(position); ok {
		return body, nil
	}
	var body []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM data_t WHERE id = ?", position).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errNotFound
	}
	if err != nil {
		return nil, wrapSQLError(err)
	}
	s.cache.Put(position, body)
	return body, nil
}

// StepFirst returns the lowest-id row.
func (s *Store) StepFirst(ctx context.Context) (uint32, []byte, error) {
	return s.stepBoundary(ctx, "MIN")
}

// StepLast returns the highest-id row.
func (s *Store) StepLast(ctx context.Context) (uint32, []byte, error) {
	return s.stepBoundary(ctx, "MAX")
}

func (s *Store) stepBoundary(ctx context.Context, fn string) (uint32, []byte, error) {
	s.mu.Lock()
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT %s(id) FROM data_t", fn)).Scan(&id)
	s.mu.Unlock()
	if err != nil {
		return 0, nil, wrapSQLError(err)
	}
	if !id.Valid {
		return 0, nil, errNotFound
	}
	position := uint32(id.Int64)
	body, err := s.Select(ctx, position)
	return position, body, err
}

// StepNext advances physical position by ascending id; StepPrevious
// retreats by descending id. Both report errNotFound at either boundary
// (spec.md §4.G "stepFirst/Last/Next/Previous").
func (s *Store) StepNext(ctx context.Context, position uint32) (uint32, []byte, error) {
	return s.stepAdjacent(ctx, position, "id > ? ORDER BY id ASC")
}

func (s *Store) StepPrevious(ctx context.Context, position uint32) (uint32, []byte, error) {
	return s.stepAdjacent(ctx, position, "id < ? ORDER BY id DESC")
}

func (s *Store) stepAdjacent(ctx context.Context, position uint32, whereOrder string) (uint32, []byte, error) {
	s.mu.Lock()
	var id int64
	var body []byte
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT id, data FROM data_t WHERE %s LIMIT 1", whereOrder), position).Scan(&id, &body)
	s.mu.Unlock()
	if err == sql.ErrNoRows {
		return 0, nil, errNotFound
	}
	if err != nil {
		return 0, nil, wrapSQLError(err)
	}
	newPosition := uint32(id)
	s.mu.Lock()
	s.cache.Put(newPosition, body)
	s.mu.Unlock()
	return newPosition, body, nil
}
