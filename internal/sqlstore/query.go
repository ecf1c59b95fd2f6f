package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joshuapare/btrievekit/internal/cursor"
	"github.com/joshuapare/btrievekit/internal/keydef"
)

// Cursor is a key-ordered cursor over one column of data_t, implementing
// the Seek/Forward/Reverse state machine and the duplicate-key
// direction-reversal reseek of spec.md §4.H.
type Cursor struct {
	store     *Store
	keyNumber int
	column    string
	direction cursor.Direction
	lastKey   any
	lastID    int64
	open      bool
}

// NewCursor opens a cursor over keyNumber, initially unpositioned.
func (s *Store) NewCursor(keyNumber int) *Cursor {
	return &Cursor{
		store:     s,
		keyNumber: keyNumber,
		column:    keydef.SQLColumnName(keyNumber),
		direction: cursor.Seek,
	}
}

// KeyNumber reports which key this cursor is ordered over.
func (c *Cursor) KeyNumber() int { return c.keyNumber }

func (c *Cursor) query1(ctx context.Context, sqlText string, args ...any) (int64, []byte, any, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	row := c.store.db.QueryRowContext(ctx, sqlText, args...)
	var id int64
	var data []byte
	var key any
	if err := row.Scan(&id, &data, &key); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil, nil, errNotFound
		}
		return 0, nil, nil, wrapSQLError(err)
	}
	return id, data, key, nil
}

func (c *Cursor) settle(id int64, key any, dir cursor.Direction) {
	c.lastID = id
	c.lastKey = key
	c.direction = dir
	c.open = true
}

// First selects the lowest key-ordered row.
func (c *Cursor) First(ctx context.Context) (uint32, []byte, error) {
	stmt := fmt.Sprintf("SELECT id, data, %s FROM data_t ORDER BY %s ASC, id ASC LIMIT 1", c.column, c.column)
	id, data, key, err := c.query1(ctx, stmt)
	if err != nil {
		return 0, nil, err
	}
	c.settle(id, key, cursor.Forward)
	return uint32(id), data, nil
}

// Last selects the highest key-ordered row.
func (c *Cursor) Last(ctx context.Context) (uint32, []byte, error) {
	stmt := fmt.Sprintf("SELECT id, data, %s FROM data_t ORDER BY %s DESC, id DESC LIMIT 1", c.column, c.column)
	id, data, key, err := c.query1(ctx, stmt)
	if err != nil {
		return 0, nil, err
	}
	c.settle(id, key, cursor.Reverse)
	return uint32(id), data, nil
}

// Equal selects the first row whose key column equals value.
func (c *Cursor) Equal(ctx context.Context, value any) (uint32, []byte, error) {
	stmt := fmt.Sprintf("SELECT id, data, %s FROM data_t WHERE %s = ? ORDER BY id ASC LIMIT 1", c.column, c.column)
	id, data, key, err := c.query1(ctx, stmt, value)
	if err != nil {
		return 0, nil, err
	}
	c.settle(id, key, cursor.Forward)
	return uint32(id), data, nil
}

// Greater selects the first row whose key column exceeds value, ordered
// ascending.
func (c *Cursor) Greater(ctx context.Context, value any) (uint32, []byte, error) {
	return c.compareForward(ctx, ">", value)
}

// GreaterOrEqual selects the first row whose key column is >= value.
func (c *Cursor) GreaterOrEqual(ctx context.Context, value any) (uint32, []byte, error) {
	return c.compareForward(ctx, ">=", value)
}

func (c *Cursor) compareForward(ctx context.Context, op string, value any) (uint32, []byte, error) {
	stmt := fmt.Sprintf("SELECT id, data, %s FROM data_t WHERE %s %s ? ORDER BY %s ASC, id ASC LIMIT 1", c.column, c.column, op, c.column)
	id, data, key, err := c.query1(ctx, stmt, value)
	if err != nil {
		return 0, nil, err
	}
	c.settle(id, key, cursor.Forward)
	return uint32(id), data, nil
}

// Less selects the first row whose key column is less than value,
// ordered descending.
func (c *Cursor) Less(ctx context.Context, value any) (uint32, []byte, error) {
	return c.compareReverse(ctx, "<", value)
}

// LessOrEqual selects the first row whose key column is <= value.
func (c *Cursor) LessOrEqual(ctx context.Context, value any) (uint32, []byte, error) {
	return c.compareReverse(ctx, "<=", value)
}

func (c *Cursor) compareReverse(ctx context.Context, op string, value any) (uint32, []byte, error) {
	stmt := fmt.Sprintf("SELECT id, data, %s FROM data_t WHERE %s %s ? ORDER BY %s DESC, id DESC LIMIT 1", c.column, c.column, op, c.column)
	id, data, key, err := c.query1(ctx, stmt, value)
	if err != nil {
		return 0, nil, err
	}
	c.settle(id, key, cursor.Reverse)
	return uint32(id), data, nil
}

// Next advances the cursor. If the cursor is currently Reverse, this is
// a direction reversal: the previously served row identity must still
// exist with the same key value, or KeyValueNotFound results (spec.md
// §4.H "Direction reversal around duplicate keys").
func (c *Cursor) Next(ctx context.Context) (uint32, []byte, error) {
	if !c.open {
		return 0, nil, errNotFound
	}
	if cursor.Reversed(c.direction, cursor.OpNext) {
		if err := c.verifyAnchorStillPresent(ctx); err != nil {
			return 0, nil, err
		}
	}
	stmt := fmt.Sprintf(
		"SELECT id, data, %s FROM data_t WHERE %s > ? OR (%s = ? AND id > ?) ORDER BY %s ASC, id ASC LIMIT 1",
		c.column, c.column, c.column, c.column)
	id, data, key, err := c.query1(ctx, stmt, c.lastKey, c.lastKey, c.lastID)
	if err != nil {
		return 0, nil, err
	}
	c.settle(id, key, cursor.Forward)
	return uint32(id), data, nil
}

// Previous retreats the cursor, mirroring Next for the Reverse
// direction.
func (c *Cursor) Previous(ctx context.Context) (uint32, []byte, error) {
	if !c.open {
		return 0, nil, errNotFound
	}
	if cursor.Reversed(c.direction, cursor.OpPrevious) {
		if err := c.verifyAnchorStillPresent(ctx); err != nil {
			return 0, nil, err
		}
	}
	stmt := fmt.Sprintf(
		"SELECT id, data, %s FROM data_t WHERE %s < ? OR (%s = ? AND id < ?) ORDER BY %s DESC, id DESC LIMIT 1",
		c.column, c.column, c.column, c.column)
	id, data, key, err := c.query1(ctx, stmt, c.lastKey, c.lastKey, c.lastID)
	if err != nil {
		return 0, nil, err
	}
	c.settle(id, key, cursor.Reverse)
	return uint32(id), data, nil
}

// verifyAnchorStillPresent checks that the row last served by this
// cursor, identified by (lastID, lastKey), still exists. A reversal
// reseeks relative to that row, so if it was deleted mid-cursor the
// reversal cannot be resolved (spec.md §4.H).
func (c *Cursor) verifyAnchorStillPresent(ctx context.Context) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	stmt := fmt.Sprintf("SELECT 1 FROM data_t WHERE id = ? AND %s = ?", c.column)
	var one int
	err := c.store.db.QueryRowContext(ctx, stmt, c.lastID, c.lastKey).Scan(&one)
	if err == sql.ErrNoRows {
		return errNotFound
	}
	if err != nil {
		return wrapSQLError(err)
	}
	return nil
}

// LogicalCurrencySeek opens a cursor over keyNumber starting at the key
// value held by the row at position (spec.md §4.G
// "logicalCurrencySeek").
func (s *Store) LogicalCurrencySeek(ctx context.Context, keyNumber int, position uint32) (*Cursor, uint32, []byte, error) {
	record, err := s.Select(ctx, position)
	if err != nil {
		return nil, 0, nil, err
	}
	value, err := s.keys[keyNumber].ToTypedValue(record)
	if err != nil {
		return nil, 0, nil, err
	}
	c := s.NewCursor(keyNumber)
	if _, _, err := c.Equal(ctx, value.SQLParam()); err != nil {
		return c, 0, nil, err
	}
	// Equal serves the lowest-id row holding this key value; anchor the
	// cursor on position itself so Next/Previous step from that row even
	// when other rows share its key value.
	c.lastID = int64(position)
	return c, position, record, nil
}
