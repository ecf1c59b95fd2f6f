package sqlstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errFileExists            = errors.New("sqlstore: file already exists")
	errNotFound              = errors.New("sqlstore: no such row")
	errNonModifiable         = errors.New("sqlstore: update would change a non-modifiable key")
	errAutoIncrementOverflow = errors.New("sqlstore: auto-increment value overflows key length")
)

// DuplicateKeyError reports which key number's UNIQUE constraint was
// violated by an insert or update.
type DuplicateKeyError struct {
	KeyNumber int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("sqlstore: duplicate value for key %d", e.KeyNumber)
}

// wrapSQLError classifies a raw database/sql error into the store's
// error vocabulary; a UNIQUE constraint violation becomes a
// *DuplicateKeyError naming the offending key column when it can be
// identified from the driver message.
func wrapSQLError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		keyNum := -1
		for i := range 64 {
			col := fmt.Sprintf("key_%d", i)
			if strings.Contains(msg, "data_t."+col) {
				keyNum = i
				break
			}
		}
		return &DuplicateKeyError{KeyNumber: keyNum}
	}
	return fmt.Errorf("sqlstore: %w", err)
}
