package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/joshuapare/btrievekit/internal/keydef"
	"github.com/joshuapare/btrievekit/internal/lru"
)

// recordCacheSize is the record cache's fixed capacity (spec.md §4.G
// "Record cache").
const recordCacheSize = 64

// RecordSource streams decoded records; it returns an error only when
// decoding itself fails, per legacyfile.Walk's contract.
type RecordSource func(consume func(record []byte) (keepGoing bool)) error

// Store is a single open SQL-backed database. The store-level mutex
// serializes every mutation; read paths hold it only for the duration of
// a single statement (spec.md §5 "Shared resources").
type Store struct {
	db    *sql.DB
	mu    sync.Mutex
	meta  Metadata
	keys  []keydef.Key
	cache *lru.Cache
}

// Create builds the three-table schema at path and inserts every record
// yielded by records. On any failure the caller must remove the partial
// output file (spec.md §4.G "create").
func Create(path string, meta Metadata, keys []keydef.Key, records RecordSource) error {
	if _, err := os.Stat(path); err == nil {
		return errFileExists
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlstore: opening %s: %w", path, err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := createSchema(ctx, db, keys); err != nil {
		return err
	}
	if err := insertMetadataRow(ctx, db, meta); err != nil {
		return err
	}
	if err := insertKeyRows(ctx, db, keys); err != nil {
		return err
	}

	insertStmt, err := db.PrepareContext(ctx, insertDataSQL(keys))
	if err != nil {
		return fmt.Errorf("sqlstore: preparing insert: %w", err)
	}
	defer insertStmt.Close()

	var walkErr error
	err = records(func(record []byte) bool {
		if err := insertRecordRow(ctx, insertStmt, keys, record); err != nil {
			walkErr = err
			return false
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("sqlstore: decoding records: %w", err)
	}
	if walkErr != nil {
		return walkErr
	}
	return nil
}

// Open loads metadata and key definitions back from an existing store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s: %w", path, err)
	}

	meta, err := loadMetadataRow(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	keys, err := loadKeyRows(db, meta.ACS)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:    db,
		meta:  meta,
		keys:  keys,
		cache: lru.New(recordCacheSize),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Metadata returns the store's decoded metadata row.
func (s *Store) Metadata() Metadata { return s.meta }

// Keys returns the store's reconstructed key list.
func (s *Store) Keys() []keydef.Key { return s.keys }

// RecordCount returns the number of rows currently in data_t.
func (s *Store) RecordCount(ctx context.Context) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n uint32
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM data_t").Scan(&n)
	if err != nil {
		return 0, wrapSQLError(err)
	}
	return n, nil
}
