package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/joshuapare/btrievekit/internal/keydef"
)

func mustKey(t *testing.T, number, length, offset uint16, dt keydef.DataType, attrs keydef.Attribute) keydef.Key {
	t.Helper()
	seg, err := keydef.NewSegment(number, length, offset, dt, attrs, 0, 0, "", nil)
	if err != nil {
		t.Fatalf("NewSegment: %v", err)
	}
	key, err := keydef.NewKey([]keydef.Segment{seg})
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	return key
}

func testMeta() Metadata {
	return Metadata{RecordLength: 8, PhysicalRecordLength: 8, PageLength: 512, Version: schemaVersion}
}

func TestCreateOpenInsertSelect(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	keys := []keydef.Key{mustKey(t, 0, 4, 0, keydef.Integer, keydef.Modifiable)}

	records := [][]byte{
		{1, 0, 0, 0, 0xAA, 0xBB, 0xCC, 0xDD},
		{2, 0, 0, 0, 0x11, 0x22, 0x33, 0x44},
	}
	idx := 0
	source := func(consume func([]byte) bool) error {
		for idx < len(records) {
			if !consume(records[idx]) {
				return nil
			}
			idx++
		}
		return nil
	}

	if err := Create(path, testMeta(), keys, source); err != nil {
		t.Fatalf("Create: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	count, err := store.RecordCount(ctx)
	if err != nil {
		t.Fatalf("RecordCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 records, got %d", count)
	}

	body, err := store.Select(ctx, 1)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if string(body) != string(records[0]) {
		t.Fatalf("Select(1) = %v, want %v", body, records[0])
	}
}

func TestInsertUpdateDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	keys := []keydef.Key{mustKey(t, 0, 4, 0, keydef.Integer, keydef.Modifiable)}

	noRecords := func(consume func([]byte) bool) error { return nil }
	if err := Create(path, testMeta(), keys, noRecords); err != nil {
		t.Fatalf("Create: %v", err)
	}
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	pos, _, err := store.Insert(ctx, []byte{5, 0, 0, 0, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if pos != 1 {
		t.Fatalf("expected position 1, got %d", pos)
	}

	if err := store.Update(ctx, pos, []byte{5, 0, 0, 0, 9, 9, 9, 9}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	body, err := store.Select(ctx, pos)
	if err != nil {
		t.Fatalf("Select after update: %v", err)
	}
	if body[4] != 9 {
		t.Fatalf("update did not persist: %v", body)
	}

	if err := store.Delete(ctx, pos); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Select(ctx, pos); err == nil {
		t.Fatalf("expected error selecting deleted row")
	}
}

func TestUpdateNonModifiableKeyRejected(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	keys := []keydef.Key{mustKey(t, 0, 4, 0, keydef.Integer, 0)} // no Modifiable bit

	noRecords := func(consume func([]byte) bool) error { return nil }
	if err := Create(path, testMeta(), keys, noRecords); err != nil {
		t.Fatalf("Create: %v", err)
	}
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	pos, _, err := store.Insert(ctx, []byte{5, 0, 0, 0, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err = store.Update(ctx, pos, []byte{6, 0, 0, 0, 1, 2, 3, 4})
	if err != errNonModifiable {
		t.Fatalf("expected errNonModifiable, got %v", err)
	}
}

func TestStepFirstLastNextPrevious(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	keys := []keydef.Key{mustKey(t, 0, 4, 0, keydef.Integer, keydef.Modifiable)}

	noRecords := func(consume func([]byte) bool) error { return nil }
	if err := Create(path, testMeta(), keys, noRecords); err != nil {
		t.Fatalf("Create: %v", err)
	}
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	for i := 1; i <= 3; i++ {
		if _, _, err := store.Insert(ctx, []byte{byte(i), 0, 0, 0, 0, 0, 0, 0}); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	first, _, err := store.StepFirst(ctx)
	if err != nil || first != 1 {
		t.Fatalf("StepFirst = %d, %v", first, err)
	}
	next, _, err := store.StepNext(ctx, first)
	if err != nil || next != 2 {
		t.Fatalf("StepNext = %d, %v", next, err)
	}
	if _, _, err := store.StepPrevious(ctx, first); err == nil {
		t.Fatalf("expected error stepping previous from row 1")
	}
	last, _, err := store.StepLast(ctx)
	if err != nil || last != 3 {
		t.Fatalf("StepLast = %d, %v", last, err)
	}
	if _, _, err := store.StepNext(ctx, last); err == nil {
		t.Fatalf("expected error stepping next from last row")
	}
}

func TestCursorDuplicateKeyDirectionReversal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	keys := []keydef.Key{mustKey(t, 0, 4, 0, keydef.Integer, keydef.Modifiable|keydef.Duplicates)}

	noRecords := func(consume func([]byte) bool) error { return nil }
	if err := Create(path, testMeta(), keys, noRecords); err != nil {
		t.Fatalf("Create: %v", err)
	}
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	// Three rows sharing key value 7.
	for i := 0; i < 3; i++ {
		if _, _, err := store.Insert(ctx, []byte{7, 0, 0, 0, byte(i), 0, 0, 0}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	c := store.NewCursor(0)
	id1, _, err := c.First(ctx)
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	id2, _, err := c.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("expected monotonically increasing ids, got %d then %d", id1, id2)
	}

	// Reverse direction then come back forward across the duplicate run.
	if _, _, err := c.Last(ctx); err != nil {
		t.Fatalf("Last: %v", err)
	}
	if _, _, err := c.Previous(ctx); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if _, _, err := c.Next(ctx); err != nil {
		t.Fatalf("Next after reversal: %v", err)
	}
}
