// Package btrieve implements the record-manager call-semantics facade
// described by spec.md: a per-handle cursor/driver exposing open/close,
// insert/update/delete, physical step, and key-ordered query operations
// over a legacy Btrieve v5 file loaded into a SQL-backed store.
package btrieve

import (
	"context"
	"path/filepath"

	"github.com/joshuapare/btrievekit/internal/keydef"
	"github.com/joshuapare/btrievekit/internal/sqlstore"
	"github.com/joshuapare/btrievekit/internal/typedvalue"
)

// OpenMode is the key-number argument to the Open operation (spec.md §6).
type OpenMode int

const (
	ModeNormal      OpenMode = 0
	ModeAccelerated OpenMode = -1
	ModeReadOnly    OpenMode = -2
	ModeVerifyWrite OpenMode = -3
	ModeExclusive   OpenMode = -4
)

// Handle is a single open reference to a store (spec.md §4.I "Driver
// facade"). A Handle is not safe for concurrent use: the record-manager
// model serializes every handle's operations (spec.md §5).
type Handle struct {
	store          *sqlstore.Store
	keys           []keydef.Key
	openedFilename string
	mode           OpenMode

	position      uint32
	positioned    bool
	previousQuery *sqlstore.Cursor
}

// Open opens the store at path (spec.md §6, operation 0x00). A second
// Open of the same canonical path returns a second Handle sharing the
// underlying store and key metadata.
func Open(path string, mode OpenMode) (*Handle, *Error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, wrapIOError("resolving path", err)
	}
	store, err := acquireStore(abs)
	if err != nil {
		return nil, newError(FileNotFound, "opening "+abs, err)
	}
	return &Handle{
		store:          store,
		keys:           store.Keys(),
		openedFilename: abs,
		mode:           mode,
	}, nil
}

// Close releases the handle, dropping its reference to the shared store
// (spec.md §6, operation 0x01).
func (h *Handle) Close() *Error {
	if err := releaseStore(h.openedFilename); err != nil {
		return wrapIOError("closing "+h.openedFilename, err)
	}
	return nil
}

// Stop closes every open handle process-wide (spec.md §6, operation
// 0x19).
func Stop() *Error {
	if err := stopAll(); err != nil {
		return wrapIOError("stopping", err)
	}
	return nil
}

// Position returns the handle's current row identity (0 means
// unpositioned).
func (h *Handle) Position() uint32 { return h.position }

// Keys returns the handle's key list, as loaded from the store.
func (h *Handle) Keys() []keydef.Key { return h.keys }

func (h *Handle) checkKeyNumber(keyNumber int) *Error {
	if keyNumber < 0 || keyNumber >= len(h.keys) {
		return ErrInvalidKeyNumber
	}
	return nil
}

func (h *Handle) checkKeyBuffer(keyNumber int, keyBuf []byte) *Error {
	if len(keyBuf) < h.keys[keyNumber].Length() {
		return ErrKeyBufferTooShort
	}
	return nil
}

func (h *Handle) checkDataBuffer(dataBuf, record []byte) *Error {
	if len(dataBuf) < len(record) {
		return ErrDataBufferOverrun
	}
	return nil
}

// copyKeyBack writes the key value for record's keyNumber-th key into
// keyBuf, when one was supplied (spec.md §4.I "Insert/update: ... after
// success the key value ... is copied back").
func (h *Handle) copyKeyBack(keyNumber int, keyBuf, record []byte) *Error {
	if keyBuf == nil {
		return nil
	}
	raw, err := h.keys[keyNumber].Extract(record)
	if err != nil {
		return wrapIOError("extracting key for copy-back", err)
	}
	copy(keyBuf, raw)
	return nil
}

// Insert creates a new row from data. If keyBuf is non-nil, the
// inserted row's keyNumber-th key value is copied back into it — this
// is how an auto-increment value becomes visible to the caller (spec.md
// §4.I, §4.G "Triggers").
func (h *Handle) Insert(data []byte, keyNumber int, keyBuf []byte) *Error {
	if keyBuf != nil {
		if e := h.checkKeyNumber(keyNumber); e != nil {
			return e
		}
		if e := h.checkKeyBuffer(keyNumber, keyBuf); e != nil {
			return e
		}
	}
	pos, stored, err := h.store.Insert(context.Background(), data)
	if err != nil {
		return mapStoreError(err)
	}
	h.position = pos
	h.positioned = true
	if keyBuf != nil {
		return h.copyKeyBack(keyNumber, keyBuf, stored)
	}
	return nil
}

// Update replaces the row at the handle's current position with data.
func (h *Handle) Update(data []byte) *Error {
	if !h.positioned {
		return ErrInvalidPositioning
	}
	if err := h.store.Update(context.Background(), h.position, data); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// Delete removes the row at the handle's current position.
func (h *Handle) Delete() *Error {
	if !h.positioned {
		return ErrInvalidPositioning
	}
	if err := h.store.Delete(context.Background(), h.position); err != nil {
		return mapStoreError(err)
	}
	h.positioned = false
	return nil
}

// GetPosition returns the current row identity as a 32-bit value
// (spec.md §6, operation 0x16).
func (h *Handle) GetPosition() (uint32, *Error) {
	if !h.positioned {
		return 0, ErrInvalidPositioning
	}
	return h.position, nil
}

// GetDirectChunkOrRecord fetches the record at position, optionally also
// establishing a key cursor positioned at that row when keyNumber >= 0
// (spec.md §6, operation 0x17).
func (h *Handle) GetDirectChunkOrRecord(position uint32, keyNumber int, dataBuf []byte) ([]byte, *Error) {
	record, err := h.store.Select(context.Background(), position)
	if err != nil {
		return nil, newError(InvalidRecordAddress, "no record at position", err)
	}
	if e := h.checkDataBuffer(dataBuf, record); e != nil {
		return nil, e
	}
	if keyNumber >= 0 && keyNumber < len(h.keys) {
		c, _, _, err := h.store.LogicalCurrencySeek(context.Background(), keyNumber, position)
		if err == nil {
			h.previousQuery = c
		}
	}
	h.position = position
	h.positioned = true
	copy(dataBuf, record)
	return record, nil
}

// stepResult applies a physical-step outcome: on success it updates
// position; on failure it restores the prior position unchanged
// (spec.md §7 "Propagation policy").
func (h *Handle) stepResult(pos uint32, record []byte, err error) ([]byte, *Error) {
	if err != nil {
		if err.Error() == "sqlstore: no such row" {
			return nil, ErrInvalidPositioning
		}
		return nil, mapStoreError(err)
	}
	h.position = pos
	h.positioned = true
	return record, nil
}

// StepFirst/StepLast/StepNext/StepPrevious implement physical-order
// traversal by data_t.id (spec.md §6, operations 0x21/0x22/0x18/0x23).
func (h *Handle) StepFirst() ([]byte, *Error) {
	pos, rec, err := h.store.StepFirst(context.Background())
	return h.stepResult(pos, rec, err)
}

func (h *Handle) StepLast() ([]byte, *Error) {
	pos, rec, err := h.store.StepLast(context.Background())
	return h.stepResult(pos, rec, err)
}

func (h *Handle) StepNext() ([]byte, *Error) {
	if !h.positioned {
		return nil, ErrInvalidPositioning
	}
	pos, rec, err := h.store.StepNext(context.Background(), h.position)
	return h.stepResult(pos, rec, err)
}

func (h *Handle) StepPrevious() ([]byte, *Error) {
	if !h.positioned {
		return nil, ErrInvalidPositioning
	}
	pos, rec, err := h.store.StepPrevious(context.Background(), h.position)
	return h.stepResult(pos, rec, err)
}

// AcquireOp identifies which key-ordered read to perform (spec.md §6,
// operations 0x05-0x0D and the Query family 0x37-0x3F).
type AcquireOp int

const (
	AcquireEqual AcquireOp = iota
	AcquireNext
	AcquirePrevious
	AcquireGreater
	AcquireGreaterOrEqual
	AcquireLess
	AcquireLessOrEqual
	AcquireFirst
	AcquireLast
)

// Acquire performs a key-ordered read over keyNumber, copying the
// resulting key value back into keyBuf when supplied, and the record
// into dataBuf when copyData is true (Query* operations pass
// copyData=false; spec.md §6).
func (h *Handle) Acquire(op AcquireOp, keyNumber int, keyBuf, dataBuf []byte, copyData bool) ([]byte, *Error) {
	if e := h.checkKeyNumber(keyNumber); e != nil {
		return nil, e
	}
	if keyBuf != nil {
		if e := h.checkKeyBuffer(keyNumber, keyBuf); e != nil {
			return nil, e
		}
	}

	key := h.keys[keyNumber]
	ctx := context.Background()

	var c *sqlstore.Cursor
	if op == AcquireNext || op == AcquirePrevious {
		c = h.previousQuery
		if c == nil || c.KeyNumber() != keyNumber {
			return nil, ErrFileNotOpen
		}
	} else {
		c = h.store.NewCursor(keyNumber)
	}

	var value typedvalue.Value
	var err error
	if op == AcquireEqual || op == AcquireGreater || op == AcquireGreaterOrEqual || op == AcquireLess || op == AcquireLessOrEqual {
		if keyBuf == nil {
			return nil, ErrKeyBufferTooShort
		}
		value, err = decodeKeyBuffer(key, keyBuf)
		if err != nil {
			return nil, wrapIOError("decoding key buffer", err)
		}
	}

	var pos uint32
	var record []byte
	switch op {
	case AcquireFirst:
		pos, record, err = c.First(ctx)
	case AcquireLast:
		pos, record, err = c.Last(ctx)
	case AcquireEqual:
		pos, record, err = c.Equal(ctx, value.SQLParam())
	case AcquireGreater:
		pos, record, err = c.Greater(ctx, value.SQLParam())
	case AcquireGreaterOrEqual:
		pos, record, err = c.GreaterOrEqual(ctx, value.SQLParam())
	case AcquireLess:
		pos, record, err = c.Less(ctx, value.SQLParam())
	case AcquireLessOrEqual:
		pos, record, err = c.LessOrEqual(ctx, value.SQLParam())
	case AcquireNext:
		pos, record, err = c.Next(ctx)
	case AcquirePrevious:
		pos, record, err = c.Previous(ctx)
	}
	if err != nil {
		return nil, ErrKeyValueNotFound
	}

	if dataBuf != nil {
		if e := h.checkDataBuffer(dataBuf, record); e != nil {
			return nil, e
		}
	}

	h.previousQuery = c
	h.position = pos
	h.positioned = true

	if copyData && dataBuf != nil {
		copy(dataBuf, record)
	}
	if e := h.copyKeyBack(keyNumber, keyBuf, record); e != nil {
		return nil, e
	}
	return record, nil
}

// decodeKeyBuffer converts a caller-supplied key buffer into the same
// typed domain Keys in the store are indexed under, so cursor
// comparisons operate in the right SQL type.
func decodeKeyBuffer(key keydef.Key, keyBuf []byte) (typedvalue.Value, error) {
	// Key.ToTypedValue expects a full record laid out at the segments'
	// declared offsets; a caller-supplied key buffer is already just the
	// extracted bytes (pre-ACS), so build a synthetic record wide enough
	// to host them at those offsets and reuse the same conversion path,
	// which re-applies ACS itself.
	record := syntheticRecordFor(key, keyBuf[:key.Length()])
	return key.ToTypedValue(record)
}

func syntheticRecordFor(key keydef.Key, keyData []byte) []byte {
	maxEnd := 0
	for _, seg := range key.Segments() {
		end := int(seg.Offset) + int(seg.Length)
		if end > maxEnd {
			maxEnd = end
		}
	}
	record := make([]byte, maxEnd)
	pos := 0
	for _, seg := range key.Segments() {
		n := int(seg.Length)
		copy(record[seg.Offset:int(seg.Offset)+n], keyData[pos:pos+n])
		pos += n
	}
	return record
}

// mapStoreError translates a *sqlstore error into the public error
// taxonomy (spec.md §7 "Propagation policy").
func mapStoreError(err error) *Error {
	if err == nil {
		return nil
	}
	if dup, ok := err.(*sqlstore.DuplicateKeyError); ok {
		return duplicateKeyError(uint16(dup.KeyNumber))
	}
	switch {
	case err.Error() == "sqlstore: no such row":
		return ErrInvalidRecordAddress
	case err.Error() == "sqlstore: update would change a non-modifiable key":
		return ErrNonModifiableKeyValue
	case err.Error() == "sqlstore: auto-increment value overflows key length":
		return badKeyLengthError("auto-increment value no longer fits the key's declared length")
	default:
		return wrapIOError("store operation", err)
	}
}
