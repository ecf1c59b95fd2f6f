package btrieve

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Byte offsets from spec.md §4.D / §6, duplicated here (not imported from
// internal/legacyfile, which keeps them unexported) to build a
// byte-exact MBBSEMU.DAT-shaped fixture for end-to-end facade tests.
const (
	offVersion       = 0x06
	offPageLength    = 0x08
	offAccelFlags    = 0x0A
	offDeletedHead   = 0x10
	offKeyCount      = 0x14
	offRecordLength  = 0x16
	offPhysicalLen   = 0x18
	offRecordCount   = 0x1A
	offConsistency   = 0x22
	offVarLenFlags   = 0x106
	offVarPtrMarker  = 0x38
	offKeyTable      = 0x110
	keyDefLength     = 0x1E
	keyDefOffAttrs   = 0x08
	keyDefOffOffset  = 0x14
	keyDefOffLength  = 0x16
	keyDefOffDType   = 0x1C
	keyDefOffNullVal = 0x1D
	recordAreaStart  = 6
	usageCountOffset = 5
)

func leU16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func leU32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }

func putI32(b []byte, v int32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

type mbbsemuKeyDef struct {
	offset, length uint16
	dataType       byte
	attrs          uint16
}

// buildMBBSEMULike assembles a fixed-length legacy file matching spec.md
// §8's MBBSEMU.DAT scenario.
func buildMBBSEMULike(t *testing.T) []byte {
	t.Helper()
	const (
		pageLength           = 512
		recordLength         = 74
		physicalRecordLength = 90
		recordCount          = 4
		pageCount            = 5
	)
	keyDefs := []mbbsemuKeyDef{
		{2, 32, 0x0B, 0x001},  // key0: Zstring, Duplicates
		{34, 4, 0x01, 0x002},  // key1: Integer, Modifiable
		{38, 32, 0x0B, 0x003}, // key2: Zstring, Duplicates|Modifiable
		{70, 4, 0x0F, 0x000},  // key3: AutoInc
	}

	data := make([]byte, pageLength*(pageCount+1))
	data[offVersion] = 5
	copy(data[offPageLength:], leU16(pageLength))
	copy(data[offAccelFlags:], leU16(0))
	copy(data[offDeletedHead:], leU32(0xFFFFFFFF))
	copy(data[offKeyCount:], leU16(uint16(len(keyDefs))))
	copy(data[offRecordLength:], leU16(recordLength))
	copy(data[offPhysicalLen:], leU16(physicalRecordLength))
	copy(data[offRecordCount:], leU16(uint16(recordCount>>16)))
	copy(data[offRecordCount+2:], leU16(uint16(recordCount&0xFFFF)))
	copy(data[offConsistency:], leU16(0))
	data[offVarLenFlags] = 0
	data[offVarPtrMarker] = 0

	offset := offKeyTable
	for _, kd := range keyDefs {
		rec := make([]byte, keyDefLength)
		attrs := kd.attrs | 0x100 // UseExtendedDataType
		copy(rec[keyDefOffAttrs:], leU16(attrs))
		copy(rec[keyDefOffOffset:], leU16(kd.offset))
		copy(rec[keyDefOffLength:], leU16(kd.length))
		rec[keyDefOffDType] = kd.dataType
		rec[keyDefOffNullVal] = 0
		copy(data[offset:], rec)
		offset += keyDefLength
	}

	rec := func(str1 string, int1 int32, str2 string, int2 int32) []byte {
		r := make([]byte, physicalRecordLength)
		copy(r[2:], str1)
		putI32(r[34:], int1)
		copy(r[38:], str2)
		putI32(r[70:], int2)
		return r
	}
	records := [][]byte{
		rec("Sysop", 3444, "3444", 1),
		rec("Sysop", 7776, "7776", 2),
		rec("Sysop", 1052234073, "StringValue", 3),
		rec("Sysop", -615634567, "stringValue", 4),
	}

	slotsPerPage := (pageLength - recordAreaStart) / physicalRecordLength
	for i, r := range records {
		page := 1 + i/slotsPerPage
		slot := i % slotsPerPage
		pageStart := page * pageLength
		if slot == 0 {
			data[pageStart+usageCountOffset] = 0x80
		}
		slotStart := pageStart + recordAreaStart + slot*physicalRecordLength
		copy(data[slotStart:slotStart+physicalRecordLength], r)
	}
	return data
}

func mustImport(t *testing.T) *Handle {
	t.Helper()
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "MBBSEMU.DAT")
	storePath := filepath.Join(dir, "store.db")
	require.NoError(t, os.WriteFile(legacyPath, buildMBBSEMULike(t), 0o644))

	if err := ImportLegacyFile(legacyPath, storePath, ImportOptions{}); err != nil {
		t.Fatalf("ImportLegacyFile: %v", err)
	}
	h, err := Open(storePath, ModeNormal)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestScenarioS1StepTraversal(t *testing.T) {
	h := mustImport(t)

	record, err := h.StepFirst()
	require.Nil(t, err)
	require.Equal(t, "Sysop", zstringAt(record, 2, 32))
	pos, err := h.GetPosition()
	require.Nil(t, err)
	require.Equal(t, uint32(1), pos)

	_, err = h.StepPrevious()
	require.NotNil(t, err)
	require.Equal(t, InvalidPositioning, err.Code)

	record, err = h.StepNext()
	require.Nil(t, err)
	require.Equal(t, int32(7776), int32(binary.LittleEndian.Uint32(record[34:38])))
	pos, err = h.GetPosition()
	require.Nil(t, err)
	require.Equal(t, uint32(2), pos)
}

func TestScenarioS2AcquireGreaterThenNext(t *testing.T) {
	h := mustImport(t)

	keyBuf := make([]byte, 4)
	putI32(keyBuf, 4000)
	record, err := h.Acquire(AcquireGreater, 1, keyBuf, nil, false)
	require.Nil(t, err)
	require.Equal(t, int32(7776), int32(binary.LittleEndian.Uint32(record[34:38])))
	require.Equal(t, int32(7776), int32(binary.LittleEndian.Uint32(keyBuf)))

	record, err = h.Acquire(AcquireNext, 1, keyBuf, nil, false)
	require.Nil(t, err)
	require.Equal(t, int32(1052234073), int32(binary.LittleEndian.Uint32(record[34:38])))
	require.Equal(t, int32(1052234073), int32(binary.LittleEndian.Uint32(keyBuf)))
}

func TestScenarioS3DuplicateKeyOnInsert(t *testing.T) {
	h := mustImport(t)

	rec := make([]byte, 74)
	copy(rec[2:], "Sysop")
	putI32(rec[34:], 3444)
	copy(rec[38:], "3444")

	err := h.Insert(rec, 3, make([]byte, 4))
	require.NotNil(t, err)
	require.Equal(t, DuplicateKeyValue, err.Code)

	spec, _, statErr := h.Stat()
	require.Nil(t, statErr)
	require.Equal(t, uint32(4), spec.RecordCount)
}

func TestScenarioS4UpdateModifiableKey(t *testing.T) {
	h := mustImport(t)

	record, err := h.StepLast()
	require.Nil(t, err)
	updated := append([]byte(nil), record...)
	putI32(updated[34:], -7000)
	require.Nil(t, h.Update(updated))

	pos, _ := h.GetPosition()
	fetched, err := h.GetDirectChunkOrRecord(pos, -1, make([]byte, 74))
	require.Nil(t, err)
	require.Equal(t, int32(-7000), int32(binary.LittleEndian.Uint32(fetched[34:38])))
	require.Equal(t, int32(4), int32(binary.LittleEndian.Uint32(fetched[70:74])))
}

func TestScenarioS5UpdateNonModifiableKeyRejected(t *testing.T) {
	h := mustImport(t)

	record, err := h.StepLast()
	require.Nil(t, err)
	updated := append([]byte(nil), record...)
	putI32(updated[70:], 5)
	err = h.Update(updated)
	require.NotNil(t, err)
	require.Equal(t, NonModifiableKeyValue, err.Code)
}

func TestDataBufferOverrunWithoutAdvancingPosition(t *testing.T) {
	h := mustImport(t)
	_, err := h.StepFirst()
	require.Nil(t, err)

	_, err = h.GetDirectChunkOrRecord(2, -1, make([]byte, 10))
	require.NotNil(t, err)
	require.Equal(t, DataBufferLengthOverrun, err.Code)
	require.Equal(t, uint32(1), h.Position())
}

func TestKeyBufferTooShort(t *testing.T) {
	h := mustImport(t)
	_, err := h.Acquire(AcquireFirst, 0, make([]byte, 4), nil, false)
	require.NotNil(t, err)
	require.Equal(t, KeyBufferTooShort, err.Code)
}

// zstringAt decodes a NUL-terminated field for test assertions.
func zstringAt(record []byte, offset, length int) string {
	field := record[offset : offset+length]
	n := 0
	for n < len(field) && field[n] != 0 {
		n++
	}
	return string(field[:n])
}
