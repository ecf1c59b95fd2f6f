package legacyfile

import "encoding/binary"

// fixedFileBuilder assembles a synthetic in-memory legacy file with
// the given page count, matching the byte layout of spec.md §4.D. It is
// the test-only analogue of a real MBBSEMU.DAT-style fixture.
type fixedFileBuilder struct {
	pageLength           int
	recordLength         int
	physicalRecordLength int
	recordCount          int
	keyCount             int
	pageCount            int
	keyDefs              [][]byte // raw 0x1E-byte key-definition records
	deletedHead          uint32
}

func newFixedFileBuilder(pageLength, recordLength, physicalRecordLength, recordCount, pageCount int) *fixedFileBuilder {
	return &fixedFileBuilder{
		pageLength:           pageLength,
		recordLength:         recordLength,
		physicalRecordLength: physicalRecordLength,
		recordCount:          recordCount,
		pageCount:            pageCount,
		deletedHead:          0xFFFFFFFF,
	}
}

func leU16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func leU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// addKey appends a key-definition record. dataType is written at 0x1C
// and UseExtendedDataType is OR'd into attrs automatically.
func (b *fixedFileBuilder) addKey(offset, length uint16, dataType byte, attrs uint16) {
	rec := make([]byte, keyDefLength)
	attrs |= 0x100 // UseExtendedDataType
	copy(rec[keyDefOffAttributes:], leU16(attrs))
	copy(rec[keyDefOffOffset:], leU16(offset))
	copy(rec[keyDefOffLength:], leU16(length))
	rec[keyDefOffDataType] = dataType
	rec[keyDefOffNullValue] = 0
	b.keyDefs = append(b.keyDefs, rec)
	b.keyCount++
}

// build assembles the full byte buffer: header, key table, then
// pageCount data pages, each filled from records (one []byte per
// physical slot, already physicalRecordLength bytes long).
func (b *fixedFileBuilder) build(records [][]byte) []byte {
	total := b.pageLength * (b.pageCount + 1)
	data := make([]byte, total)

	copy(data[0:4], []byte{0, 0, 0, 0})
	data[offVersion] = 5
	copy(data[offPageLength:], leU16(uint16(b.pageLength)))
	copy(data[offAccelFlags:], leU16(0))
	copy(data[offDeletedHead:], leU32(b.deletedHead))
	copy(data[offKeyCount:], leU16(uint16(b.keyCount)))
	copy(data[offRecordLength:], leU16(uint16(b.recordLength)))
	copy(data[offPhysicalLength:], leU16(uint16(b.physicalRecordLength)))
	recHi := uint16(b.recordCount >> 16)
	recLo := uint16(b.recordCount & 0xFFFF)
	copy(data[offRecordCount:], leU16(recHi))
	copy(data[offRecordCount+2:], leU16(recLo))
	copy(data[offConsistency:], leU16(0))
	data[offVarLengthFlags] = 0
	data[offVarPtrMarker] = 0

	offset := offKeyTable
	for _, rec := range b.keyDefs {
		copy(data[offset:], rec)
		offset += keyDefLength
	}

	slotsPerPage := (b.pageLength - recordAreaStart) / b.physicalRecordLength
	for i, rec := range records {
		page := 1 + i/slotsPerPage
		slot := i % slotsPerPage
		pageStart := page * b.pageLength
		if slot == 0 {
			data[pageStart+pageUsageCountOffset] = 0x80
		}
		slotStart := pageStart + recordAreaStart + slot*b.physicalRecordLength
		copy(data[slotStart:slotStart+b.physicalRecordLength], rec)
	}

	return data
}
