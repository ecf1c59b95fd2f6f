package legacyfile

import "testing"

// buildMBBSEMULike constructs a fixed-length file shaped like spec.md
// §8's MBBSEMU.DAT scenario: 4 records, 74-byte logical length, 90-byte
// physical slots, 512-byte pages, 4 keys.
func buildMBBSEMULike(t *testing.T) []byte {
	t.Helper()
	b := newFixedFileBuilder(512, 74, 90, 4, 5)
	b.addKey(2, 32, 0x0B, 0x001)  // key0: Zstring, Duplicates
	b.addKey(34, 4, 0x01, 0x002)  // key1: Integer, Modifiable
	b.addKey(38, 32, 0x0B, 0x003) // key2: Zstring, Duplicates|Modifiable
	b.addKey(70, 4, 0x0F, 0x000)  // key3: AutoInc

	rec := func(str1 string, int1 int32, str2 string, int2 int32) []byte {
		r := make([]byte, 90)
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
	return b.build(records)
}

func putI32(b []byte, v int32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func TestParseHeaderMBBSEMULike(t *testing.T) {
	data := buildMBBSEMULike(t)
	h, err := parseHeader(data)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.RecordCount != 4 || h.RecordLength != 74 || h.PhysicalRecordLength != 90 || h.PageLength != 512 {
		t.Fatalf("unexpected header: %+v", h)
	}
	if h.VariableLengthRecords {
		t.Fatalf("expected fixed-length file")
	}
}

func TestParseKeyDefinitionsMBBSEMULike(t *testing.T) {
	data := buildMBBSEMULike(t)
	keys, err := parseKeyDefinitions(data, 4, "", nil)
	if err != nil {
		t.Fatalf("parseKeyDefinitions: %v", err)
	}
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %d", len(keys))
	}
	if keys[1].Primary().Offset != 34 || keys[1].Primary().Length != 4 {
		t.Fatalf("key1 layout mismatch: %+v", keys[1].Primary())
	}
	if !keys[3].IsUnique() {
		t.Fatalf("expected key3 (AutoInc, no Duplicates bit) to be unique")
	}
}

func TestWalkRecordsMBBSEMULike(t *testing.T) {
	data := buildMBBSEMULike(t)
	h, err := parseHeader(data)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	pageCount := len(data) / int(h.PageLength)
	deleted, err := deletedSet(data, h.DeletedListHead, pageCount, int(h.PageLength), int(h.PhysicalRecordLength))
	if err != nil {
		t.Fatalf("deletedSet: %v", err)
	}

	var bodies [][]byte
	err = walkRecords(data, h, deleted, false, func(record []byte) bool {
		bodies = append(bodies, append([]byte(nil), record...))
		return true
	})
	if err != nil {
		t.Fatalf("walkRecords: %v", err)
	}
	if len(bodies) != 4 {
		t.Fatalf("expected 4 records, got %d", len(bodies))
	}
	if len(bodies[0]) != 74 {
		t.Fatalf("expected 74-byte record body, got %d", len(bodies[0]))
	}
}

func TestDeletedSetDetectsCycle(t *testing.T) {
	// The list head points at offset 0, whose first four bytes (the
	// file's own zero-magic) decode back to offset 0: an immediate cycle.
	data := make([]byte, 512*3)
	_, err := deletedSet(data, 0, 2, 512, 90)
	if err == nil {
		t.Fatalf("expected cycle detection error")
	}
}
