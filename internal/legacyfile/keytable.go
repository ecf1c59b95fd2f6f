package legacyfile

import "github.com/joshuapare/btrievekit/internal/keydef"

// parseKeyDefinitions reads the key-definition table starting at
// offKeyTable, one keyDefLength-byte record per declared segment, and
// groups consecutive SegmentedKey-flagged records into composite Keys
// (spec.md §4.D "Key definitions"). acsTable is the file's single
// optional ACS substitution table (nil if the file carries none); a
// segment whose attributes set NumberedACS is bound to it.
func parseKeyDefinitions(data []byte, keyCount int, acsName string, acsTable []byte) ([]keydef.Key, error) {
	var groups [][]keydef.Segment
	var current []keydef.Segment

	offset := offKeyTable
	for i := 0; i < keyCount; i++ {
		rec, ok := sliceAt(data, offset, keyDefLength)
		if !ok {
			return nil, errFragmentOutOfRange
		}
		attrs := keydef.Attribute(leU16(rec[keyDefOffAttributes:]))
		segOffset := leU16(rec[keyDefOffOffset:])
		segLength := leU16(rec[keyDefOffLength:])
		nullValue := rec[keyDefOffNullValue]

		var dataType keydef.DataType
		if attrs.Has(keydef.UseExtendedDataType) {
			dataType = keydef.DataType(rec[keyDefOffDataType])
		} else if attrs.Has(keydef.OldStyleBinary) {
			dataType = keydef.OldBinary
		} else {
			dataType = keydef.OldAscii
		}

		var acs []byte
		name := ""
		if attrs.Has(keydef.NumberedACS) {
			acs = acsTable
			name = acsName
		}

		segIndex := uint16(len(current))
		seg, err := keydef.NewSegment(uint16(len(groups)), segLength, segOffset, dataType, attrs, segIndex, nullValue, name, acs)
		if err != nil {
			return nil, err
		}
		current = append(current, seg)

		if !attrs.Has(keydef.SegmentedKey) {
			groups = append(groups, current)
			current = nil
		}

		offset += keyDefLength
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	keys := make([]keydef.Key, 0, len(groups))
	for i, segs := range groups {
		renumbered := make([]keydef.Segment, len(segs))
		for j, s := range segs {
			s.Number = uint16(i)
			renumbered[j] = s
		}
		key, err := keydef.NewKey(renumbered)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
