package keydef

import "fmt"

// Segment is one immutable portion of a key (spec.md §3 "KeySegment").
type Segment struct {
	Number       uint16
	Length       uint16
	Offset       uint16
	DataType     DataType
	Attributes   Attribute
	SegmentIndex uint16
	NullValue    byte
	ACSName      string
	ACS          []byte // 256 bytes when RequiresACS, otherwise nil
}

// NewSegment validates and constructs a Segment, enforcing the invariants
// spec.md §3 places on KeySegment: a NumberedACS segment must carry a
// 256-byte substitution table, and a Float segment's length must be 4 or 8.
func NewSegment(number, length, offset uint16, dataType DataType, attrs Attribute, segmentIndex uint16, nullValue byte, acsName string, acs []byte) (Segment, error) {
	s := Segment{
		Number:       number,
		Length:       length,
		Offset:       offset,
		DataType:     dataType,
		Attributes:   attrs,
		SegmentIndex: segmentIndex,
		NullValue:    nullValue,
		ACSName:      acsName,
		ACS:          acs,
	}
	if s.RequiresACS() && len(acs) != ACSLength {
		return Segment{}, fmt.Errorf("keydef: key %d requires ACS, but no 256-byte table was provided", number)
	}
	if dataType == Float && length != 4 && length != 8 {
		return Segment{}, fmt.Errorf("keydef: key %d is float-typed but length %d is not 4 or 8", number, length)
	}
	return s, nil
}

// RequiresACS reports whether this segment substitutes bytes through a
// numbered alternate collating sequence table before comparison.
func (s Segment) RequiresACS() bool { return s.Attributes.Has(NumberedACS) }

// IsModifiable reports whether callers may change this segment's bytes
// across an Update.
func (s Segment) IsModifiable() bool { return s.Attributes.Has(Modifiable) }

// AllowsDuplicates reports whether more than one record may share this
// segment's value.
func (s Segment) AllowsDuplicates() bool {
	return s.Attributes.Has(Duplicates) || s.Attributes.Has(RepeatingDuplicatesKey)
}

// IsString reports whether this segment's data type decodes to text.
func (s Segment) IsString() bool {
	switch s.DataType {
	case String, Lstring, Zstring, OldAscii:
		return true
	default:
		return false
	}
}

// IsNullable reports whether this segment's key may hold a logical null.
func (s Segment) IsNullable() bool {
	return s.Attributes.Has(NullAllSegments) || s.Attributes.Has(NullAnySegment) || s.IsString()
}

// IsSegmentOf a composite key (i.e. not the last segment record read from
// the key-definition table for its ordinal).
func (s Segment) IsSegmentOf() bool { return s.Attributes.Has(SegmentedKey) }

// Position is the 1-based byte offset into the record, as reported by the
// Stat (0x0F) operation's KEYSPEC — the decoder and on-disk layout are
// 0-based (spec.md §4.D), but the original record-manager ABI reports
// 1-based positions (original_source/btrieve/KeyDefinition.h,
// getPosition()).
func (s Segment) Position() uint16 { return s.Offset + 1 }
