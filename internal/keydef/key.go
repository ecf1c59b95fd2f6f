package keydef

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/joshuapare/btrievekit/internal/typedvalue"
)

// Key is an ordered sequence of one or more Segments sharing the same
// Number (spec.md §3 "Key"). A Key with more than one segment is
// composite.
type Key struct {
	segments []Segment
}

// NewKey builds a Key from its segments, ordered by SegmentIndex.
func NewKey(segments []Segment) (Key, error) {
	if len(segments) == 0 {
		return Key{}, fmt.Errorf("keydef: key must have at least one segment")
	}
	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].SegmentIndex < ordered[i].SegmentIndex {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	return Key{segments: ordered}, nil
}

// Segments returns the ordered segment list.
func (k Key) Segments() []Segment { return k.segments }

// Primary returns the first (ordinal-defining) segment.
func (k Key) Primary() Segment { return k.segments[0] }

// Number is the key's ordinal, shared by every segment.
func (k Key) Number() uint16 { return k.Primary().Number }

// IsComposite reports whether this key has more than one segment.
func (k Key) IsComposite() bool { return len(k.segments) > 1 }

// Length is the sum of every segment's length.
func (k Key) Length() int {
	total := 0
	for _, s := range k.segments {
		total += int(s.Length)
	}
	return total
}

// IsUnique reports whether the primary segment forbids duplicate values.
func (k Key) IsUnique() bool { return !k.Primary().AllowsDuplicates() }

// IsNullable reports whether any segment is string-typed, or the
// attributes include NullAllSegments/NullAnySegment on the primary
// segment.
func (k Key) IsNullable() bool {
	if k.Primary().IsNullable() {
		return true
	}
	for _, s := range k.segments {
		if s.IsString() {
			return true
		}
	}
	return false
}

// IsModifiable reads the Modifiable bit from the primary segment.
func (k Key) IsModifiable() bool { return k.Primary().IsModifiable() }

// IsAutoIncrement reports whether this is a single-segment key of the
// auto-increment data type; a composite key never is.
func (k Key) IsAutoIncrement() bool { return !k.IsComposite() && k.Primary().DataType == AutoInc }

// SQLColumnType returns the SQLite column type declaration for this key,
// including the NOT NULL/UNIQUE modifiers (spec.md §4.B/4.C "typed value
// to SQL column type").
func (k Key) SQLColumnType() string {
	if k.IsAutoIncrement() {
		return "INTEGER NOT NULL UNIQUE"
	}

	var base string
	switch {
	case k.IsComposite():
		base = "BLOB"
	default:
		switch k.Primary().DataType {
		case Unsigned, UnsignedBinary, OldBinary, AutoInc, Integer:
			if k.Primary().Length <= 8 {
				base = "INTEGER"
			} else {
				base = "BLOB"
			}
		case String, Lstring, Zstring, OldAscii:
			base = "TEXT"
		default:
			base = "BLOB"
		}
	}

	if !k.IsNullable() {
		base += " NOT NULL"
	}
	if k.IsUnique() {
		base += " UNIQUE"
	}
	return base
}

// SQLColumnName returns the indexed column name for the key at ordinal n
// (spec.md §4.G "data_t").
func SQLColumnName(n int) string {
	return "key_" + strconv.Itoa(n)
}

// RequiresACS reports whether any segment substitutes through an ACS
// table.
func (k Key) RequiresACS() bool {
	for _, s := range k.segments {
		if s.RequiresACS() {
			return true
		}
	}
	return false
}

// Extract concatenates each segment's byte range from record, in
// SegmentIndex order, into a single buffer (spec.md §4.B/4.C
// "Extraction").
func (k Key) Extract(record []byte) ([]byte, error) {
	out := make([]byte, 0, k.Length())
	for _, s := range k.segments {
		end := int(s.Offset) + int(s.Length)
		if end > len(record) {
			return nil, fmt.Errorf("keydef: segment %d/%d reads [%d:%d] beyond record of length %d", s.Number, s.SegmentIndex, s.Offset, end, len(record))
		}
		out = append(out, record[s.Offset:end]...)
	}
	return out, nil
}

// ApplyACS returns a length-preserving copy of keyData where every
// segment requiring ACS has its bytes substituted through that segment's
// 256-byte table; segments that don't require ACS are copied verbatim
// (spec.md §4.B/4.C "ACS application").
func (k Key) ApplyACS(keyData []byte) []byte {
	if !k.RequiresACS() {
		return keyData
	}
	out := make([]byte, len(keyData))
	offset := 0
	for _, s := range k.segments {
		n := int(s.Length)
		src := keyData[offset : offset+n]
		dst := out[offset : offset+n]
		if s.RequiresACS() {
			for i, b := range src {
				dst[i] = s.ACS[b]
			}
		} else {
			copy(dst, src)
		}
		offset += n
	}
	return out
}

// isAllSameByte reports whether every byte of data equals b.
func isAllSameByte(data []byte, b byte) bool {
	for _, v := range data {
		if v != b {
			return false
		}
	}
	return true
}

// ToTypedValue extracts, applies ACS, and converts the key's value in
// record into a typedvalue.Value per the typed-conversion table of
// spec.md §4.C.
func (k Key) ToTypedValue(record []byte) (typedvalue.Value, error) {
	raw, err := k.Extract(record)
	if err != nil {
		return typedvalue.Value{}, err
	}

	if k.IsNullable() && len(raw) > 0 && isAllSameByte(raw, k.Primary().NullValue) {
		primaryNullable := k.Primary().Attributes.Has(NullAllSegments) || k.Primary().Attributes.Has(NullAnySegment)
		if primaryNullable {
			return typedvalue.NewNull(), nil
		}
	}

	data := k.ApplyACS(raw)

	if k.IsComposite() {
		return typedvalue.NewBlob(data), nil
	}

	return segmentValue(k.Primary(), data)
}

func segmentValue(primary Segment, data []byte) (typedvalue.Value, error) {
	switch primary.DataType {
	case Unsigned, UnsignedBinary, OldBinary:
		switch len(data) {
		case 2:
			return typedvalue.NewInteger(int64(leUint(data))), nil
		case 4:
			return typedvalue.NewInteger(int64(leUint(data))), nil
		case 6:
			low := leUint(data[0:4])
			high := leUint(data[4:6])
			return typedvalue.NewInteger(int64(low | high<<32)), nil
		case 8:
			return typedvalue.NewInteger(int64(leUint(data))), nil
		default:
			reversed := make([]byte, len(data))
			for i, b := range data {
				reversed[len(data)-1-i] = b
			}
			return typedvalue.NewBlob(reversed), nil
		}
	case AutoInc, Integer:
		switch len(data) {
		case 2, 4, 8:
			return typedvalue.NewInteger(leInt(data)), nil
		case 6:
			low := leUint(data[0:4])
			high := int64(int16(leUint(data[4:6])))
			return typedvalue.NewInteger(int64(low) | high<<32), nil
		default:
			return typedvalue.Value{}, fmt.Errorf("keydef: bad integer key length %d", len(data))
		}
	case String, Lstring, Zstring, OldAscii:
		return typedvalue.NewText(extractNullTerminatedString(data)), nil
	case Float:
		switch len(data) {
		case 4:
			bits := uint32(leUint(data))
			return typedvalue.NewDouble(float64(math.Float32frombits(bits))), nil
		case 8:
			bits := leUint(data)
			return typedvalue.NewDouble(math.Float64frombits(bits)), nil
		default:
			return typedvalue.NewBlob(data), nil
		}
	default:
		return typedvalue.NewBlob(data), nil
	}
}

// leUint decodes up to 8 bytes of data as a little-endian unsigned integer.
func leUint(data []byte) uint64 {
	var v uint64
	for i, b := range data {
		v |= uint64(b) << (8 * uint(i))
	}
	return v
}

// leInt decodes data (length 2, 4 or 8) as a little-endian signed integer.
func leInt(data []byte) int64 {
	switch len(data) {
	case 2:
		return int64(int16(leUint(data)))
	case 4:
		return int64(int32(leUint(data)))
	case 8:
		return int64(leUint(data))
	default:
		return int64(leUint(data))
	}
}

// extractNullTerminatedString returns the longest prefix of b up to the
// first NUL byte, as the raw byte sequence with no code-page translation
// (spec.md §4.C; matches the original's BindableValue(std::string_view),
// which stores key bytes as-is). Translating through a code page here
// would change the byte sequence for any byte ≥0x80, breaking SQL TEXT
// ordering relative to the raw-byte/memcmp order spec.md §4.H relies on.
func extractNullTerminatedString(b []byte) string {
	strlen := bytes.IndexByte(b, 0)
	if strlen < 0 {
		strlen = len(b)
	}
	return string(b[:strlen])
}
