// Package keydef describes key-segment metadata decoded from a legacy
// Btrieve key-definition table and the composite Key built from it.
package keydef

// Attribute is the bitmask carried in a key segment's KEYSPEC/on-disk
// attributes field (spec.md §6, "Attribute bitmask").
type Attribute uint16

const (
	Duplicates             Attribute = 0x001
	Modifiable             Attribute = 0x002
	OldStyleBinary         Attribute = 0x004
	NullAllSegments        Attribute = 0x008
	SegmentedKey           Attribute = 0x010
	NumberedACS            Attribute = 0x020
	DescendingKeySegment   Attribute = 0x040
	RepeatingDuplicatesKey Attribute = 0x080
	UseExtendedDataType    Attribute = 0x100
	NullAnySegment         Attribute = 0x200
)

// Has reports whether all bits of mask are set in a.
func (a Attribute) Has(mask Attribute) bool { return a&mask == mask }

// DataType is the key segment data-type enumeration (spec.md §6).
type DataType uint8

const (
	String         DataType = 0
	Integer        DataType = 1
	Float          DataType = 2
	Date           DataType = 3
	Time           DataType = 4
	Decimal        DataType = 5
	Money          DataType = 6
	Logical        DataType = 7
	Numeric        DataType = 8
	Bfloat         DataType = 9
	Lstring        DataType = 0x0A
	Zstring        DataType = 0x0B
	Unsigned       DataType = 0x0D
	UnsignedBinary DataType = 0x0E
	AutoInc        DataType = 0x0F
	OldAscii       DataType = 0x20
	OldBinary      DataType = 0x21
)

// ACSLength is the fixed size of an alternate collating sequence table.
const ACSLength = 256
