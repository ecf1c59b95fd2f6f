// Package legacyfile decodes a legacy Btrieve v5 paged, keyed-record
// .DAT file (header versions 3-5; v6 files are refused): header validation, the deleted-record chain, the ACS page,
// the key-definition table, and the page walk that reconstructs fixed
// and variable-length records (spec.md §4.D). Grounded on
// original_source/btrieve/BtrieveDatabase.{h,cc}.
package legacyfile

const (
	headerSize = 512

	offVersion        = 0x06
	offPageLength     = 0x08
	offAccelFlags     = 0x0A
	offDeletedHead    = 0x10
	offKeyCount       = 0x14
	offRecordLength   = 0x16
	offPhysicalLength = 0x18
	offRecordCount    = 0x1A
	offConsistency    = 0x22
	offVarLengthFlags = 0x106
	offVarPtrMarker   = 0x38

	offKeyTable  = 0x110
	keyDefLength = 0x1E

	keyDefOffAttributes = 0x08
	keyDefOffOffset     = 0x14
	keyDefOffLength     = 0x16
	keyDefOffDataType   = 0x1C
	keyDefOffNullValue  = 0x1D

	acsPrefixOffset = 0x00
	acsNameOffset   = 0x07
	acsNameLength   = 9
	acsTableOffset  = 0x0F
	acsTableLength  = 256

	pageUsageCountOffset = 0x05
	recordAreaStart      = 0x06

	varLengthFlagBit = 0x01
	compressedFlagBit = 0x08

	deletedListEnd uint32 = 0xFFFFFFFF
	fragmentEndPage uint32 = 0xFFFFFF
	fragmentEndIdx  byte   = 0xFF

	fragmentCountOffset = 0x0A
	fragmentArrayEntrySize = 2
	fragmentContinuesBit   = 0x8000
	fragmentOffsetMask     = 0x7FFF
	fragmentSentinel       = 0xFFFF
)

var v6Magic = [2]byte{'F', 'C'}

var acsPrefix = [7]byte{0, 0, 1, 0, 0, 0, 0xAC}
