package btrieve

import (
	"encoding/binary"

	"github.com/joshuapare/btrievekit/internal/keydef"
	"github.com/joshuapare/btrievekit/internal/sqlstore"
)

// FileSpec is the packed 16-byte FILESPEC structure returned by Stat and
// consumed by Create (spec.md §6).
type FileSpec struct {
	LogicalFixedRecordLength uint16
	PageSize                 uint16
	NumberOfKeys             uint8
	FileVersion              uint8
	RecordCount              uint32
	FileFlags                uint16
	NumExtraPointers         uint8
	PhysicalPageSize         uint8
	PreallocatedPages        uint16
}

const fileFlagVariableLength = 0x01

// MarshalBinary packs the FileSpec into its 16-byte wire form.
func (f FileSpec) MarshalBinary() ([]byte, error) {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[0:], f.LogicalFixedRecordLength)
	binary.LittleEndian.PutUint16(b[2:], f.PageSize)
	b[4] = f.NumberOfKeys
	b[5] = f.FileVersion
	binary.LittleEndian.PutUint32(b[6:], f.RecordCount)
	binary.LittleEndian.PutUint16(b[10:], f.FileFlags)
	b[12] = f.NumExtraPointers
	b[13] = f.PhysicalPageSize
	binary.LittleEndian.PutUint16(b[14:], f.PreallocatedPages)
	return b, nil
}

func fileSpecFromMetadata(meta sqlstore.Metadata, numKeys int) FileSpec {
	flags := uint16(0)
	if meta.VariableLengthRecords {
		flags |= fileFlagVariableLength
	}
	return FileSpec{
		LogicalFixedRecordLength: meta.RecordLength,
		PageSize:                 meta.PageLength,
		NumberOfKeys:             uint8(numKeys),
		FileVersion:              uint8(meta.Version),
		RecordCount:              0, // filled in by caller once the row count is known
		FileFlags:                flags,
		PhysicalPageSize:         1,
	}
}

// KeySpec is the packed 16-byte KEYSPEC structure, one per segment
// (spec.md §6).
type KeySpec struct {
	Position         uint16
	Length           uint16
	Attributes       uint16
	UniqueKeys       uint32
	ExtendedDataType uint8
	NullValue        uint8
	Number           uint8
	ACSNumber        uint8
}

// MarshalBinary packs the KeySpec into its 16-byte wire form.
func (k KeySpec) MarshalBinary() ([]byte, error) {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[0:], k.Position)
	binary.LittleEndian.PutUint16(b[2:], k.Length)
	binary.LittleEndian.PutUint16(b[4:], k.Attributes)
	binary.LittleEndian.PutUint32(b[6:], k.UniqueKeys)
	b[10] = k.ExtendedDataType
	b[11] = k.NullValue
	// b[12:14] reserved
	b[14] = k.Number
	b[15] = k.ACSNumber
	return b, nil
}

// keySpecsFromKeys builds one KeySpec per segment of every key, in
// declaration order, translating the decoder's 0-based segment offset
// into the 1-based byte position the record-manager ABI reports
// (keydef.Segment.Position).
func keySpecsFromKeys(keys []keydef.Key) []KeySpec {
	var specs []KeySpec
	for _, k := range keys {
		for _, seg := range k.Segments() {
			specs = append(specs, KeySpec{
				Position:         seg.Position(),
				Length:           seg.Length,
				Attributes:       uint16(seg.Attributes),
				ExtendedDataType: uint8(seg.DataType),
				NullValue:        seg.NullValue,
				Number:           uint8(seg.Number),
			})
		}
	}
	return specs
}
