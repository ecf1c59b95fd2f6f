package legacyfile

import "bytes"

// Header is the decoded fixed-offset fields of the 512-byte file header
// (spec.md §4.D "Header parse").
type Header struct {
	Version               uint8
	PageLength            uint16
	RecordLength          uint16
	PhysicalRecordLength  uint16
	RecordCount           uint32
	KeyCount              uint16
	DeletedListHead       uint32
	VariableLengthRecords bool
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, errHeaderTooShort
	}
	magic := data[0:2]
	if bytes.Equal(magic, v6Magic[:]) {
		return Header{}, errV6Unsupported
	}
	if !bytes.Equal(data[0:4], []byte{0, 0, 0, 0}) {
		return Header{}, errBadMagic
	}

	version := data[offVersion]
	switch version {
	case 3, 4, 5:
	default:
		return Header{}, errBadVersion
	}

	if leU16(data[offConsistency:]) == 0xFFFF {
		return Header{}, errInconsistentFile
	}

	pageLength := leU16(data[offPageLength:])
	if pageLength < 512 || pageLength%512 != 0 {
		return Header{}, errBadPageLength
	}

	if leU16(data[offAccelFlags:]) != 0 {
		return Header{}, errAccelFlagsSet
	}

	varLengthFlags := data[offVarLengthFlags]
	variableLength := varLengthFlags&varLengthFlagBit != 0
	if varLengthFlags&compressedFlagBit != 0 {
		return Header{}, errCompressedUnsupported
	}

	varPtrMarker := data[offVarPtrMarker] == 0xFF
	if varPtrMarker != variableLength {
		return Header{}, errVarPtrMismatch
	}

	keyCount := leU16(data[offKeyCount:])
	recordLength := leU16(data[offRecordLength:])
	physicalRecordLength := leU16(data[offPhysicalLength:])

	recHi := uint32(leU16(data[offRecordCount:]))
	recLo := uint32(leU16(data[offRecordCount+2:]))
	recordCount := recHi<<16 | recLo

	deletedHi := uint32(leU16(data[offDeletedHead:]))
	deletedLo := uint32(leU16(data[offDeletedHead+2:]))
	deletedHead := deletedHi<<16 | deletedLo

	return Header{
		Version:               version,
		PageLength:            pageLength,
		RecordLength:          recordLength,
		PhysicalRecordLength:  physicalRecordLength,
		RecordCount:           recordCount,
		KeyCount:              keyCount,
		DeletedListHead:       deletedHead,
		VariableLengthRecords: variableLength,
	}, nil
}
