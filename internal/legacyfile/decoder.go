package legacyfile

import (
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/btrievekit/internal/keydef"
)

// Metadata describes a decoded legacy file's file-level properties
// (spec.md §3 "Database").
type Metadata struct {
	Version               uint8
	PageLength            uint16
	RecordLength          uint16
	PhysicalRecordLength  uint16
	RecordCount           uint32
	VariableLengthRecords bool
	ACSName               string
	ACS                   []byte
}

// Options configures Open and Walk; only Walk reads it. Warnings, when
// non-nil, receives the short-record-walk warning described in spec.md
// §4.D ("log a warning but do not fail").
type Options struct {
	Warnings io.Writer
}

// Open maps path into memory, validates and decodes its header, ACS
// page, and key-definition table, and returns them alongside the
// decoded key list. Records are not read yet; call Walk to stream them.
func Open(path string, opts Options) (Metadata, []keydef.Key, func() error, error) {
	data, unmap, err := mapFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, nil, nil, fmt.Errorf("legacyfile: %s: %w", path, errFileNotFound)
		}
		return Metadata{}, nil, nil, fmt.Errorf("legacyfile: mapping %s: %w", path, err)
	}

	header, err := parseHeader(data)
	if err != nil {
		_ = unmap()
		return Metadata{}, nil, nil, err
	}

	acs, hasACS, err := parseACS(data, int(header.PageLength))
	if err != nil {
		_ = unmap()
		return Metadata{}, nil, nil, err
	}

	var acsName string
	var acsTable []byte
	if hasACS {
		acsName = acs.Name
		acsTable = acs.Table[:]
	}

	keys, err := parseKeyDefinitions(data, int(header.KeyCount), acsName, acsTable)
	if err != nil {
		_ = unmap()
		return Metadata{}, nil, nil, err
	}

	meta := Metadata{
		Version:               header.Version,
		PageLength:            header.PageLength,
		RecordLength:          header.RecordLength,
		PhysicalRecordLength:  header.PhysicalRecordLength,
		RecordCount:           header.RecordCount,
		VariableLengthRecords: header.VariableLengthRecords,
		ACSName:               acsName,
		ACS:                   acsTable,
	}

	closer := func() error {
		return unmap()
	}
	return meta, keys, closer, nil
}

// Walk streams every live record body in path through consume, in
// physical page order, applying the deleted-record chain and
// variable-length overflow reconstruction described in spec.md §4.D.
func Walk(path string, opts Options, consume Consumer) error {
	data, unmap, err := mapFile(path)
	if err != nil {
		return fmt.Errorf("legacyfile: mapping %s: %w", path, err)
	}
	defer unmap()

	header, err := parseHeader(data)
	if err != nil {
		return err
	}

	pageCount := len(data) / int(header.PageLength)
	deleted, err := deletedSet(data, header.DeletedListHead, pageCount, int(header.PageLength), int(header.PhysicalRecordLength))
	if err != nil {
		return err
	}

	emitted := 0
	err = walkRecords(data, header, deleted, header.VariableLengthRecords, func(record []byte) bool {
		emitted++
		return consume(record)
	})
	if err != nil {
		return err
	}
	if uint32(emitted) < header.RecordCount && opts.Warnings != nil {
		fmt.Fprintf(opts.Warnings, "legacyfile: %s: record walk emitted %d of %d declared records\n", path, emitted, header.RecordCount)
	}
	return nil
}
