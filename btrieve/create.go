package btrieve

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshuapare/btrievekit/internal/keydef"
	"github.com/joshuapare/btrievekit/internal/legacyfile"
	"github.com/joshuapare/btrievekit/internal/sqlstore"
)

// ImportOptions configures ImportLegacyFile (spec.md §2 "Data flow").
type ImportOptions struct {
	// Warnings receives the short-record-walk warning; nil discards it.
	Warnings io.Writer
}

// ImportLegacyFile decodes the legacy .DAT file at legacyPath and builds a
// fresh SQL-backed store at storePath from its metadata, keys, and record
// stream (spec.md §2 "Data flow", §4.G "create"). On any failure the
// partially-written store file is removed.
func ImportLegacyFile(legacyPath, storePath string, opts ImportOptions) *Error {
	decodeOpts := legacyfile.Options{}
	if opts.Warnings != nil {
		decodeOpts.Warnings = opts.Warnings
	}

	meta, keys, closeLegacy, err := legacyfile.Open(legacyPath, decodeOpts)
	if err != nil {
		return mapDecodeError(legacyPath, err)
	}
	defer closeLegacy()

	storeMeta := sqlstore.Metadata{
		RecordLength:          meta.RecordLength,
		PhysicalRecordLength:  meta.PhysicalRecordLength,
		PageLength:            meta.PageLength,
		VariableLengthRecords: meta.VariableLengthRecords,
		Version:               int(meta.Version),
		ACSName:               meta.ACSName,
		ACS:                   meta.ACS,
	}

	source := func(consume func(record []byte) bool) error {
		return legacyfile.Walk(legacyPath, decodeOpts, consume)
	}

	if err := sqlstore.Create(storePath, storeMeta, keys, source); err != nil {
		_ = os.Remove(storePath)
		return mapStoreError(err)
	}
	return nil
}

// mapDecodeError translates a legacyfile decode failure into the public
// taxonomy: file-not-found stays FileNotFound, anything else from a
// known-bad legacy file is NotBtrieveFile (spec.md §7).
func mapDecodeError(path string, err error) *Error {
	if strings.Contains(err.Error(), "file not found") {
		return newError(FileNotFound, "opening "+path, err)
	}
	return newError(NotBtrieveFile, "decoding "+path, err)
}

// ACSCreation supplies an alternate collating sequence table to install on
// a newly created store (spec.md §6 "Create ... + optional ACS creation
// block").
type ACSCreation struct {
	Name  string
	Table []byte // must be 256 bytes
}

// CreateEmpty builds a new, empty store at storePath from an explicit
// FILESPEC and KEYSPEC array, the API-level shape of operation 0x0E
// (spec.md §6). KeySpecs sharing the same Number field become segments of
// one composite key, in the order given.
func CreateEmpty(storePath string, spec FileSpec, keySpecs []KeySpec, acs *ACSCreation) (*Handle, *Error) {
	if _, statErr := os.Stat(storePath); statErr == nil {
		return nil, ErrFileAlreadyExists
	}

	var acsName string
	var acsTable []byte
	if acs != nil {
		if len(acs.Table) != keydef.ACSLength {
			return nil, ErrInvalidACS
		}
		acsName = acs.Name
		acsTable = acs.Table
	}

	keys, err := keysFromSpecs(keySpecs, acsName, acsTable)
	if err != nil {
		return nil, err
	}

	storeMeta := sqlstore.Metadata{
		RecordLength:         spec.LogicalFixedRecordLength,
		PhysicalRecordLength: spec.LogicalFixedRecordLength,
		PageLength:           spec.PageSize,
		VariableLengthRecords: spec.FileFlags&fileFlagVariableLength != 0,
		Version:               int(spec.FileVersion),
		ACSName:               acsName,
		ACS:                   acsTable,
	}

	empty := func(consume func(record []byte) bool) error { return nil }
	if err := sqlstore.Create(storePath, storeMeta, keys, empty); err != nil {
		_ = os.Remove(storePath)
		return nil, mapStoreError(err)
	}

	abs, absErr := filepath.Abs(storePath)
	if absErr != nil {
		abs = storePath
	}
	store, acqErr := acquireStore(abs)
	if acqErr != nil {
		return nil, wrapIOError("opening newly created store", acqErr)
	}
	return &Handle{store: store, keys: store.Keys(), openedFilename: abs}, nil
}

// keysFromSpecs groups a flat KEYSPEC array into composite Keys by Number,
// translating the ABI's 1-based Position back into the decoder's 0-based
// segment offset (original_source/btrieve/KeyDefinition.h getPosition(),
// inverted).
func keysFromSpecs(specs []KeySpec, acsName string, acsTable []byte) ([]keydef.Key, *Error) {
	order := []uint8{}
	grouped := map[uint8][]KeySpec{}
	for _, spec := range specs {
		if _, ok := grouped[spec.Number]; !ok {
			order = append(order, spec.Number)
		}
		grouped[spec.Number] = append(grouped[spec.Number], spec)
	}

	keys := make([]keydef.Key, 0, len(order))
	for _, number := range order {
		group := grouped[number]
		segments := make([]keydef.Segment, 0, len(group))
		for i, spec := range group {
			attrs := keydef.Attribute(spec.Attributes)
			var segACS []byte
			if attrs.Has(keydef.NumberedACS) {
				segACS = acsTable
			}
			seg, err := keydef.NewSegment(
				uint16(spec.Number),
				spec.Length,
				spec.Position-1,
				keydef.DataType(spec.ExtendedDataType),
				attrs,
				uint16(i),
				spec.NullValue,
				acsName,
				segACS,
			)
			if err != nil {
				return nil, badKeyLengthError(err.Error())
			}
			segments = append(segments, seg)
		}
		key, err := keydef.NewKey(segments)
		if err != nil {
			return nil, badKeyLengthError(err.Error())
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Stat returns the FILESPEC and one KEYSPEC per segment for the handle's
// open store (spec.md §6, operation 0x0F).
func (h *Handle) Stat() (FileSpec, []KeySpec, *Error) {
	meta := h.store.Metadata()
	spec := fileSpecFromMetadata(meta, len(h.keys))
	count, err := h.store.RecordCount(context.Background())
	if err != nil {
		return FileSpec{}, nil, mapStoreError(err)
	}
	spec.RecordCount = count
	return spec, keySpecsFromKeys(h.keys), nil
}
