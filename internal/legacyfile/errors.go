package legacyfile

import "errors"

var (
	errHeaderTooShort       = errors.New("legacyfile: file shorter than the 512-byte header")
	errV6Unsupported        = errors.New("legacyfile: v6 not supported")
	errBadMagic             = errors.New("legacyfile: bad header magic")
	errBadVersion           = errors.New("legacyfile: unsupported file version")
	errInconsistentFile     = errors.New("legacyfile: file marked inconsistent")
	errBadPageLength        = errors.New("legacyfile: page length must be a multiple of 512 and at least 512")
	errAccelFlagsSet        = errors.New("legacyfile: acceleration flags must be zero")
	errCompressedUnsupported = errors.New("legacyfile: compressed records not supported")
	errVarPtrMismatch       = errors.New("legacyfile: variable-length pointer marker disagrees with the variable-length flag")
	errDeletedListCycle     = errors.New("legacyfile: deleted-record list exceeds the page/slot bound, likely cyclic")
	errACSBadMagic          = errors.New("legacyfile: ACS page present but magic byte is not 0xAC")
	errFragmentOutOfRange   = errors.New("legacyfile: variable-length fragment lies outside its page window")
	errFragmentChainCycle   = errors.New("legacyfile: variable-length fragment chain did not terminate")
	errFileNotFound         = errors.New("legacyfile: file not found")
)
