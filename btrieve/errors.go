package btrieve

import (
	"errors"
	"fmt"
)

// ErrorCode is the closed, stable numeric error taxonomy exposed across
// the driver facade's ABI (spec.md §7).
type ErrorCode int

const (
	Success                 ErrorCode = 0
	InvalidOperation        ErrorCode = 1
	IOError                 ErrorCode = 2
	FileNotOpen             ErrorCode = 3
	KeyValueNotFound        ErrorCode = 4
	DuplicateKeyValue       ErrorCode = 5
	InvalidKeyNumber        ErrorCode = 6
	InvalidPositioning      ErrorCode = 8
	EndOfFile               ErrorCode = 9
	NonModifiableKeyValue   ErrorCode = 10
	FileNotFound            ErrorCode = 12
	KeyBufferTooShort       ErrorCode = 21
	DataBufferLengthOverrun ErrorCode = 22
	BadRecordLength         ErrorCode = 28
	BadKeyLength            ErrorCode = 29
	NotBtrieveFile          ErrorCode = 30
	InvalidRecordAddress    ErrorCode = 43
	InvalidACS              ErrorCode = 45
	FileAlreadyExists       ErrorCode = 59
)

func (c ErrorCode) String() string {
	switch c {
	case Success:
		return "Success"
	case InvalidOperation:
		return "InvalidOperation"
	case IOError:
		return "IOError"
	case FileNotOpen:
		return "FileNotOpen"
	case KeyValueNotFound:
		return "KeyValueNotFound"
	case DuplicateKeyValue:
		return "DuplicateKeyValue"
	case InvalidKeyNumber:
		return "InvalidKeyNumber"
	case InvalidPositioning:
		return "InvalidPositioning"
	case EndOfFile:
		return "EndOfFile"
	case NonModifiableKeyValue:
		return "NonModifiableKeyValue"
	case FileNotFound:
		return "FileNotFound"
	case KeyBufferTooShort:
		return "KeyBufferTooShort"
	case DataBufferLengthOverrun:
		return "DataBufferLengthOverrun"
	case BadRecordLength:
		return "BadRecordLength"
	case BadKeyLength:
		return "BadKeyLength"
	case NotBtrieveFile:
		return "NotBtrieveFile"
	case InvalidRecordAddress:
		return "InvalidRecordAddress"
	case InvalidACS:
		return "InvalidACS"
	case FileAlreadyExists:
		return "FileAlreadyExists"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// Error is the typed error returned from every operation in this module.
// Code carries the stable ABI identity; Err, when set, is the underlying
// cause (an I/O error, a SQL driver error, a decode failure).
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("btrieve: %s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("btrieve: %s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// newError builds an *Error, wrapping cause when non-nil.
func newError(code ErrorCode, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Err: cause}
}

// CodeOf extracts the ErrorCode from err, returning IOError for any error
// not produced by this package (the propagation policy's "unmappable
// engine errors surface as IOError", spec.md §7).
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return IOError
}

// Sentinel errors for conditions that carry no dynamic message or cause.
var (
	ErrInvalidOperation      = newError(InvalidOperation, "unknown operation code", nil)
	ErrFileNotOpen           = newError(FileNotOpen, "handle does not refer to an open store", nil)
	ErrKeyValueNotFound      = newError(KeyValueNotFound, "keyed query produced no row", nil)
	ErrInvalidKeyNumber      = newError(InvalidKeyNumber, "key number out of range", nil)
	ErrInvalidPositioning    = newError(InvalidPositioning, "step past the first or last row", nil)
	ErrEndOfFile             = newError(EndOfFile, "next/previous past either end", nil)
	ErrNonModifiableKeyValue = newError(NonModifiableKeyValue, "update attempts to change a non-modifiable key", nil)
	ErrFileNotFound          = newError(FileNotFound, "legacy or store file could not be opened", nil)
	ErrKeyBufferTooShort     = newError(KeyBufferTooShort, "key buffer smaller than the key length", nil)
	ErrDataBufferOverrun     = newError(DataBufferLengthOverrun, "data buffer smaller than the record body", nil)
	ErrNotBtrieveFile        = newError(NotBtrieveFile, "legacy file header validation failed", nil)
	ErrInvalidRecordAddress  = newError(InvalidRecordAddress, "no record at the given position", nil)
	ErrInvalidACS            = newError(InvalidACS, "ACS required but not supplied, or header byte is not 0xAC", nil)
	ErrFileAlreadyExists     = newError(FileAlreadyExists, "create requested but file exists", nil)
)

// wrapIOError maps an opaque engine failure into an *Error with code
// IOError, preserving it as the wrapped cause.
func wrapIOError(msg string, cause error) *Error {
	return newError(IOError, msg, cause)
}

// duplicateKeyError reports a UNIQUE constraint violation on keyNumber.
func duplicateKeyError(keyNumber uint16) *Error {
	return newError(DuplicateKeyValue, fmt.Sprintf("insert/update violates unique key %d", keyNumber), nil)
}

// badRecordLengthError and badKeyLengthError report schema conflicts
// detected while creating a new store.
func badRecordLengthError(msg string) *Error { return newError(BadRecordLength, msg, nil) }
func badKeyLengthError(msg string) *Error    { return newError(BadKeyLength, msg, nil) }
