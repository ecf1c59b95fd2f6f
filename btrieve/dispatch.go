package btrieve

import "encoding/binary"

// Request carries every argument Dispatch might need for a given
// OperationCode, mirroring how the original performOperation/BtrieveCommand
// pairing routes one raw call code, key data, and data buffer to the
// concrete driver call (original_source/btrieve/BtrieveDriver.h
// performOperation, vstudio/wbtrv32/wbtrv32.cpp's per-operation handlers).
type Request struct {
	KeyNumber  int
	KeyBuffer  []byte
	DataBuffer []byte
	Position   uint32
}

// Response is what Dispatch hands back: the record left positioned by the
// call, if any. For GetPosition it is the 4-byte little-endian position
// value, matching the ABI GetPosition itself returns (spec.md §6).
type Response struct {
	Record []byte
}

// acquireOpFor maps a normalized Acquire/Query operation code to the
// AcquireOp it performs and whether it copies the record into DataBuffer
// (Acquire* does; Query* does not — spec.md §6).
func acquireOpFor(code OperationCode) (op AcquireOp, copyData bool, ok bool) {
	switch code {
	case OpAcquireEqual:
		return AcquireEqual, true, true
	case OpAcquireNext:
		return AcquireNext, true, true
	case OpAcquirePrevious:
		return AcquirePrevious, true, true
	case OpAcquireGreater:
		return AcquireGreater, true, true
	case OpAcquireGreaterOrEqual:
		return AcquireGreaterOrEqual, true, true
	case OpAcquireLess:
		return AcquireLess, true, true
	case OpAcquireLessOrEqual:
		return AcquireLessOrEqual, true, true
	case OpAcquireFirst:
		return AcquireFirst, true, true
	case OpAcquireLast:
		return AcquireLast, true, true
	case OpQueryEqual:
		return AcquireEqual, false, true
	case OpQueryNext:
		return AcquireNext, false, true
	case OpQueryPrevious:
		return AcquirePrevious, false, true
	case OpQueryGreater:
		return AcquireGreater, false, true
	case OpQueryGreaterOrEqual:
		return AcquireGreaterOrEqual, false, true
	case OpQueryLess:
		return AcquireLess, false, true
	case OpQueryLessOrEqual:
		return AcquireLessOrEqual, false, true
	case OpQueryFirst:
		return AcquireFirst, false, true
	case OpQueryLast:
		return AcquireLast, false, true
	default:
		return 0, false, false
	}
}

// copyRecordOut enforces the data-buffer-length check the original
// performs before every copy-back (wbtrv32.cpp's acquiresData handling)
// and copies record into req.DataBuffer when one was supplied.
func (h *Handle) copyRecordOut(req Request, record []byte) ([]byte, *Error) {
	if req.DataBuffer != nil {
		if e := h.checkDataBuffer(req.DataBuffer, record); e != nil {
			return nil, e
		}
		copy(req.DataBuffer, record)
	}
	return record, nil
}

// Dispatch routes a single record-manager call through the handle,
// stripping any record-lock modifier from code before examining the base
// operation (spec.md §5 "Locking semantics of the legacy operation
// variants", §6 "Operation codes", §4.I "operation-code dispatch"). Open,
// Close, Create, Stat, and Stop are not handled here: the original keeps
// those as separate top-level command handlers outside performOperation
// too (vstudio/wbtrv32/wbtrv32.cpp), since they don't operate against an
// already-positioned handle the way these calls do.
func (h *Handle) Dispatch(code OperationCode, req Request) (Response, *Error) {
	base := code.normalize()
	prevPos, prevPositioned := h.position, h.positioned

	if op, copyData, ok := acquireOpFor(base); ok {
		record, err := h.Acquire(op, req.KeyNumber, req.KeyBuffer, req.DataBuffer, copyData)
		if err != nil {
			return Response{}, err
		}
		return Response{Record: record}, nil
	}

	switch base {
	case OpInsert:
		if err := h.Insert(req.DataBuffer, req.KeyNumber, req.KeyBuffer); err != nil {
			return Response{}, err
		}
		return Response{Record: req.DataBuffer}, nil

	case OpUpdate:
		if err := h.Update(req.DataBuffer); err != nil {
			return Response{}, err
		}
		return Response{Record: req.DataBuffer}, nil

	case OpDelete:
		if err := h.Delete(); err != nil {
			return Response{}, err
		}
		return Response{}, nil

	case OpGetPosition:
		pos, err := h.GetPosition()
		if err != nil {
			return Response{}, err
		}
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, pos)
		return Response{Record: out}, nil

	case OpGetDirectChunkOrRecord:
		record, err := h.GetDirectChunkOrRecord(req.Position, req.KeyNumber, req.DataBuffer)
		if err != nil {
			return Response{}, err
		}
		return Response{Record: record}, nil

	case OpStepFirst:
		record, err := h.StepFirst()
		if err != nil {
			return Response{}, err
		}
		return h.stepResponse(req, record, prevPos, prevPositioned)

	case OpStepLast:
		record, err := h.StepLast()
		if err != nil {
			return Response{}, err
		}
		return h.stepResponse(req, record, prevPos, prevPositioned)

	case OpStepNext:
		record, err := h.StepNext()
		if err != nil {
			return Response{}, err
		}
		return h.stepResponse(req, record, prevPos, prevPositioned)

	case OpStepPrevious:
		record, err := h.StepPrevious()
		if err != nil {
			return Response{}, err
		}
		return h.stepResponse(req, record, prevPos, prevPositioned)

	default:
		return Response{}, ErrInvalidOperation
	}
}

// stepResponse applies the data-buffer copy-back a step operation's
// caller expects. The step has already moved the handle, so when the
// data buffer is too short the position held before the step is put back
// (spec.md §7 "Propagation policy").
func (h *Handle) stepResponse(req Request, record []byte, prevPos uint32, prevPositioned bool) (Response, *Error) {
	out, e := h.copyRecordOut(req, record)
	if e != nil {
		h.position, h.positioned = prevPos, prevPositioned
		return Response{}, e
	}
	return Response{Record: out}, nil
}
