package legacyfile

// Consumer receives one reconstructed record body and reports whether the
// walk should continue (spec.md Design Notes "Callbacks/streaming").
type Consumer func(record []byte) (keepGoing bool)

// walkRecords iterates every data page, skips deleted and unused slots,
// reconstructs each record (appending variable-length overflow when
// present), and invokes consume for each until recordCount records have
// been emitted or the consumer short-circuits (spec.md §4.D "Record
// walk").
func walkRecords(data []byte, h Header, deleted map[uint32]struct{}, variableLength bool, consume Consumer) error {
	pageLength := int(h.PageLength)
	physicalRecordLength := int(h.PhysicalRecordLength)
	recordLength := int(h.RecordLength)
	if physicalRecordLength == 0 {
		return nil
	}
	pageCount := len(data) / pageLength

	emitted := uint32(0)
	slotsPerPage := (pageLength - recordAreaStart) / physicalRecordLength

pageLoop:
	for page := 1; page <= pageCount && emitted < h.RecordCount; page++ {
		pageStart := page * pageLength
		pageBytes, ok := sliceAt(data, pageStart, pageLength)
		if !ok {
			break
		}
		if pageBytes[pageUsageCountOffset]&0x80 == 0 {
			continue
		}

		for slot := 0; slot < slotsPerPage; slot++ {
			if emitted >= h.RecordCount {
				break pageLoop
			}
			slotOffset := uint32(pageStart + recordAreaStart + slot*physicalRecordLength)
			if _, isDeleted := deleted[slotOffset]; isDeleted {
				continue
			}
			slotBytes, ok := sliceAt(data, int(slotOffset), physicalRecordLength)
			if !ok {
				continue pageLoop
			}
			if isUnusedRecord(slotBytes, len(data)) {
				continue pageLoop
			}

			body := slotBytes[:recordLength]
			if variableLength {
				full, err := appendOverflow(data, pageLength, slotBytes, recordLength, physicalRecordLength)
				if err != nil {
					return err
				}
				body = full
			}

			if !consume(body) {
				return nil
			}
			emitted++
		}
	}
	return nil
}

// isUnusedRecord reports whether slot looks like an empty trailing slot:
// bytes 4..end are all zero while bytes 0..3 form a valid file offset
// less than fileLength (spec.md §4.D).
func isUnusedRecord(slot []byte, fileLength int) bool {
	if len(slot) < 4 {
		return false
	}
	for _, b := range slot[4:] {
		if b != 0 {
			return false
		}
	}
	offset := leU32(slot)
	return int(offset) < fileLength
}

// appendOverflow reconstructs a variable-length record: recordLength
// bytes from slot, followed by every fragment in the overflow chain
// encoded in the slot's trailing (physicalRecordLength - recordLength)
// bytes (spec.md §4.D "Variable-length overflow").
func appendOverflow(data []byte, pageLength int, slot []byte, recordLength, physicalRecordLength int) ([]byte, error) {
	out := append([]byte(nil), slot[:recordLength]...)

	trailer := slot[recordLength:physicalRecordLength]
	if len(trailer) < 4 {
		return out, nil
	}
	page := uint32(trailer[0])<<16 | uint32(trailer[2])<<8 | uint32(trailer[1])
	fragmentIndex := trailer[3]

	seen := make(map[[2]uint32]struct{})
	for page != fragmentEndPage || fragmentIndex != fragmentEndIdx {
		key := [2]uint32{page, uint32(fragmentIndex)}
		if _, ok := seen[key]; ok {
			return nil, errFragmentChainCycle
		}
		seen[key] = struct{}{}

		fragData, nextPage, nextFragment, hasNext, err := readFragment(data, pageLength, page, fragmentIndex)
		if err != nil {
			return nil, err
		}
		out = append(out, fragData...)
		if !hasNext {
			break
		}
		page, fragmentIndex = nextPage, nextFragment
	}
	return out, nil
}

// readFragment reads one fragment from the overflow page at pageIndex,
// returning its data bytes and, if the fragment's continuation bit is
// set, the next (page, fragment) pointer encoded in its first four bytes.
func readFragment(data []byte, pageLength int, pageIndex uint32, fragmentIndex byte) (fragData []byte, nextPage uint32, nextFragment byte, hasNext bool, err error) {
	pageStart := int(pageIndex) * pageLength
	pageBytes, ok := sliceAt(data, pageStart, pageLength)
	if !ok {
		return nil, 0, 0, false, errFragmentOutOfRange
	}

	numFragments := int(leU16(pageBytes[fragmentCountOffset:]))
	arrayEnd := pageLength
	entryOffset := func(i int) int { return arrayEnd - (i+1)*fragmentArrayEntrySize }

	if int(fragmentIndex) >= numFragments {
		return nil, 0, 0, false, errFragmentOutOfRange
	}

	readEntry := func(i int) (offset int, continues bool, isSentinel bool) {
		off := entryOffset(i)
		raw := leU16(pageBytes[off:])
		if raw == fragmentSentinel {
			return 0, false, true
		}
		return int(raw & fragmentOffsetMask), raw&fragmentContinuesBit != 0, false
	}

	start, continues, sentinel := readEntry(int(fragmentIndex))
	if sentinel {
		return nil, 0, 0, false, errFragmentOutOfRange
	}

	end := -1
	for i := int(fragmentIndex) + 1; i < numFragments+1; i++ {
		off, _, isSentinel := readEntry(i)
		if isSentinel {
			continue
		}
		end = off
		break
	}
	if end < 0 {
		end = arrayEnd - (numFragments+1)*fragmentArrayEntrySize
	}

	lowBound := 0x0C
	highBound := pageLength - 2*(numFragments+1)
	if start < lowBound || end > highBound || end < start {
		return nil, 0, 0, false, errFragmentOutOfRange
	}

	raw := pageBytes[start:end]
	if continues {
		if len(raw) < 4 {
			return nil, 0, 0, false, errFragmentOutOfRange
		}
		p := uint32(raw[0])<<16 | uint32(raw[2])<<8 | uint32(raw[1])
		f := raw[3]
		return raw[4:], p, f, true, nil
	}
	return raw, 0, 0, false, nil
}
