package legacyfile

// deletedSet collects every slot offset visited while walking the
// deleted-record singly-linked list, bounding the walk to avoid an
// infinite loop on a malformed (cyclic) chain (spec.md §4.D "Deleted-
// record list"; Design Notes "Cyclic list handling").
func deletedSet(data []byte, head uint32, pageCount, pageLength, physicalRecordLength int) (map[uint32]struct{}, error) {
	visited := make(map[uint32]struct{})
	if head == deletedListEnd {
		return visited, nil
	}

	slotsPerPage := 1
	if physicalRecordLength > 0 {
		slotsPerPage = (pageLength - recordAreaStart) / physicalRecordLength
	}
	maxIterations := pageCount * slotsPerPage

	offset := head
	for i := 0; i < maxIterations; i++ {
		if offset == deletedListEnd {
			return visited, nil
		}
		if _, seen := visited[offset]; seen {
			return nil, errDeletedListCycle
		}
		visited[offset] = struct{}{}

		node, ok := sliceAt(data, int(offset), 4)
		if !ok {
			return nil, errFragmentOutOfRange
		}
		hi := uint32(leU16(node))
		lo := uint32(leU16(node[2:]))
		offset = hi<<16 | lo
	}
	return nil, errDeletedListCycle
}
