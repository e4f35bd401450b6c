package aobscan

// findPattern returns the offset of the first pattern occurrence in
// data at or after start, or -1. The window must fit entirely inside
// the buffer, so a buffer shorter than the pattern yields no match.
func findPattern(data []byte, p Pattern, start int) int {
	n := p.Len()
	if n == 0 || n > len(data) {
		return -1
	}

	for i := start; i <= len(data)-n; i++ {
		if p.matchesAt(data, i) {
			return i
		}
	}

	return -1
}

// Scan returns the absolute address of the first pattern occurrence
// found while iterating the snapshot's regions, or the zero Address if
// no region contains the pattern. The order regions are visited in is
// the map's iteration order and is not a contract.
func (s *MemorySnapshot) Scan(p Pattern) Address {
	for base, data := range s.regions {
		if offset := findPattern(data, p, 0); offset >= 0 {
			return base + Address(offset)
		}
	}

	return 0
}

// ScanMultiple returns the absolute addresses of all non-overlapping
// pattern occurrences across every region. Within a region the search
// resumes past the bytes consumed by the previous match, so offsets are
// strictly increasing and at least Len(p) apart. The result is empty
// when nothing matches.
func (s *MemorySnapshot) ScanMultiple(p Pattern) []Address {
	var results []Address

	for base, data := range s.regions {
		start := 0
		for {
			offset := findPattern(data, p, start)
			if offset < 0 {
				break
			}
			results = append(results, base+Address(offset))
			start = offset + p.Len()
		}
	}

	return results
}
