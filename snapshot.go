package aobscan

// MemorySnapshot owns a read-only, point-in-time copy of the candidate
// memory regions of a target process, keyed by region base address.
// Once built it is never touched by scans, so any number of concurrent
// scans against the same snapshot are safe. AddMemRegion mutates the
// snapshot and must be serialized by the caller against scans and other
// AddMemRegion calls.
type MemorySnapshot struct {
	mem     MemoryAccess
	regions map[Address][]byte
}

// NewMemorySnapshot walks the module's address range once, capturing
// every committed, non-guarded, executable region and reading its full
// contents through mem. Regions failing the filter are skipped and can
// never be scanned. A failed region query stops the walk early and the
// regions captured so far are kept; a failed read skips only that
// region.
func NewMemorySnapshot(mem MemoryAccess, moduleBase Address, moduleSize uint) *MemorySnapshot {
	s := &MemorySnapshot{
		mem:     mem,
		regions: make(map[Address][]byte),
	}

	addr := moduleBase
	end := moduleBase + Address(moduleSize)

	for addr < end {
		info, err := mem.QueryRegion(addr)
		if err != nil {
			break
		}

		if info.committed() && !info.guarded() && info.executable() {
			data, err := mem.ReadBytes(info.BaseAddress, info.Size)
			if err == nil && len(data) > 0 {
				s.regions[info.BaseAddress] = data
			}
		}

		// Move to next region
		addr = info.BaseAddress + Address(info.Size)
		if info.Size == 0 {
			addr++
		}
	}

	return s
}

// AddMemRegion reads size bytes at base and inserts or overwrites the
// corresponding region, bypassing the commit/guard/executable filter.
// Intended for caller-trusted additions such as a region outside the
// main module.
func (s *MemorySnapshot) AddMemRegion(base Address, size uint) error {
	data, err := s.mem.ReadBytes(base, size)
	if err != nil {
		return err
	}

	s.regions[base] = data
	return nil
}

// RegionCount returns the number of captured regions.
func (s *MemorySnapshot) RegionCount() int {
	return len(s.regions)
}

// Region returns the captured contents of the region based at base. The
// returned buffer is the snapshot's own copy and must not be modified.
func (s *MemorySnapshot) Region(base Address) ([]byte, bool) {
	data, ok := s.regions[base]
	return data, ok
}
