package aobscan

import "fmt"

// Address represents a location in the target process's address space.
// It is never dereferenced by this package; it is only passed to a
// MemoryAccess implementation or returned to the caller. The zero value
// doubles as the "not found" result of Scan.
type Address uint64

// String returns the hexadecimal representation of the address
func (a Address) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// Memory state and protection flags, numerically identical to the
// Windows MEM_*/PAGE_* constants so a VirtualQueryEx result maps
// straight through.
const (
	MemCommit = 0x1000

	PageGuard            = 0x100
	PageExecute          = 0x10
	PageExecuteRead      = 0x20
	PageExecuteReadWrite = 0x40
	PageExecuteWriteCopy = 0x80

	executableMask = PageExecute | PageExecuteRead | PageExecuteReadWrite | PageExecuteWriteCopy
)

// RegionInfo describes one contiguous, uniformly-protected block of the
// target's virtual address space as reported by MemoryAccess.QueryRegion.
type RegionInfo struct {
	BaseAddress Address
	Size        uint
	State       uint32
	Protect     uint32
}

// committed reports whether the region is backed by committed pages.
func (r RegionInfo) committed() bool {
	return r.State == MemCommit
}

// guarded reports whether the region carries the guard-page attribute.
func (r RegionInfo) guarded() bool {
	return r.Protect&PageGuard != 0
}

// executable reports whether the region is executable in any form.
func (r RegionInfo) executable() bool {
	return r.Protect&executableMask != 0
}

// MemoryAccess is the primitive used to pull region metadata and bytes
// out of the target process. The Windows implementation is Process;
// tests substitute fakes.
type MemoryAccess interface {
	// QueryRegion returns the region containing addr. An error means no
	// further region information is available at or past addr.
	QueryRegion(addr Address) (RegionInfo, error)

	// ReadBytes reads up to size bytes starting at addr. The length of
	// the returned buffer is authoritative: it may be shorter than size
	// if part of the range is inaccessible.
	ReadBytes(addr Address, size uint) ([]byte, error)
}
