//go:build windows

package aobscan

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ModuleInfo describes a module loaded in the target process.
type ModuleInfo struct {
	BaseAddress Address
	Size        uint
	Name        string
}

// Process provides MemoryAccess over a live Windows process. It keeps
// the base address and size of the process's main module so snapshots
// can be created without further lookups.
type Process struct {
	handle windows.Handle
	pid    uint32
	module ModuleInfo
}

// FindProcessesByName finds all processes with the specified executable name
func FindProcessesByName(name string) ([]uint32, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create process snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var pe32 windows.ProcessEntry32
	pe32.Size = uint32(unsafe.Sizeof(pe32))

	if err := windows.Process32First(snapshot, &pe32); err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	var pids []uint32
	for {
		processName := windows.UTF16ToString(pe32.ExeFile[:])
		if strings.EqualFold(processName, name) {
			pids = append(pids, pe32.ProcessID)
		}

		if err := windows.Process32Next(snapshot, &pe32); err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				break
			}
			return nil, fmt.Errorf("failed to enumerate processes: %w", err)
		}
	}

	if len(pids) == 0 {
		return nil, fmt.Errorf("process not found: %s", name)
	}

	return pids, nil
}

// OpenProcess opens the process with the given PID for memory reading
// and resolves its main module.
func OpenProcess(pid uint32) (*Process, error) {
	handle, err := windows.OpenProcess(
		windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION,
		false,
		pid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}

	module, err := mainModule(handle)
	if err != nil {
		windows.CloseHandle(handle)
		return nil, err
	}

	return &Process{
		handle: handle,
		pid:    pid,
		module: module,
	}, nil
}

// mainModule returns the first module of the process, which is the
// executable image itself.
func mainModule(handle windows.Handle) (ModuleInfo, error) {
	var modules [1024]windows.Handle
	var needed uint32
	if err := windows.EnumProcessModules(handle, &modules[0], uint32(unsafe.Sizeof(modules[0]))*1024, &needed); err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to enumerate modules: %w", err)
	}
	if needed == 0 {
		return ModuleInfo{}, errors.New("process has no modules")
	}

	var mi windows.ModuleInfo
	if err := windows.GetModuleInformation(handle, modules[0], &mi, uint32(unsafe.Sizeof(mi))); err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to get module information: %w", err)
	}

	var moduleName [windows.MAX_PATH]uint16
	if err := windows.GetModuleFileNameEx(handle, modules[0], &moduleName[0], windows.MAX_PATH); err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to get module name: %w", err)
	}

	return ModuleInfo{
		BaseAddress: Address(mi.BaseOfDll),
		Size:        uint(mi.SizeOfImage),
		Name:        windows.UTF16ToString(moduleName[:]),
	}, nil
}

// Close closes the process handle
func (p *Process) Close() error {
	if p.handle != 0 {
		windows.CloseHandle(p.handle)
		p.handle = 0
	}
	return nil
}

// PID returns the process ID this Process is attached to
func (p *Process) PID() uint32 {
	return p.pid
}

// MainModule returns the process's main module
func (p *Process) MainModule() ModuleInfo {
	return p.module
}

// QueryRegion returns the memory region containing addr via VirtualQueryEx.
func (p *Process) QueryRegion(addr Address) (RegionInfo, error) {
	var mbi windows.MemoryBasicInformation
	err := windows.VirtualQueryEx(p.handle, uintptr(addr), &mbi, unsafe.Sizeof(mbi))
	if err != nil {
		return RegionInfo{}, fmt.Errorf("failed to query region at %s: %w", addr, err)
	}

	return RegionInfo{
		BaseAddress: Address(mbi.BaseAddress),
		Size:        uint(mbi.RegionSize),
		State:       mbi.State,
		Protect:     mbi.Protect,
	}, nil
}

// ReadBytes reads up to size bytes at addr via ReadProcessMemory. The
// returned buffer is trimmed to the number of bytes actually read.
func (p *Process) ReadBytes(addr Address, size uint) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}

	buffer := make([]byte, size)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(p.handle, uintptr(addr), &buffer[0], uintptr(size), &bytesRead)
	if err != nil {
		return nil, fmt.Errorf("failed to read %d bytes at %s: %w", size, addr, err)
	}

	return buffer[:bytesRead], nil
}

// CreateSnapshot captures the executable regions of the process's main
// module into a new MemorySnapshot.
func (p *Process) CreateSnapshot() *MemorySnapshot {
	return NewMemorySnapshot(p, p.module.BaseAddress, p.module.Size)
}
