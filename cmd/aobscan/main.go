package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/zhuweiyou/aobscan"
)

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	processName := flag.String("process", "", "executable name of the target process")
	pidFlag := flag.Uint("pid", 0, "PID of the target process (overrides -process)")
	signature := flag.String("sig", "", `signature to scan for, e.g. "48 8B ? ? C6"`)
	all := flag.Bool("all", false, "report all non-overlapping matches instead of the first")
	flag.Parse()

	if *signature == "" {
		log.Fatal("no signature given, use -sig")
	}

	pattern, err := aobscan.CompileSignature(*signature)
	if err != nil {
		log.Fatalf("bad signature: %v", err)
	}

	pids, err := resolvePIDs(*pidFlag, *processName)
	if err != nil {
		log.Fatal(err)
	}

	found := 0
	for _, pid := range pids {
		n, err := scanProcess(pid, pattern, *all)
		if err != nil {
			log.Printf("pid %d: %v", pid, err)
			continue
		}
		found += n
	}

	if found == 0 {
		log.Println("no matches")
		os.Exit(1)
	}
}

func resolvePIDs(pid uint, processName string) ([]uint32, error) {
	if pid != 0 {
		return []uint32{uint32(pid)}, nil
	}
	if processName == "" {
		return nil, fmt.Errorf("no target given, use -process or -pid")
	}
	return aobscan.FindProcessesByName(processName)
}

// scanProcess snapshots the main module of one process and prints every
// requested match. Returns the number of matches.
func scanProcess(pid uint32, pattern aobscan.Pattern, all bool) (int, error) {
	proc, err := aobscan.OpenProcess(pid)
	if err != nil {
		return 0, err
	}
	defer proc.Close()

	module := proc.MainModule()
	snapshot := proc.CreateSnapshot()
	log.Printf("pid %d: %s at %s, %d executable regions captured",
		pid, module.Name, module.BaseAddress, snapshot.RegionCount())

	if !all {
		addr := snapshot.Scan(pattern)
		if addr == 0 {
			return 0, nil
		}
		fmt.Println(addr)
		return 1, nil
	}

	matches := snapshot.ScanMultiple(pattern)
	for _, addr := range matches {
		fmt.Println(addr)
	}
	return len(matches), nil
}
