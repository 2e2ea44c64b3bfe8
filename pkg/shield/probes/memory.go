package probes

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/lostbeltno7/GameGuardian/pkg/shield"
)

// MemoryRegionProbe scans this process's memory mappings for anonymous
// writable+executable regions, the classic footprint of injected code.
type MemoryRegionProbe struct {
	// mapsPath overrides /proc/self/maps in tests
	mapsPath string
}

// NewMemoryRegionProbe creates a memory probe inspecting the live process
func NewMemoryRegionProbe() *MemoryRegionProbe {
	return &MemoryRegionProbe{mapsPath: "/proc/self/maps"}
}

func (p *MemoryRegionProbe) Kind() shield.ProbeKind {
	return shield.ProbeMemory
}

func (p *MemoryRegionProbe) Run(ctx context.Context) shield.Result {
	result := shield.Result{Kind: shield.ProbeMemory}

	f, err := os.Open(p.mapsPath)
	if err != nil {
		return result
	}
	defer f.Close()

	suspicious := 0
	var firstRegion string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return result
		}
		// Format: address perms offset dev inode [pathname]
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 {
			continue
		}
		perms := fields[1]
		if !strings.Contains(perms, "w") || !strings.Contains(perms, "x") {
			continue
		}
		// Anonymous mappings have inode 0 and no backing path
		if fields[4] != "0" || len(fields) > 5 {
			continue
		}
		suspicious++
		if firstRegion == "" {
			firstRegion = fields[0]
		}
	}

	if suspicious > 0 {
		result.Detected = true
		result.Confidence = shield.ConfidenceHigh
		result.Details = map[string]string{
			"regions": strconv.Itoa(suspicious),
			"first":   firstRegion,
		}
	}
	return result
}
