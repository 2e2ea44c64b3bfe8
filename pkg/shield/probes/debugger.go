package probes

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/lostbeltno7/GameGuardian/pkg/shield"
)

// DebuggerProbe checks whether a tracer is attached to this process via
// the TracerPid field of /proc/self/status
type DebuggerProbe struct {
	// statusPath overrides /proc/self/status in tests
	statusPath string
}

// NewDebuggerProbe creates a debugger probe inspecting the live process
func NewDebuggerProbe() *DebuggerProbe {
	return &DebuggerProbe{statusPath: "/proc/self/status"}
}

func (p *DebuggerProbe) Kind() shield.ProbeKind {
	return shield.ProbeDebugger
}

func (p *DebuggerProbe) Run(ctx context.Context) shield.Result {
	result := shield.Result{Kind: shield.ProbeDebugger}

	data, err := os.ReadFile(p.statusPath)
	if err != nil {
		return result
	}

	for _, line := range strings.Split(string(data), "\n") {
		rest, found := strings.CutPrefix(line, "TracerPid:")
		if !found {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || pid == 0 {
			return result
		}
		result.Detected = true
		result.Confidence = shield.ConfidenceCritical
		result.Details = map[string]string{"tracer_pid": strconv.Itoa(pid)}
		return result
	}

	return result
}
