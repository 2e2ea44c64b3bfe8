package probes

import (
	"bytes"
	"context"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/lostbeltno7/GameGuardian/pkg/shield"
)

// emulatorHardwareNames are kernel/virtual-hardware identifiers common
// to emulated environments
var emulatorHardwareNames = []string{
	"goldfish",
	"ranchu",
	"vbox",
	"qemu",
}

// EmulatorProbe sniffs for emulated environments via the kernel's
// reported hardware and hypervisor hints in /proc/cpuinfo. Detection is
// medium-confidence only: emulators are suspicious, not proof.
type EmulatorProbe struct {
	// cpuinfoPath overrides /proc/cpuinfo in tests
	cpuinfoPath string
	// uname overrides the syscall in tests
	uname func(*unix.Utsname) error
}

// NewEmulatorProbe creates an emulator probe for the live system
func NewEmulatorProbe() *EmulatorProbe {
	return &EmulatorProbe{
		cpuinfoPath: "/proc/cpuinfo",
		uname:       unix.Uname,
	}
}

func (p *EmulatorProbe) Kind() shield.ProbeKind {
	return shield.ProbeEmulator
}

func (p *EmulatorProbe) Run(ctx context.Context) shield.Result {
	result := shield.Result{Kind: shield.ProbeEmulator}

	var uts unix.Utsname
	if err := p.uname(&uts); err == nil {
		nodename := strings.ToLower(cstring(uts.Nodename[:]))
		release := strings.ToLower(cstring(uts.Release[:]))
		for _, name := range emulatorHardwareNames {
			if strings.Contains(nodename, name) || strings.Contains(release, name) {
				result.Detected = true
				result.Confidence = shield.ConfidenceMedium
				result.Details = map[string]string{"source": "uname", "match": name}
				return result
			}
		}
	}

	data, err := os.ReadFile(p.cpuinfoPath)
	if err != nil {
		return result
	}
	cpuinfo := strings.ToLower(string(data))
	if strings.Contains(cpuinfo, "hypervisor") {
		result.Detected = true
		result.Confidence = shield.ConfidenceMedium
		result.Details = map[string]string{"source": "cpuinfo", "match": "hypervisor"}
		return result
	}
	for _, name := range emulatorHardwareNames {
		if strings.Contains(cpuinfo, name) {
			result.Detected = true
			result.Confidence = shield.ConfidenceMedium
			result.Details = map[string]string{"source": "cpuinfo", "match": name}
			return result
		}
	}

	return result
}

// cstring trims a fixed-size NUL-terminated syscall buffer
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
