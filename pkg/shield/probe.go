package shield

import "context"

// ProbeKind identifies a detection probe variant
type ProbeKind string

const (
	ProbeTool     ProbeKind = "tool"
	ProbeMemory   ProbeKind = "memory"
	ProbeDebugger ProbeKind = "debugger"
	ProbeEmulator ProbeKind = "emulator"
)

// Confidence grades how certain a detection is. Critical detections
// refuse startup and map to an immediate server-side ban.
type Confidence string

const (
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceCritical Confidence = "critical"
)

// Result is the outcome of a single probe run
type Result struct {
	Detected   bool
	Kind       ProbeKind
	Confidence Confidence
	Details    map[string]string
}

// Probe inspects the environment for one class of tampering. Probes must
// be side-effect-free; a probe that cannot complete its inspection
// reports not-detected rather than erroring.
type Probe interface {
	Kind() ProbeKind
	Run(ctx context.Context) Result
}

// probeOrder is the fixed priority in which the guardian runs probes:
// cheapest and most certain signals first, short-circuiting on the first
// positive result.
var probeOrder = []ProbeKind{ProbeTool, ProbeMemory, ProbeDebugger, ProbeEmulator}

// orderProbes sorts probes into the fixed priority order. Unknown kinds
// sort last in their registration order.
func orderProbes(probes []Probe) []Probe {
	rank := make(map[ProbeKind]int, len(probeOrder))
	for i, k := range probeOrder {
		rank[k] = i
	}

	ordered := make([]Probe, len(probes))
	copy(ordered, probes)
	// Insertion sort keeps registration order stable for equal ranks
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0; j-- {
			a, aok := rank[ordered[j-1].Kind()]
			b, bok := rank[ordered[j].Kind()]
			if !aok {
				a = len(probeOrder)
			}
			if !bok {
				b = len(probeOrder)
			}
			if b >= a {
				break
			}
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}
	return ordered
}
