package shield

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// ErrTamperingDetected is returned by Start when the initial synchronous
// check finds a critical-confidence detection
var ErrTamperingDetected = errors.New("critical tampering detected")

const (
	// DefaultInterval is the default cycle period
	DefaultInterval = time.Second
	// MinInterval is the floor on the cycle period
	MinInterval = 500 * time.Millisecond
)

// Reporter carries guardian detections and value syncs to the server.
// SyncClient is the production implementation; tests substitute fakes.
type Reporter interface {
	Report(ctx context.Context, report TamperingReport) (*TamperingResult, error)
	Sync(ctx context.Context, req SyncRequest) (*SyncResult, error)
}

// Verifiable is the subset of Container behavior the guardian needs, so
// containers of any value type can be registered.
type Verifiable interface {
	Key() string
	Verify() bool
	Reset()
}

// Config holds configuration for a Guardian
type Config struct {
	// PlayerID and DeviceID identify this client in reports and syncs
	PlayerID string
	DeviceID string
	// SessionID tags value syncs (optional)
	SessionID string
	// Interval is the cycle period (default 1s, floor 500ms)
	Interval time.Duration
	// Probes to run each cycle; the guardian imposes its fixed priority
	// order regardless of registration order
	Probes []Probe
	// Reporter delivers detections and syncs (optional; nil disables
	// network reporting)
	Reporter Reporter
	// OnDetection is invoked for every positive result (optional)
	OnDetection func(Result)
	// Logger for cycle diagnostics (optional; nil discards)
	Logger *slog.Logger
}

// Guardian orchestrates the client-side tamper checks: a periodic cycle
// runs the probes in priority order, then verifies every registered
// container. The cycle is a non-reentrant critical section; a cycle that
// is still running when the next tick fires suppresses that tick rather
// than queueing it.
type Guardian struct {
	cfg    Config
	probes []Probe
	logger *slog.Logger

	mu         sync.Mutex
	running    bool
	starting   bool
	stop       chan struct{}
	values     map[string]*Container[any]
	containers []Verifiable
	violations int

	cycleMu   sync.Mutex // held for the duration of one cycle
	inCycle   bool
	verifying bool

	now func() time.Time
}

// NewGuardian creates a guardian in the Stopped state
func NewGuardian(cfg Config) *Guardian {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Interval < MinInterval {
		cfg.Interval = MinInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return &Guardian{
		cfg:    cfg,
		probes: orderProbes(cfg.Probes),
		logger: logger,
		values: make(map[string]*Container[any]),
		now:    time.Now,
	}
}

// RegisterValue places a game value under protection. Registering an
// existing key overwrites its container.
func (g *Guardian) RegisterValue(key string, v any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[key] = NewContainer(key, v)
}

// UpdateValue sets a protected value through its container. Unknown keys
// are registered on the fly.
func (g *Guardian) UpdateValue(key string, v any) {
	g.mu.Lock()
	c, ok := g.values[key]
	g.mu.Unlock()
	if !ok {
		g.RegisterValue(key, v)
		return
	}
	c.Set(v)
}

// Value returns a protected value and whether it passed its integrity
// check
func (g *Guardian) Value(key string) (any, bool) {
	g.mu.Lock()
	c, ok := g.values[key]
	g.mu.Unlock()
	if !ok {
		return nil, false
	}
	return c.Get()
}

// Values snapshots the local mirror of protected game values
func (g *Guardian) Values() map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]any, len(g.values))
	for k, c := range g.values {
		v, _ := c.Get()
		out[k] = v
	}
	return out
}

// RegisterContainer places a caller-owned container under the guardian's
// per-cycle verification
func (g *Guardian) RegisterContainer(c Verifiable) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.containers = append(g.containers, c)
}

// Violations returns the advisory local violation count. It resets with
// the process; the authoritative count lives on the server.
func (g *Guardian) Violations() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.violations
}

// Running reports whether the guardian is in the Running state
func (g *Guardian) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Start runs one synchronous check and, if it does not find a
// critical-confidence detection, enters the Running state with the
// periodic cycle scheduled. ErrTamperingDetected means the caller should
// refuse to launch.
func (g *Guardian) Start(ctx context.Context) error {
	// The starting flag is held across the whole of Start so a second
	// concurrent call cannot pass the check, spawn a second loop and
	// orphan the first stop channel.
	g.mu.Lock()
	if g.running || g.starting {
		g.mu.Unlock()
		return nil
	}
	g.starting = true
	g.mu.Unlock()

	if res := g.runCycle(ctx); res != nil && res.Confidence == ConfidenceCritical {
		g.logger.Warn("refusing to start under active tampering",
			slog.String("kind", string(res.Kind)),
		)
		g.mu.Lock()
		g.starting = false
		g.mu.Unlock()
		return ErrTamperingDetected
	}

	g.mu.Lock()
	g.starting = false
	g.running = true
	g.stop = make(chan struct{})
	stop := g.stop
	g.mu.Unlock()

	go g.loop(ctx, stop)
	return nil
}

// Stop leaves the Running state. No further cycle will start; an
// in-flight network call may complete but its callback will observe the
// stopped state and leave the containers alone.
func (g *Guardian) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return
	}
	g.running = false
	close(g.stop)
}

// CheckNow runs one cycle synchronously, outside the schedule. It
// returns the first positive detection, or nil.
func (g *Guardian) CheckNow(ctx context.Context) *Result {
	return g.runCycle(ctx)
}

// VerifyAll checks every protected value and registered container. Safe
// to call from validation hooks: a call made while a cycle is already
// verifying sees a trivially-true result, breaking recursive
// verification.
func (g *Guardian) VerifyAll() bool {
	g.cycleMu.Lock()
	if g.verifying {
		g.cycleMu.Unlock()
		return true
	}
	g.verifying = true
	g.cycleMu.Unlock()

	defer func() {
		g.cycleMu.Lock()
		g.verifying = false
		g.cycleMu.Unlock()
	}()

	return g.verifyContainers() == nil
}

// ApplyServerValues folds authoritative server values into the local
// mirror through each container's Set. A stopped guardian ignores the
// call so late sync callbacks cannot resurrect state.
func (g *Guardian) ApplyServerValues(values map[string]any) {
	g.mu.Lock()
	if g.stop != nil && !g.running {
		g.mu.Unlock()
		return
	}
	containers := make(map[string]*Container[any], len(values))
	for k := range values {
		if c, ok := g.values[k]; ok {
			containers[k] = c
		}
	}
	g.mu.Unlock()

	for k, v := range values {
		c, ok := containers[k]
		if !ok {
			g.RegisterValue(k, v)
			continue
		}
		c.Set(v)
	}
}

// SyncNow pushes the local mirror to the server and applies whatever
// values come back. The server's answer always wins.
func (g *Guardian) SyncNow(ctx context.Context) (*SyncResult, error) {
	if g.cfg.Reporter == nil {
		return nil, errors.New("no reporter configured")
	}

	values := g.Values()
	result, err := g.cfg.Reporter.Sync(ctx, SyncRequest{
		PlayerID:        g.cfg.PlayerID,
		SessionID:       g.cfg.SessionID,
		GameValues:      values,
		ClientTimestamp: g.now().UnixMilli(),
		Checksum:        ValuesChecksum(values),
	})
	if err != nil {
		return nil, err
	}

	// Valid or not: the server's view is the merged authoritative state
	// and may carry keys the local mirror has never seen
	if authoritative := result.AuthoritativeValues(); authoritative != nil {
		g.ApplyServerValues(authoritative)
	}
	return result, nil
}

func (g *Guardian) loop(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(g.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			g.Stop()
			return
		case <-ticker.C:
			g.runCycle(ctx)
		}
	}
}

// runCycle executes one full check: probes in priority order with
// short-circuit, then container verification. Returns the first positive
// result, or nil. Overlapping invocations are suppressed, not queued.
func (g *Guardian) runCycle(ctx context.Context) *Result {
	g.cycleMu.Lock()
	if g.inCycle {
		g.cycleMu.Unlock()
		return nil
	}
	g.inCycle = true
	g.verifying = true
	g.cycleMu.Unlock()

	defer func() {
		g.cycleMu.Lock()
		g.inCycle = false
		g.verifying = false
		g.cycleMu.Unlock()
	}()

	for _, p := range g.probes {
		res := p.Run(ctx)
		if res.Detected {
			g.handleDetection(ctx, res)
			return &res
		}
	}

	if res := g.verifyContainers(); res != nil {
		g.handleDetection(ctx, *res)
		return res
	}

	return nil
}

// verifyContainers checks the value mirror and registered containers,
// returning a result for the first failure
func (g *Guardian) verifyContainers() *Result {
	g.mu.Lock()
	values := make([]*Container[any], 0, len(g.values))
	for _, c := range g.values {
		values = append(values, c)
	}
	registered := make([]Verifiable, len(g.containers))
	copy(registered, g.containers)
	g.mu.Unlock()

	for _, c := range values {
		if !c.Verify() {
			return &Result{
				Detected:   true,
				Kind:       ProbeMemory,
				Confidence: ConfidenceHigh,
				Details:    map[string]string{"container": c.Key(), "check": "value_mirror"},
			}
		}
	}
	for _, c := range registered {
		if !c.Verify() {
			return &Result{
				Detected:   true,
				Kind:       ProbeMemory,
				Confidence: ConfidenceHigh,
				Details:    map[string]string{"container": c.Key(), "check": "registered"},
			}
		}
	}
	return nil
}

// handleDetection counts the violation, applies local countermeasures,
// notifies the hook and fires the async report
func (g *Guardian) handleDetection(ctx context.Context, res Result) {
	g.mu.Lock()
	g.violations++
	count := g.violations
	g.mu.Unlock()

	g.logger.Warn("tampering detected",
		slog.String("kind", string(res.Kind)),
		slog.String("confidence", string(res.Confidence)),
		slog.Int("local_violations", count),
	)

	// Countermeasure: critical detections roll every container back to
	// its original value before anything else reads them
	if res.Confidence == ConfidenceCritical {
		g.resetContainers()
	}

	if g.cfg.OnDetection != nil {
		g.cfg.OnDetection(res)
	}

	if g.cfg.Reporter == nil {
		return
	}

	// Reports are fire-and-forget from the cycle's perspective
	report := TamperingReport{
		Type:      string(res.Kind),
		Severity:  severityFor(res.Confidence),
		DeviceID:  g.cfg.DeviceID,
		PlayerID:  g.cfg.PlayerID,
		Timestamp: g.now().UnixMilli(),
		Details:   withPlatformDetails(res.Details),
	}
	go func() {
		if _, err := g.cfg.Reporter.Report(ctx, report); err != nil {
			g.logger.Warn("tampering report failed", slog.String("error", err.Error()))
		}
	}()
}

func (g *Guardian) resetContainers() {
	g.mu.Lock()
	values := make([]*Container[any], 0, len(g.values))
	for _, c := range g.values {
		values = append(values, c)
	}
	registered := make([]Verifiable, len(g.containers))
	copy(registered, g.containers)
	g.mu.Unlock()

	for _, c := range values {
		c.Reset()
	}
	for _, c := range registered {
		c.Reset()
	}
}

// withPlatformDetails copies the probe details and stamps the platform
// so the server can group reports by environment
func withPlatformDetails(details map[string]string) map[string]string {
	merged := make(map[string]string, len(details)+2)
	for k, v := range details {
		merged[k] = v
	}
	merged["os"] = runtime.GOOS
	merged["arch"] = runtime.GOARCH
	return merged
}

// severityFor maps probe confidence onto report severity
func severityFor(c Confidence) string {
	switch c {
	case ConfidenceCritical:
		return "critical"
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "unknown"
	}
}
