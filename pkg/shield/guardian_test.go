package shield

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// orderedProbe is a deterministic stand-in for a platform probe that
// records its runs into a shared log
type orderedProbe struct {
	kind     ProbeKind
	detected bool
	log      *[]ProbeKind
	mu       *sync.Mutex
}

func (p *orderedProbe) Kind() ProbeKind { return p.kind }

func (p *orderedProbe) Run(ctx context.Context) Result {
	p.mu.Lock()
	*p.log = append(*p.log, p.kind)
	p.mu.Unlock()
	return Result{Detected: p.detected, Kind: p.kind, Confidence: ConfidenceHigh}
}

// fakeReporter records reports and serves canned sync verdicts
type fakeReporter struct {
	mu       sync.Mutex
	reports  []TamperingReport
	syncs    []SyncRequest
	syncResp *SyncResult
	reported chan struct{}
}

func newFakeReporter() *fakeReporter {
	return &fakeReporter{reported: make(chan struct{}, 16)}
}

func (r *fakeReporter) Report(ctx context.Context, report TamperingReport) (*TamperingResult, error) {
	r.mu.Lock()
	r.reports = append(r.reports, report)
	r.mu.Unlock()
	r.reported <- struct{}{}
	return &TamperingResult{Action: "warn"}, nil
}

func (r *fakeReporter) Sync(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	r.mu.Lock()
	r.syncs = append(r.syncs, req)
	resp := r.syncResp
	r.mu.Unlock()
	if resp == nil {
		return &SyncResult{Status: "valid", VerifiedValues: req.GameValues}, nil
	}
	return resp, nil
}

func (r *fakeReporter) reportCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func (r *fakeReporter) lastReport() TamperingReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports[len(r.reports)-1]
}

type GuardianSuite struct {
	suite.Suite
	ctx context.Context
}

func TestGuardianSuite(t *testing.T) {
	suite.Run(t, new(GuardianSuite))
}

func (s *GuardianSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *GuardianSuite) TestProbePriorityOrder() {
	var log []ProbeKind
	var mu sync.Mutex

	// Registered deliberately out of order
	g := NewGuardian(Config{
		Probes: []Probe{
			&orderedProbe{kind: ProbeEmulator, log: &log, mu: &mu},
			&orderedProbe{kind: ProbeDebugger, log: &log, mu: &mu},
			&orderedProbe{kind: ProbeTool, log: &log, mu: &mu},
			&orderedProbe{kind: ProbeMemory, log: &log, mu: &mu},
		},
	})

	res := g.CheckNow(s.ctx)
	s.Nil(res)
	s.Equal([]ProbeKind{ProbeTool, ProbeMemory, ProbeDebugger, ProbeEmulator}, log)
}

func (s *GuardianSuite) TestShortCircuitOnFirstDetection() {
	var log []ProbeKind
	var mu sync.Mutex

	g := NewGuardian(Config{
		Probes: []Probe{
			&orderedProbe{kind: ProbeTool, log: &log, mu: &mu},
			&orderedProbe{kind: ProbeMemory, detected: true, log: &log, mu: &mu},
			&orderedProbe{kind: ProbeDebugger, log: &log, mu: &mu},
		},
	})

	res := g.CheckNow(s.ctx)
	s.Require().NotNil(res)
	s.Equal(ProbeMemory, res.Kind)
	s.Equal([]ProbeKind{ProbeTool, ProbeMemory}, log, "later probes must not run")
}

func (s *GuardianSuite) TestStartRefusesUnderCriticalDetection() {
	g := NewGuardian(Config{
		Probes: []Probe{probeFunc(func(ctx context.Context) Result {
			return Result{Detected: true, Kind: ProbeTool, Confidence: ConfidenceCritical}
		})},
	})

	err := g.Start(s.ctx)
	s.ErrorIs(err, ErrTamperingDetected)
	s.False(g.Running())
}

// probeFunc adapts a function to the Probe interface
type probeFunc func(ctx context.Context) Result

func (f probeFunc) Kind() ProbeKind                 { return ProbeTool }
func (f probeFunc) Run(ctx context.Context) Result { return f(ctx) }

func (s *GuardianSuite) TestStartAndStop() {
	g := NewGuardian(Config{Interval: MinInterval})

	s.Require().NoError(g.Start(s.ctx))
	s.True(g.Running())

	// Starting twice is a no-op
	s.NoError(g.Start(s.ctx))

	g.Stop()
	s.False(g.Running())
	// Stopping twice is a no-op
	g.Stop()
}

func (s *GuardianSuite) TestConcurrentStartSpawnsOneLoop() {
	gate := make(chan struct{})
	entered := make(chan struct{}, 64)
	var mu sync.Mutex
	runs := 0

	g := NewGuardian(Config{
		Interval: MinInterval,
		Probes: []Probe{probeFunc(func(ctx context.Context) Result {
			mu.Lock()
			runs++
			mu.Unlock()
			entered <- struct{}{}
			<-gate
			return Result{}
		})},
	})

	done := make(chan error, 1)
	go func() { done <- g.Start(s.ctx) }()

	select {
	case <-entered:
	case <-time.After(time.Second):
		s.FailNow("first start never reached its synchronous check")
	}

	// A second Start while the first is mid-check must return without
	// spawning a loop or replacing the stop channel
	s.NoError(g.Start(s.ctx))
	s.False(g.Running())
	s.Empty(entered, "second start must not run its own check")

	close(gate)
	s.Require().NoError(<-done)
	s.True(g.Running())

	g.Stop()
	s.False(g.Running())

	// Allow a tick already racing the close to drain, then verify the
	// schedule is dead
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	atStop := runs
	mu.Unlock()

	time.Sleep(2*MinInterval + 100*time.Millisecond)
	mu.Lock()
	after := runs
	mu.Unlock()
	s.Equal(atStop, after, "no cycle may start after Stop")
}

func (s *GuardianSuite) TestIntervalFloor() {
	g := NewGuardian(Config{Interval: 10 * time.Millisecond})
	s.Equal(MinInterval, g.cfg.Interval)

	g = NewGuardian(Config{})
	s.Equal(DefaultInterval, g.cfg.Interval)
}

func (s *GuardianSuite) TestContainerTamperingDetected() {
	reporter := newFakeReporter()
	var detected []Result
	g := NewGuardian(Config{
		Reporter: reporter,
		DeviceID: "d1",
		PlayerID: "p1",
		OnDetection: func(r Result) {
			detected = append(detected, r)
		},
	})

	g.RegisterValue("coins", 100.0)
	g.values["coins"].tamper(999999.0)

	res := g.CheckNow(s.ctx)
	s.Require().NotNil(res)
	s.Equal(ProbeMemory, res.Kind)
	s.Equal(ConfidenceHigh, res.Confidence)
	s.Equal("coins", res.Details["container"])
	s.Require().Len(detected, 1)
	s.Equal(1, g.Violations())

	// The async report reaches the server
	select {
	case <-reporter.reported:
	case <-time.After(time.Second):
		s.Fail("report never sent")
	}
	s.Equal(1, reporter.reportCount())

	report := reporter.lastReport()
	s.Equal("memory", report.Type)
	s.Equal("coins", report.Details["container"])
	s.NotEmpty(report.Details["os"])
	s.NotEmpty(report.Details["arch"])
}

func (s *GuardianSuite) TestValueMirror() {
	g := NewGuardian(Config{})

	g.RegisterValue("coins", 100.0)
	g.UpdateValue("coins", 150.0)
	g.UpdateValue("xp", 10.0) // registered on the fly

	v, ok := g.Value("coins")
	s.True(ok)
	s.Equal(150.0, v)

	values := g.Values()
	s.Equal(150.0, values["coins"])
	s.Equal(10.0, values["xp"])

	_, ok = g.Value("unknown")
	s.False(ok)
}

func (s *GuardianSuite) TestApplyServerValuesOverridesMirror() {
	g := NewGuardian(Config{})
	g.RegisterValue("coins", 5100.0)

	g.ApplyServerValues(map[string]any{"coins": 100.0, "gems": 3.0})

	v, ok := g.Value("coins")
	s.True(ok)
	s.Equal(100.0, v)
	v, ok = g.Value("gems")
	s.True(ok)
	s.Equal(3.0, v)
}

func (s *GuardianSuite) TestApplyServerValuesIgnoredAfterStop() {
	g := NewGuardian(Config{Interval: MinInterval})
	g.RegisterValue("coins", 100.0)

	s.Require().NoError(g.Start(s.ctx))
	g.Stop()

	g.ApplyServerValues(map[string]any{"coins": 42.0})

	v, ok := g.Value("coins")
	s.True(ok)
	s.Equal(100.0, v, "late callbacks must not mutate a stopped guardian")
}

func (s *GuardianSuite) TestSyncNowAppliesServerValuesOnRejection() {
	reporter := newFakeReporter()
	reporter.syncResp = &SyncResult{
		Status:       "invalid",
		Reason:       "Coins increased too fast",
		Action:       "warn",
		ServerValues: map[string]any{"coins": 100.0},
	}

	g := NewGuardian(Config{Reporter: reporter, PlayerID: "p1"})
	g.RegisterValue("coins", 5100.0)

	result, err := g.SyncNow(s.ctx)
	s.Require().NoError(err)
	s.False(result.Valid())

	v, ok := g.Value("coins")
	s.True(ok)
	s.Equal(100.0, v, "server values overwrite the local mirror")

	// The request carried the local mirror and its checksum
	s.Require().Len(reporter.syncs, 1)
	req := reporter.syncs[0]
	s.Equal("p1", req.PlayerID)
	s.Equal(5100.0, req.GameValues["coins"])
	s.Equal(ValuesChecksum(req.GameValues), req.Checksum)
}

func (s *GuardianSuite) TestSyncNowAppliesVerifiedValuesOnAcceptance() {
	reporter := newFakeReporter()
	reporter.syncResp = &SyncResult{
		Status: "valid",
		// The merged authoritative state can carry keys the local
		// mirror has never seen, e.g. from registration initialData
		VerifiedValues: map[string]any{"coins": 150.0, "gems": 5.0},
	}

	g := NewGuardian(Config{Reporter: reporter, PlayerID: "p1"})
	g.RegisterValue("coins", 150.0)

	result, err := g.SyncNow(s.ctx)
	s.Require().NoError(err)
	s.True(result.Valid())

	v, ok := g.Value("coins")
	s.True(ok)
	s.Equal(150.0, v)

	v, ok = g.Value("gems")
	s.True(ok, "server-only keys join the mirror on a valid sync")
	s.Equal(5.0, v)
}

func (s *GuardianSuite) TestCriticalDetectionResetsContainers() {
	g := NewGuardian(Config{
		Probes: []Probe{probeFunc(func(ctx context.Context) Result {
			return Result{Detected: true, Kind: ProbeTool, Confidence: ConfidenceCritical}
		})},
	})
	g.RegisterValue("coins", 100.0)
	g.UpdateValue("coins", 5100.0)

	g.CheckNow(s.ctx)

	v, ok := g.Value("coins")
	s.True(ok)
	s.Equal(100.0, v, "critical detections roll values back to the original")
}

func (s *GuardianSuite) TestVerifyAllReentrancyGuard() {
	g := NewGuardian(Config{})
	g.RegisterValue("coins", 100.0)
	g.values["coins"].tamper(999999.0)

	var hookResult bool
	g.cfg.OnDetection = func(Result) {
		// A validation hook running inside a cycle must see a
		// trivially-true result rather than recursing
		hookResult = g.VerifyAll()
	}

	res := g.CheckNow(s.ctx)
	s.Require().NotNil(res)
	s.True(hookResult)

	// Outside a cycle the same call reports the real state
	s.False(g.VerifyAll())
}

func (s *GuardianSuite) TestRegisteredContainerVerified() {
	g := NewGuardian(Config{})
	c := NewContainer("score", 0)
	g.RegisterContainer(c)

	s.Nil(g.CheckNow(s.ctx))

	c.tamper(12345)
	res := g.CheckNow(s.ctx)
	s.Require().NotNil(res)
	s.Equal("score", res.Details["container"])
}
