package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RegisterResult:
		o.printRegisterResult(v)
	case SyncResult:
		o.printSyncResult(v)
	case ReportResult:
		o.printReportResult(v)
	case PlayerDetail:
		o.printPlayerDetail(v)
	case HealthResult:
		o.printHealthResult(v)
	case ScanResult:
		o.printScanResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RegisterResult response type (matches API)
type RegisterResult struct {
	Message  string `json:"message"`
	PlayerID string `json:"playerId"`
	Created  bool   `json:"created"`
}

// SyncResult response type
type SyncResult struct {
	Status          string         `json:"status"`
	Reason          string         `json:"reason,omitempty"`
	Action          string         `json:"action,omitempty"`
	ServerTimestamp time.Time      `json:"serverTimestamp"`
	VerifiedValues  map[string]any `json:"verifiedValues,omitempty"`
	ServerValues    map[string]any `json:"serverValues,omitempty"`
}

// ReportResult response type
type ReportResult struct {
	Message   string `json:"message"`
	Action    string `json:"action"`
	Duration  string `json:"duration,omitempty"`
	RequestID string `json:"requestId"`
}

// PlayerDetail response type for the management endpoint
type PlayerDetail struct {
	Player struct {
		PlayerID          string         `json:"playerId"`
		Status            string         `json:"status"`
		GameData          map[string]any `json:"gameData"`
		TamperingAttempts int            `json:"tamperingAttempts"`
		LastSync          time.Time      `json:"lastSync"`
		BanTimestamp      *time.Time     `json:"banTimestamp,omitempty"`
		CreatedAt         time.Time      `json:"createdAt"`
	} `json:"player"`
	TamperingEvents []struct {
		ID              string            `json:"id"`
		ServerTimestamp time.Time         `json:"serverTimestamp"`
		Severity        string            `json:"severity"`
		Kind            string            `json:"kind"`
		Details         map[string]string `json:"details,omitempty"`
	} `json:"tamperingEvents"`
	SyncEvents []struct {
		Outcome         string    `json:"outcome"`
		Reason          string    `json:"reason,omitempty"`
		ServerTimestamp time.Time `json:"serverTimestamp"`
	} `json:"syncEvents"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRegisterResult(r RegisterResult) {
	verb := "updated"
	if r.Created {
		verb = "registered"
	}
	fmt.Printf("Player %s: %s\n", verb, r.PlayerID)
}

func (o *Output) printSyncResult(r SyncResult) {
	fmt.Printf("Status: %s\n", r.Status)
	if r.Reason != "" {
		fmt.Printf("Reason: %s\n", r.Reason)
	}
	if r.Action != "" {
		fmt.Printf("Action: %s\n", r.Action)
	}
	if len(r.VerifiedValues) > 0 {
		fmt.Println("Verified values:")
		printValues(r.VerifiedValues)
	}
	if len(r.ServerValues) > 0 {
		fmt.Println("Server values (authoritative):")
		printValues(r.ServerValues)
	}
}

func (o *Output) printReportResult(r ReportResult) {
	fmt.Printf("Action: %s\n", r.Action)
	fmt.Printf("Message: %s\n", r.Message)
	if r.Duration != "" {
		fmt.Printf("Ban duration: %s\n", r.Duration)
	}
	fmt.Printf("Request ID: %s\n", r.RequestID)
}

func (o *Output) printPlayerDetail(p PlayerDetail) {
	fmt.Printf("Player: %s\n", p.Player.PlayerID)
	fmt.Printf("Status: %s\n", p.Player.Status)
	fmt.Printf("Tampering attempts: %d\n", p.Player.TamperingAttempts)
	fmt.Printf("Last sync: %s\n", p.Player.LastSync.Format(time.RFC3339))
	if p.Player.BanTimestamp != nil {
		fmt.Printf("Banned at: %s\n", p.Player.BanTimestamp.Format(time.RFC3339))
	}
	if len(p.Player.GameData) > 0 {
		fmt.Println("Game data:")
		printValues(p.Player.GameData)
	}

	if len(p.TamperingEvents) > 0 {
		fmt.Printf("\nTampering events (%d):\n", len(p.TamperingEvents))
		for _, e := range p.TamperingEvents {
			fmt.Printf("  %s  [%s] %s\n", e.ServerTimestamp.Format(time.RFC3339), e.Severity, e.Kind)
		}
	}

	if len(p.SyncEvents) > 0 {
		fmt.Printf("\nSync events (%d):\n", len(p.SyncEvents))
		for _, e := range p.SyncEvents {
			line := fmt.Sprintf("  %s  %s", e.ServerTimestamp.Format(time.RFC3339), e.Outcome)
			if e.Reason != "" {
				line += " - " + e.Reason
			}
			fmt.Println(line)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func (o *Output) printScanResult(r ScanResult) {
	for _, f := range r.Findings {
		if !f.Detected {
			fmt.Printf("%-10s clean\n", f.Probe)
			continue
		}
		fmt.Printf("%-10s DETECTED (%s)\n", f.Probe, f.Confidence)
		for k, v := range f.Details {
			fmt.Printf("  %s: %s\n", k, v)
		}
	}
	if r.Clean {
		fmt.Println("No tampering signals found")
	}
}

func printValues(values map[string]any) {
	for k, v := range values {
		fmt.Printf("  %s: %v\n", k, v)
	}
}
