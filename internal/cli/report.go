package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var kind, severity, deviceID, playerID string
	var details map[string]string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Submit a tampering report",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"type":      kind,
				"severity":  severity,
				"deviceId":  deviceID,
				"timestamp": time.Now().UnixMilli(),
			}
			if playerID != "" {
				req["playerId"] = playerID
			}
			if len(details) > 0 {
				req["details"] = details
			}

			var result ReportResult
			if err := client.Post("/api/log-tampering", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Detection kind, e.g. debugger_detected (required)")
	cmd.Flags().StringVar(&severity, "severity", "medium", "Severity: low, medium, high, critical")
	cmd.Flags().StringVar(&deviceID, "device", "", "Device ID (required)")
	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (optional)")
	cmd.Flags().StringToStringVar(&details, "detail", nil, "Extra detail fields, e.g. --detail tool=cheatengine")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}
