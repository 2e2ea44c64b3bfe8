package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lostbeltno7/GameGuardian/pkg/shield"
)

func newSyncCmd() *cobra.Command {
	var playerID, sessionID string
	var values map[string]string
	var powerups []string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Submit a value sync for a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameValues := make(map[string]any, len(values))
			for k, v := range values {
				gameValues[k] = parseScalar(v)
			}

			req := map[string]any{
				"playerId":        playerID,
				"sessionId":       sessionID,
				"gameValues":      gameValues,
				"clientTimestamp": time.Now().UnixMilli(),
				"checksum":        shield.ValuesChecksum(gameValues),
			}
			if len(powerups) > 0 {
				req["powerups"] = powerups
			}

			var result SyncResult
			if err := client.Post("/api/sync-game-values", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (required)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID (optional)")
	cmd.Flags().StringToStringVar(&values, "value", nil, "Game values, e.g. --value health=95,coins=120")
	cmd.Flags().StringSliceVar(&powerups, "powerup", nil, "Declared powerups, e.g. --powerup health")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

// parseScalar turns a flag string into a number or bool when it looks
// like one, keeping the server-side numeric rules applicable
func parseScalar(s string) any {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
