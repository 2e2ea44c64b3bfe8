package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player registration and inspection commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerGetCmd())

	return cmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var playerID, deviceID string
	var initial map[string]string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register or update a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"playerId": playerID,
				"deviceId": deviceID,
			}
			if len(initial) > 0 {
				data := make(map[string]any, len(initial))
				for k, v := range initial {
					data[k] = parseScalar(v)
				}
				req["initialData"] = data
			}

			var result RegisterResult
			if err := client.Post("/api/register-player", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (required)")
	cmd.Flags().StringVar(&deviceID, "device", "", "Device ID (required)")
	cmd.Flags().StringToStringVar(&initial, "data", nil, "Initial game values, e.g. --data health=100,coins=50")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <player-id>",
		Short: "Show a player record with tampering and sync history (admin key required)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AdminKey == "" {
				return fmt.Errorf("--admin-key (or GUARDIAN_ADMIN_KEY) is required")
			}

			var result PlayerDetail
			path := "/api/management/player/" + url.PathEscape(args[0])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	return cmd
}
