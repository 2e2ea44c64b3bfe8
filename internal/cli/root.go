package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "guardianctl",
		Short: "CLI tool for the guardian anti-tamper API",
		Long: `guardianctl talks to the guardian server's JSON API.

It supports registering players, submitting value syncs and tampering
reports (handy for exercising a deployment), and operator lookups of
player records through the management endpoint.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.APIKey, cfg.AdminKey)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: GUARDIAN_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "Client API key (env: GUARDIAN_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminKey, "admin-key", cfg.AdminKey, "Management API key (env: GUARDIAN_ADMIN_KEY)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newHashKeyCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
