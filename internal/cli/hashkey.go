package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lostbeltno7/GameGuardian/internal/services/auth"
)

func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Hash a management key for the server's auth.admin_key_hash setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashAdminKey(args[0])
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}
