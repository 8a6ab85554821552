package commands

import (
	"github.com/spf13/cobra"

	"github.com/ovesen/sealfile/internal/logic"
)

// NewInspectCommand creates a new cobra command for the inspect subcommand.
// Inspection reads only the container layout and nonce, so no passphrase
// is required.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "inspect [flags] files...",
		Aliases: []string{"info"},
		Short:   "Show container layout and nonce of encrypted files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}

			return logic.RunInspect(cfg)
		},
	}
}
